package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"langprep/internal/bundle"
	"langprep/internal/prepare"
	"langprep/internal/split"
	"langprep/internal/testsupport"
)

func TestSplitCommandWritesSplitsAndRecordsRun(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteBalancedCSV(t, filepath.Join(env.cfg.RawDir(), "corpus.csv"), 100)

	out, _, err := runCLI(t, []string{"split", input}, env.configPath)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	requireContains(t, out, "train.csv")
	requireContains(t, out, "Loaded 100 rows, kept 100 after cleaning")
	requireContains(t, out, "Labels: English (en) 50, Shona (sn) 50")
	for _, name := range []string{prepare.TrainFile, prepare.ValFile, prepare.TestFile} {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	out, _, err = runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, input)

	out, _, err = runCLI(t, []string{"runs", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list --json: %v", err)
	}
	var runs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil || len(runs) != 1 {
		t.Fatalf("unexpected runs json %q: %v", out, err)
	}

	out, _, err = runCLI(t, []string{"runs", "show", runs[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "train=70 val=10 test=20")

	out, _, err = runCLI(t, []string{"runs", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("runs status: %v", err)
	}
	requireContains(t, out, "completed")
}

func TestSplitCommandFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteCSV(t, filepath.Join(env.cfg.RawDir(), "corpus.csv"),
		[]string{"sentence", "lang"}, testsupport.BalancedRows(40))
	outDir := filepath.Join(t.TempDir(), "custom")

	out, _, err := runCLI(t, []string{
		"split", input,
		"--text-col", "sentence",
		"--label-col", "lang",
		"--test-size", "0.25",
		"--val-size", "0",
		"--random-state", "7",
		"--output-dir", outDir,
		"--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	var res prepare.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Counts.Train != 30 || res.Counts.Test != 10 || res.Counts.Val != 0 {
		t.Fatalf("unexpected counts %+v", res.Counts)
	}
	if res.Outputs.Dir != outDir || res.Outputs.Val != "" {
		t.Fatalf("unexpected outputs %+v", res.Outputs)
	}
	if _, err := os.Stat(filepath.Join(outDir, prepare.ValFile)); !os.IsNotExist(err) {
		t.Fatalf("expected no val.csv, stat err=%v", err)
	}
}

func TestSplitCommandRejectsBadRatio(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteBalancedCSV(t, filepath.Join(env.cfg.RawDir(), "corpus.csv"), 20)

	_, _, err := runCLI(t, []string{"split", input, "--test-size", "0.7", "--val-size", "0.3"}, env.configPath)
	if !errors.Is(err, split.ErrInvalidSplitRatio) {
		t.Fatalf("expected ErrInvalidSplitRatio, got %v", err)
	}
	for _, path := range []string{env.cfg.Paths.OutputDir, env.cfg.Paths.LogDir, env.cfg.LedgerPath()} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be left uncreated, stat err=%v", path, err)
		}
	}
	if _, _, err := runCLI(t, []string{"split", input, "--val-basis", "half"}, env.configPath); err == nil {
		t.Fatal("expected unknown --val-basis to fail")
	}
}

func TestSplitHelpDescribesValBasis(t *testing.T) {
	out, _, err := runCLI(t, []string{"split", "--help"}, "")
	if err != nil {
		t.Fatalf("split --help: %v", err)
	}
	requireContains(t, out, "a share of all rows unless --val-basis=remainder")
	requireContains(t, out, "remainder (rows left after the test split)")
}

func TestBundleCommandStagesSplits(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteBalancedCSV(t, filepath.Join(env.cfg.RawDir(), "corpus.csv"), 50)
	if _, _, err := runCLI(t, []string{"split", input}, env.configPath); err != nil {
		t.Fatalf("split: %v", err)
	}

	readme := filepath.Join(t.TempDir(), "CARD.md")
	if err := os.WriteFile(readme, []byte("# card\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"bundle", "--readme", readme, "--repo-id", "example/en-sn"}, env.configPath)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	requireContains(t, out, "Staged 4 file(s)")

	manifest, err := bundle.ReadManifest(env.cfg.Bundle.Dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if manifest.RepoID != "example/en-sn" || len(manifest.Files) != 4 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}

	_, _, err = runCLI(t, []string{"bundle", filepath.Join(t.TempDir(), "missing.csv")}, env.configPath)
	if !errors.Is(err, bundle.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestPreflightCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteBalancedCSV(t, filepath.Join(env.cfg.RawDir(), "corpus.csv"), 10)

	out, _, err := runCLI(t, []string{"preflight", input}, env.configPath)
	if err != nil {
		t.Fatalf("preflight: %v\n%s", err, out)
	}
	requireContains(t, out, "Input file:")
	requireContains(t, out, "[OK]")

	out, _, err = runCLI(t, []string{"preflight", filepath.Join(env.cfg.RawDir(), "corpus.txt")}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight to fail for a missing, unsupported input")
	}
	requireContains(t, out, "[ERROR]")
}
