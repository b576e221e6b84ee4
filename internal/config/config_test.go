package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"langprep/internal/config"
	"langprep/internal/split"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LANGPREP_DATA_DIR", "")

	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config at %s", path)
	}
	if cfg.Dataset.TextColumn != "text" || cfg.Dataset.LabelColumn != "language" {
		t.Fatalf("unexpected columns %+v", cfg.Dataset)
	}
	if cfg.Split.TestFraction != 0.2 || cfg.Split.ValFraction != 0.1 || cfg.Split.Seed != 42 {
		t.Fatalf("unexpected split defaults %+v", cfg.Split)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) || filepath.Base(cfg.Paths.DataDir) != "data" {
		t.Fatalf("expected absolute ./data, got %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.OutputDir != cfg.SplitsDir() {
		t.Fatalf("expected output dir %q, got %q", cfg.SplitsDir(), cfg.Paths.OutputDir)
	}
	if want := filepath.Join(cfg.Paths.LogDir, "ledger.db"); cfg.LedgerPath() != want {
		t.Fatalf("expected ledger path %q, got %q", want, cfg.LedgerPath())
	}
	if strings.HasPrefix(cfg.Paths.LogDir, "~") {
		t.Fatalf("expected expanded log dir, got %q", cfg.Paths.LogDir)
	}
}

func TestNormalizeDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LANGPREP_DATA_DIR", "")
	t.Chdir(t.TempDir())

	cfg := config.Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) || filepath.Base(cfg.Paths.DataDir) != "data" {
		t.Fatalf("expected absolute ./data, got %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.OutputDir != cfg.SplitsDir() {
		t.Fatalf("expected output dir %q, got %q", cfg.SplitsDir(), cfg.Paths.OutputDir)
	}
	if !strings.HasPrefix(cfg.Paths.LogDir, home) {
		t.Fatalf("expected log dir under %s, got %q", home, cfg.Paths.LogDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
data_dir = "`+filepath.Join(base, "corpus")+`"
log_dir = "`+filepath.Join(base, "logs")+`"

[dataset]
text_column = " sentence "
label_column = "lang"

[split]
test_fraction = 0.25
val_fraction = 0
seed = 7
val_basis = "Remainder"
stratify = false

[cleaning]
lowercase_labels = true

[cleaning.label_map]
" english " = "en"

[logging]
format = "json"
level = "DEBUG"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Dataset.TextColumn != "sentence" || cfg.Dataset.LabelColumn != "lang" {
		t.Fatalf("unexpected columns %+v", cfg.Dataset)
	}
	if cfg.Paths.OutputDir != filepath.Join(base, "corpus", "splits") {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Bundle.Dir != filepath.Join(base, "corpus", "hf_dataset_upload") {
		t.Fatalf("unexpected bundle dir %q", cfg.Bundle.Dir)
	}
	if cfg.Cleaning.LabelMap["english"] != "en" {
		t.Fatalf("expected trimmed label map key, got %v", cfg.Cleaning.LabelMap)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}

	opts := cfg.SplitOptions()
	if opts.Basis != split.BasisRemainder || opts.Stratify || opts.Seed != 7 || opts.LabelColumn != "lang" {
		t.Fatalf("unexpected split options %+v", opts)
	}
}

func TestLoadDataDirFromEnvironment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "envdata")
	t.Setenv("LANGPREP_DATA_DIR", dir)

	cfg, _, _, err := config.Load(writeConfig(t, "[split]\nseed = 1\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.DataDir != dir {
		t.Fatalf("expected data dir %q, got %q", dir, cfg.Paths.DataDir)
	}
	if cfg.RawDir() != filepath.Join(dir, "raw") || cfg.ProcessedDir() != filepath.Join(dir, "processed") {
		t.Fatalf("unexpected layout %q %q", cfg.RawDir(), cfg.ProcessedDir())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"ratio sum":       "[split]\ntest_fraction = 0.6\nval_fraction = 0.4\n",
		"negative ratio":  "[split]\ntest_fraction = -0.1\n",
		"unknown basis":   "[split]\nval_basis = \"half\"\n",
		"same columns":    "[dataset]\ntext_column = \"x\"\nlabel_column = \"x\"\n",
		"bad level":       "[logging]\nlevel = \"loud\"\n",
		"malformed toml":  "[split\n",
		"wrong seed type": "[split]\nseed = \"abc\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, _, err := config.Load(writeConfig(t, content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSampleConfigLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists || cfg.Split.ValBasis != "total" || !cfg.Ledger.Enabled {
		t.Fatalf("unexpected sample config %+v", cfg)
	}
}

func TestEnsureDirectoriesAndEncode(t *testing.T) {
	base := t.TempDir()
	cfg, _, _, err := config.Load(writeConfig(t, `
[paths]
data_dir = "`+filepath.Join(base, "data")+`"
log_dir = "`+filepath.Join(base, "logs")+`"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.RawDir(), cfg.ProcessedDir(), cfg.SplitsDir(), cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}

	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var back config.Config
	if err := toml.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if back.Paths.DataDir != cfg.Paths.DataDir || back.Split.Seed != cfg.Split.Seed {
		t.Fatalf("encoded config lost values: %+v", back)
	}
}
