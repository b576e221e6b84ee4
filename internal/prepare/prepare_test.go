package prepare_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"langprep/internal/config"
	"langprep/internal/dataset"
	"langprep/internal/ledger"
	"langprep/internal/prepare"
	"langprep/internal/split"
	"langprep/internal/testsupport"
)

func newPreparer(t *testing.T, cfg *config.Config) (*prepare.Preparer, *ledger.Store) {
	t.Helper()
	store := testsupport.MustOpenLedger(t, cfg)
	return prepare.New(cfg, prepare.WithRecorder(store)), store
}

func splitFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	slices.Sort(names)
	return names
}

func TestRunHundredRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := testsupport.WriteBalancedCSV(t, filepath.Join(cfg.RawDir(), "corpus.csv"), 100)
	p, store := newPreparer(t, cfg)

	res, err := p.Run(context.Background(), p.RunOptionsFor(input))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := ledger.Counts{Loaded: 100, Cleaned: 100, Train: 70, Val: 10, Test: 20}
	if res.Counts != want {
		t.Fatalf("counts = %+v, want %+v", res.Counts, want)
	}
	if got := splitFiles(t, cfg.Paths.OutputDir); !slices.Equal(got, []string{"test.csv", "train.csv", "val.csv"}) {
		t.Fatalf("unexpected files %v", got)
	}

	run, err := store.Get(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("ledger Get: %v", err)
	}
	if run.Status != ledger.StatusCompleted || run.Counts != want || run.InputSHA256 == "" {
		t.Fatalf("unexpected ledger entry %#v", run)
	}
}

func TestRunWithDefaultConfig(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("LANGPREP_DATA_DIR", "")
	t.Chdir(base)

	input := testsupport.WriteBalancedCSV(t, filepath.Join(base, "corpus.csv"), 100)
	p := prepare.New(nil)

	res, err := p.Run(context.Background(), p.RunOptionsFor(input))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Counts.Train != 70 {
		t.Fatalf("expected 70 train rows, got %+v", res.Counts)
	}
	if got := splitFiles(t, filepath.Join(base, "data", "splits")); !slices.Equal(got, []string{"test.csv", "train.csv", "val.csv"}) {
		t.Fatalf("unexpected files %v", got)
	}
}

func TestRunRemainderBasis(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := testsupport.WriteBalancedCSV(t, filepath.Join(cfg.RawDir(), "corpus.csv"), 100)
	p := prepare.New(cfg)

	opts := p.RunOptionsFor(input)
	opts.Basis = split.BasisRemainder
	res, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Counts.Test != 20 || res.Counts.Train+res.Counts.Val != 80 {
		t.Fatalf("unexpected counts %+v", res.Counts)
	}
	if res.Counts.Val < 7 || res.Counts.Val > 9 {
		t.Fatalf("expected about 8 validation rows, got %d", res.Counts.Val)
	}
}

func TestRunIsByteIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := testsupport.WriteBalancedCSV(t, filepath.Join(cfg.RawDir(), "corpus.csv"), 60)
	p := prepare.New(cfg)

	read := func() map[string][]byte {
		out := map[string][]byte{}
		for _, name := range []string{prepare.TrainFile, prepare.ValFile, prepare.TestFile} {
			data, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, name))
			if err != nil {
				t.Fatalf("read %s: %v", name, err)
			}
			out[name] = data
		}
		return out
	}

	if _, err := p.Run(context.Background(), p.RunOptionsFor(input)); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := read()
	if _, err := p.Run(context.Background(), p.RunOptionsFor(input)); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second := read()
	for name := range first {
		if !bytes.Equal(first[name], second[name]) {
			t.Fatalf("%s differs between runs", name)
		}
	}
}

func TestRunRoundTripsThroughCSV(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := testsupport.WriteBalancedCSV(t, filepath.Join(cfg.RawDir(), "corpus.csv"), 40)
	p := prepare.New(cfg)

	res, err := p.Run(context.Background(), p.RunOptionsFor(input))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for path, want := range map[string]*dataset.Dataset{
		res.Outputs.Train: res.Train,
		res.Outputs.Val:   res.Val,
		res.Outputs.Test:  res.Test,
	} {
		back, err := dataset.Load(path)
		if err != nil {
			t.Fatalf("Load %s: %v", path, err)
		}
		got, _ := back.Records("text", "language")
		exp, _ := want.Records("text", "language")
		if !slices.Equal(got, exp) {
			t.Fatalf("%s does not round trip", filepath.Base(path))
		}
	}
}

func TestRunFailsFastWithoutWriting(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T, cfg *config.Config) prepare.RunOptions
		want  error
	}{
		{
			name: "invalid ratio",
			setup: func(t *testing.T, cfg *config.Config) prepare.RunOptions {
				input := testsupport.WriteBalancedCSV(t, filepath.Join(cfg.RawDir(), "corpus.csv"), 20)
				opts := prepare.New(cfg).RunOptionsFor(input)
				opts.TestFraction, opts.ValFraction = 0.6, 0.5
				return opts
			},
			want: split.ErrInvalidSplitRatio,
		},
		{
			name: "unsupported format",
			setup: func(t *testing.T, cfg *config.Config) prepare.RunOptions {
				path := filepath.Join(cfg.RawDir(), "corpus.txt")
				if err := os.MkdirAll(cfg.RawDir(), 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, []byte("text,language\n"), 0o644); err != nil {
					t.Fatal(err)
				}
				return prepare.New(cfg).RunOptionsFor(path)
			},
			want: dataset.ErrUnsupportedFormat,
		},
		{
			name: "missing label column",
			setup: func(t *testing.T, cfg *config.Config) prepare.RunOptions {
				input := testsupport.WriteCSV(t, filepath.Join(cfg.RawDir(), "corpus.csv"),
					[]string{"text", "lang"}, testsupport.BalancedRows(20))
				return prepare.New(cfg).RunOptionsFor(input)
			},
			want: dataset.ErrMissingColumn,
		},
		{
			name: "missing input",
			setup: func(t *testing.T, cfg *config.Config) prepare.RunOptions {
				return prepare.New(cfg).RunOptionsFor(filepath.Join(cfg.RawDir(), "absent.csv"))
			},
			want: prepare.ErrPreflight,
		},
		{
			name: "too few rows to stratify",
			setup: func(t *testing.T, cfg *config.Config) prepare.RunOptions {
				input := testsupport.WriteCSV(t, filepath.Join(cfg.RawDir(), "corpus.csv"),
					[]string{"text", "language"}, [][]string{
						{"Hello, how are you?", "en"},
						{"Mhoro, makadii?", "sn"},
						{" Good morning! ", "en"},
						{"Manheru akanaka!", "sn"},
						{"", ""},
						{"   ", ""},
					})
				return prepare.New(cfg).RunOptionsFor(input)
			},
			want: split.ErrInsufficientData,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			opts := tc.setup(t, cfg)
			_, err := prepare.New(cfg).Run(context.Background(), opts)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if got := splitFiles(t, cfg.Paths.OutputDir); len(got) != 0 {
				t.Fatalf("expected no split files, got %v", got)
			}
		})
	}
}

func TestRunRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := testsupport.WriteCSV(t, filepath.Join(cfg.RawDir(), "corpus.csv"),
		[]string{"sentence", "language"}, testsupport.BalancedRows(10))
	p, store := newPreparer(t, cfg)

	if _, err := p.Run(context.Background(), p.RunOptionsFor(input)); !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	runs, err := store.List(context.Background(), 0, ledger.StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 || runs[0].ErrorMessage == "" || runs[0].Counts.Loaded != 10 {
		t.Fatalf("expected one failed run with partial counts, got %+v", runs)
	}
}

func TestPersistCreatesDirectoryAndSkipsEmptyVal(t *testing.T) {
	p := prepare.New(nil)
	out := filepath.Join(t.TempDir(), "nested", "splits")

	train := dataset.FromRecords("text", "language", []dataset.Record{{Text: "train1", Label: "en"}, {Text: "train2", Label: "sn"}})
	val := dataset.FromRecords("text", "language", []dataset.Record{{Text: "val1", Label: "en"}})
	test := dataset.FromRecords("text", "language", []dataset.Record{{Text: "test1", Label: "sn"}})

	if _, err := p.Persist(context.Background(), split.Result{Train: train, Val: val, Test: test}, out); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if got := splitFiles(t, out); !slices.Equal(got, []string{"test.csv", "train.csv", "val.csv"}) {
		t.Fatalf("unexpected files %v", got)
	}
	data, err := os.ReadFile(filepath.Join(out, prepare.TrainFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "text,language\ntrain1,en\ntrain2,sn\n" {
		t.Fatalf("unexpected train.csv %q", data)
	}

	empty := dataset.New("text", "language")
	outputs, err := p.Persist(context.Background(), split.Result{Train: train, Val: empty, Test: test}, out)
	if err != nil {
		t.Fatalf("second Persist: %v", err)
	}
	if outputs.Val != "" {
		t.Fatalf("expected no val output, got %q", outputs.Val)
	}
	if got := splitFiles(t, out); !slices.Equal(got, []string{"test.csv", "train.csv"}) {
		t.Fatalf("expected stale val.csv to be removed, got %v", got)
	}
	if tmp, _ := filepath.Glob(filepath.Join(out, ".*.tmp")); len(tmp) != 0 {
		t.Fatalf("temporary files left behind: %v", tmp)
	}
}

func TestPreprocessAppliesCleaningConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cleaning.CollapseWhitespace = true
	cfg.Cleaning.LowercaseLabels = true
	cfg.Cleaning.LabelMap = map[string]string{"english": "en"}
	p := prepare.New(&cfg)

	ds := dataset.New("text", "language")
	ds.Append("  Good   morning! ", "ENGLISH")
	ds.Append("   ", "sn")

	out, err := p.Preprocess(ds, "text", "language")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	recs, _ := out.Records("text", "language")
	if !slices.Equal(recs, []dataset.Record{{Text: "Good morning!", Label: "en"}}) {
		t.Fatalf("unexpected records %v", recs)
	}

	plain := prepare.New(nil)
	out, err = plain.Preprocess(ds, "text", "language")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if got := out.Value(0, "text"); got != "Good   morning!" {
		t.Fatalf("default cleaning should only trim, got %q", got)
	}
}

func TestPreprocessCanonicalLabels(t *testing.T) {
	cfg := config.Default()
	cfg.Cleaning.CanonicalLabels = true
	cfg.Cleaning.LabelMap = map[string]string{"sn": "shona"}
	p := prepare.New(&cfg)

	ds := dataset.New("text", "language")
	ds.Append("Hello", "English")
	ds.Append("Mhoro", "chiShona")
	ds.Append("Hi", "en-US")
	ds.Append("???", "unknown")

	out, err := p.Preprocess(ds, "text", "language")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	labels, _ := out.Strings("language")
	if !slices.Equal(labels, []string{"en", "shona", "en", "unknown"}) {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestCleanText(t *testing.T) {
	p := prepare.New(nil)
	if got := p.CleanText("  Hello!  "); got != "Hello!" {
		t.Fatalf("CleanText = %q", got)
	}
	if got := p.CleanText(123); got != "" {
		t.Fatalf("CleanText(123) = %q", got)
	}
}
