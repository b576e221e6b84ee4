package main

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"langprep/internal/config"
	"langprep/internal/dataset"
	"langprep/internal/language"
	"langprep/internal/logging"
	"langprep/internal/prepare"
	"langprep/internal/split"
)

type splitFlags struct {
	textColumn    string
	labelColumn   string
	testSize      float64
	valSize       float64
	randomState   int64
	outputDir     string
	valBasis      string
	noStratify    bool
	skipPreflight bool
	jsonOutput    bool
}

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var flags splitFlags

	cmd := &cobra.Command{
		Use:   "split <input>",
		Short: "Clean a corpus and write train/val/test splits",
		Long: `Load a CSV, JSON, XLSX, or XLS corpus, drop rows without text, and write
stratified train.csv, val.csv, and test.csv files to the output directory.

val.csv is omitted when the validation fraction is 0.`,
		Args: cobra.ExactArgs(1),
		// Flags are checked before any directory or ledger file is created.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			if _, err := flags.apply(cmd, prepare.New(cfg).RunOptionsFor("")); err != nil {
				return err
			}
			_, err = ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerValue()
			if err != nil {
				return err
			}
			defer ctx.close()

			input, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}
			opts, err := flags.apply(cmd, prepare.New(cfg).RunOptionsFor(input))
			if err != nil {
				return err
			}

			popts := []prepare.Option{prepare.WithLogger(logger)}
			store, err := ctx.openLedger()
			if err != nil {
				logging.WarnWithContext(logger, "run history unavailable", "ledger_open_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check ledger.path or set ledger.enabled = false"),
				)
			} else if store != nil {
				popts = append(popts, prepare.WithRecorder(store))
			}
			res, err := prepare.New(cfg, popts...).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				return writeJSON(cmd, res)
			}
			printSplitSummary(cmd, res, opts.LabelColumn)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.textColumn, "text-col", "", "Text column name (default from config)")
	f.StringVar(&flags.labelColumn, "label-col", "", "Label column name (default from config)")
	f.Float64Var(&flags.testSize, "test-size", 0, "Fraction of rows held out for test (default from config)")
	f.Float64Var(&flags.valSize, "val-size", 0, "Fraction held out for validation; a share of all rows unless --val-basis=remainder (default from config)")
	f.Int64Var(&flags.randomState, "random-state", 0, "Seed for the split (default from config)")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory for the split files (default from config)")
	f.StringVar(&flags.valBasis, "val-basis", "", "What --val-size is a share of: total (all rows) or remainder (rows left after the test split)")
	f.BoolVar(&flags.noStratify, "no-stratify", false, "Sample uniformly instead of by label")
	f.BoolVar(&flags.skipPreflight, "skip-preflight", false, "Skip filesystem checks before loading")
	f.BoolVar(&flags.jsonOutput, "json", false, "Print the run result as JSON")
	return cmd
}

// apply overrides opts with the flags the user actually set.
func (f splitFlags) apply(cmd *cobra.Command, opts prepare.RunOptions) (prepare.RunOptions, error) {
	changed := cmd.Flags().Changed
	if changed("text-col") {
		opts.TextColumn = strings.TrimSpace(f.textColumn)
	}
	if changed("label-col") {
		opts.LabelColumn = strings.TrimSpace(f.labelColumn)
	}
	if changed("test-size") {
		opts.TestFraction = f.testSize
	}
	if changed("val-size") {
		opts.ValFraction = f.valSize
	}
	if changed("random-state") {
		opts.Seed = f.randomState
	}
	if changed("output-dir") {
		dir, err := config.ExpandPath(strings.TrimSpace(f.outputDir))
		if err != nil {
			return opts, fmt.Errorf("resolve output directory: %w", err)
		}
		opts.OutputDir = dir
	}
	if changed("val-basis") {
		switch basis := split.Basis(strings.ToLower(strings.TrimSpace(f.valBasis))); basis {
		case split.BasisTotal, split.BasisRemainder:
			opts.Basis = basis
		default:
			return opts, fmt.Errorf("--val-basis must be %q or %q, got %q", split.BasisTotal, split.BasisRemainder, f.valBasis)
		}
	}
	if f.noStratify {
		opts.Stratify = false
	}
	opts.SkipPreflight = f.skipPreflight
	if opts.TextColumn == "" || opts.LabelColumn == "" {
		return opts, errors.New("text and label column names must not be empty")
	}
	if err := split.ValidateFractions(opts.TestFraction, opts.ValFraction); err != nil {
		return opts, err
	}
	return opts, nil
}

func printSplitSummary(cmd *cobra.Command, res *prepare.Result, labelColumn string) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"train", strconv.Itoa(res.Counts.Train), filepath.Base(res.Outputs.Train)},
		{"validation", strconv.Itoa(res.Counts.Val), fileOrDash(res.Outputs.Val)},
		{"test", strconv.Itoa(res.Counts.Test), filepath.Base(res.Outputs.Test)},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Split", "Rows", "File"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "Loaded %d rows, kept %d after cleaning\n", res.Counts.Loaded, res.Counts.Cleaned)
	if labels := formatLabelCounts(res, labelColumn); labels != "" {
		fmt.Fprintf(out, "Labels: %s\n", labels)
	}
	fmt.Fprintf(out, "Output: %s\n", res.Outputs.Dir)
	fmt.Fprintf(out, "Run:    %s\n", res.RunID)
}

func fileOrDash(path string) string {
	if path == "" {
		return "-"
	}
	return filepath.Base(path)
}

func formatLabelCounts(res *prepare.Result, labelColumn string) string {
	totals := make(map[string]int)
	for _, part := range []*dataset.Dataset{res.Train, res.Val, res.Test} {
		for label, n := range part.LabelCounts(labelColumn) {
			totals[label] += n
		}
	}
	labels := slices.Sorted(maps.Keys(totals))
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		name := language.DisplayName(label)
		if name == label {
			parts = append(parts, fmt.Sprintf("%s %d", label, totals[label]))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s) %d", name, label, totals[label]))
	}
	return strings.Join(parts, ", ")
}
