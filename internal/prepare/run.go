package prepare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"langprep/internal/dataset"
	"langprep/internal/fileutil"
	"langprep/internal/ledger"
	"langprep/internal/logging"
	"langprep/internal/preflight"
	"langprep/internal/split"
)

// ErrPreflight wraps failed preflight checks.
var ErrPreflight = errors.New("preflight failed")

// RunOptions describes one pipeline run. Zero values are filled from the
// Preparer's config by RunOptionsFor.
type RunOptions struct {
	InputPath     string
	OutputDir     string
	TextColumn    string
	LabelColumn   string
	TestFraction  float64
	ValFraction   float64
	Seed          int64
	Basis         split.Basis
	Stratify      bool
	SkipPreflight bool
}

func (o RunOptions) splitOptions() split.Options {
	return split.Options{
		TestFraction: o.TestFraction,
		ValFraction:  o.ValFraction,
		Seed:         o.Seed,
		LabelColumn:  o.LabelColumn,
		Basis:        o.Basis,
		Stratify:     o.Stratify,
	}
}

// Result is what a successful Run produced.
type Result struct {
	RunID    string           `json:"run_id"`
	Input    string           `json:"input"`
	Counts   ledger.Counts    `json:"counts"`
	Outputs  Outputs          `json:"outputs"`
	Duration time.Duration    `json:"duration"`
	Train    *dataset.Dataset `json:"-"`
	Val      *dataset.Dataset `json:"-"`
	Test     *dataset.Dataset `json:"-"`
}

// RunOptionsFor returns options for inputPath seeded from the config.
func (p *Preparer) RunOptionsFor(inputPath string) RunOptions {
	s := p.cfg.SplitOptions()
	return RunOptions{
		InputPath:    inputPath,
		OutputDir:    p.cfg.Paths.OutputDir,
		TextColumn:   p.cfg.Dataset.TextColumn,
		LabelColumn:  p.cfg.Dataset.LabelColumn,
		TestFraction: s.TestFraction,
		ValFraction:  s.ValFraction,
		Seed:         s.Seed,
		Basis:        s.Basis,
		Stratify:     s.Stratify,
	}
}

// Run validates the split ratios, then loads, cleans, splits, and persists
// the corpus. Nothing is written to the output directory unless every
// earlier stage succeeded.
func (p *Preparer) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := split.ValidateFractions(opts.TestFraction, opts.ValFraction); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, errors.New("input path is empty")
	}
	if _, err := dataset.DetectFormat(opts.InputPath); err != nil {
		return nil, fmt.Errorf("load %s: %w", opts.InputPath, err)
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		opts.OutputDir = p.cfg.Paths.OutputDir
	}
	if opts.Basis == "" {
		opts.Basis = split.BasisTotal
	}

	started := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	if !opts.SkipPreflight {
		results := preflight.RunAll(p.cfg, opts.InputPath, opts.OutputDir)
		if err := preflight.Err(results); err != nil {
			logging.ErrorWithContext(logger, "preflight failed", "preflight_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run `langprep preflight` for details"),
			)
			return nil, fmt.Errorf("%w: %w", ErrPreflight, err)
		}
	}

	rec := p.begin(ctx, runID, opts)
	var counts ledger.Counts
	fail := func(err error) (*Result, error) {
		logging.ErrorWithContext(logger, "preparation failed", "run_failed", logging.Error(err))
		rec.fail(ctx, counts, err)
		return nil, err
	}

	logger.Info("preparation started",
		logging.String("input_path", opts.InputPath),
		logging.String("output_dir", opts.OutputDir),
		logging.Float64("test_fraction", opts.TestFraction),
		logging.Float64("val_fraction", opts.ValFraction),
		logging.Int64("seed", opts.Seed),
	)

	raw, err := p.Load(opts.InputPath)
	if err != nil {
		return fail(err)
	}
	counts.Loaded = raw.Len()
	logging.WithContext(logging.WithStage(ctx, "load"), p.logger).Debug("corpus loaded",
		logging.Int("rows", raw.Len()),
		logging.Any("columns", raw.Columns),
	)
	if err := raw.RequireColumns(opts.TextColumn, opts.LabelColumn); err != nil {
		return fail(fmt.Errorf("load %s: %w", opts.InputPath, err))
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	cleaned, err := p.Preprocess(raw, opts.TextColumn, opts.LabelColumn)
	if err != nil {
		return fail(fmt.Errorf("preprocess: %w", err))
	}
	counts.Cleaned = cleaned.Len()
	logging.WithContext(logging.WithStage(ctx, "preprocess"), p.logger).Info("text cleaned",
		logging.Int("rows_loaded", counts.Loaded),
		logging.Int("rows_cleaned", counts.Cleaned),
		logging.Int("rows_dropped", counts.Loaded-counts.Cleaned),
	)
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	parts, err := p.Split(cleaned, opts.splitOptions())
	if err != nil {
		return fail(fmt.Errorf("split: %w", err))
	}
	counts.Train, counts.Val, counts.Test = parts.Train.Len(), parts.Val.Len(), parts.Test.Len()
	logging.WithContext(logging.WithStage(ctx, "split"), p.logger).Debug("split computed",
		logging.Float64("val_ratio", opts.splitOptions().ValRatio()),
		logging.Int("label_count", len(cleaned.LabelCounts(opts.LabelColumn))),
	)
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	outputs, err := p.Persist(ctx, parts, opts.OutputDir)
	if err != nil {
		return fail(err)
	}

	rec.complete(ctx, counts)
	return &Result{
		RunID:    runID,
		Input:    opts.InputPath,
		Counts:   counts,
		Outputs:  outputs,
		Duration: time.Since(started),
		Train:    parts.Train,
		Val:      parts.Val,
		Test:     parts.Test,
	}, nil
}

// runRecord forwards to the recorder and downgrades its errors to
// warnings. History is best effort and never fails a run.
type runRecord struct {
	p  *Preparer
	id string
}

func (p *Preparer) begin(ctx context.Context, runID string, opts RunOptions) runRecord {
	if p.runs == nil {
		return runRecord{}
	}
	sum, _, _ := fileutil.SHA256File(opts.InputPath)
	run, err := p.runs.Begin(ctx, ledger.Run{
		ID:           runID,
		InputPath:    opts.InputPath,
		InputSHA256:  sum,
		TextColumn:   opts.TextColumn,
		LabelColumn:  opts.LabelColumn,
		TestFraction: opts.TestFraction,
		ValFraction:  opts.ValFraction,
		ValBasis:     string(opts.Basis),
		Seed:         opts.Seed,
		Stratified:   opts.Stratify,
		OutputDir:    opts.OutputDir,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "run history unavailable", "ledger_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the run continues without being recorded"),
		)
		return runRecord{}
	}
	return runRecord{p: p, id: run.ID}
}

func (r runRecord) complete(ctx context.Context, counts ledger.Counts) {
	if r.p == nil {
		return
	}
	if err := r.p.runs.Complete(context.WithoutCancel(ctx), r.id, counts); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.p.logger), "record run completion failed", "ledger_complete_failed", logging.Error(err))
	}
}

func (r runRecord) fail(ctx context.Context, counts ledger.Counts, cause error) {
	if r.p == nil {
		return
	}
	if err := r.p.runs.Fail(context.WithoutCancel(ctx), r.id, counts, cause); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.p.logger), "record run failure failed", "ledger_fail_failed", logging.Error(err))
	}
}
