package prepare

import (
	"context"
	"log/slog"

	"langprep/internal/config"
	"langprep/internal/dataset"
	"langprep/internal/language"
	"langprep/internal/ledger"
	"langprep/internal/logging"
	"langprep/internal/split"
	"langprep/internal/textutil"
)

// RunRecorder stores run history. *ledger.Store satisfies it.
type RunRecorder interface {
	Begin(ctx context.Context, run ledger.Run) (*ledger.Run, error)
	Complete(ctx context.Context, id string, counts ledger.Counts) error
	Fail(ctx context.Context, id string, counts ledger.Counts, cause error) error
}

// Preparer runs the load, clean, split, and persist stages.
type Preparer struct {
	cfg    *config.Config
	logger *slog.Logger
	runs   RunRecorder
}

// Option customizes a Preparer.
type Option func(*Preparer)

// WithLogger sets the base logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Preparer) {
		p.logger = logger
	}
}

// WithRecorder attaches run history. A nil recorder disables recording.
func WithRecorder(runs RunRecorder) Option {
	return func(p *Preparer) {
		p.runs = runs
	}
}

// New constructs a Preparer. A nil cfg uses the normalized config.Default().
func New(cfg *config.Config, opts ...Option) *Preparer {
	if cfg == nil {
		def := config.Default()
		// Paths left unresolved on error are reported by preflight.
		_ = def.Normalize()
		cfg = &def
	}
	p := &Preparer{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "prepare")
	return p
}

// Load reads the corpus at path. The reader is chosen by file extension.
func (p *Preparer) Load(path string) (*dataset.Dataset, error) {
	return dataset.Load(path)
}

// CleanText maps a cell to its cleaned text: strings are trimmed and
// everything else becomes "".
func (p *Preparer) CleanText(v dataset.Value) string {
	return dataset.CleanText(v)
}

// Preprocess cleans the text column, drops rows left without text, and
// applies the optional normalizers from the [cleaning] config section.
func (p *Preparer) Preprocess(ds *dataset.Dataset, textColumn, labelColumn string) (*dataset.Dataset, error) {
	return dataset.Preprocess(ds, textColumn, labelColumn, p.cleaningOptions()...)
}

func (p *Preparer) cleaningOptions() []dataset.PreprocessOption {
	c := p.cfg.Cleaning
	var text, label []textutil.Normalizer
	if c.NormalizeUnicode {
		text = append(text, textutil.NFC)
		label = append(label, textutil.NFC)
	}
	if c.CollapseWhitespace {
		text = append(text, textutil.CollapseWhitespace)
	}
	if c.LowercaseLabels {
		label = append(label, textutil.LowerLabel)
	}
	if c.CanonicalLabels {
		label = append(label, language.Canonical)
	}
	label = append(label, textutil.MapLabel(c.LabelMap))

	var opts []dataset.PreprocessOption
	if fn := textutil.Chain(text...); fn != nil {
		opts = append(opts, dataset.WithTextNormalizer(fn))
	}
	if fn := textutil.Chain(label...); fn != nil {
		opts = append(opts, dataset.WithLabelNormalizer(fn))
	}
	return opts
}

// Split partitions ds into train, validation, and test sets.
func (p *Preparer) Split(ds *dataset.Dataset, opts split.Options) (split.Result, error) {
	return split.Split(ds, opts)
}
