package config

import "langprep/internal/split"

const (
	defaultDataDir      = "data"
	defaultLogDir       = "~/.local/share/langprep/logs"
	defaultBundleSubdir = "hf_dataset_upload"
	defaultTextColumn   = "text"
	defaultLabelColumn  = "language"
	defaultTestFraction = 0.2
	defaultValFraction  = 0.1
	defaultSeed         = 42
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultLedgerFile   = "ledger.db"
	defaultReadme       = "README.md"

	rawSubdir       = "raw"
	processedSubdir = "processed"
	splitsSubdir    = "splits"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Dataset: Dataset{
			TextColumn:  defaultTextColumn,
			LabelColumn: defaultLabelColumn,
		},
		Split: Split{
			TestFraction: defaultTestFraction,
			ValFraction:  defaultValFraction,
			Seed:         defaultSeed,
			ValBasis:     string(split.BasisTotal),
			Stratify:     true,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Bundle: Bundle{
			Readme: defaultReadme,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
