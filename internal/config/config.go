package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"langprep/internal/split"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Dataset names the columns the pipeline reads.
type Dataset struct {
	TextColumn  string `toml:"text_column"`
	LabelColumn string `toml:"label_column"`
}

// Split contains the partition parameters.
type Split struct {
	TestFraction float64 `toml:"test_fraction"`
	ValFraction  float64 `toml:"val_fraction"`
	Seed         int64   `toml:"seed"`
	// ValBasis is "total" (val_fraction is a share of the whole dataset) or
	// "remainder" (a share of what is left after the test split).
	ValBasis string `toml:"val_basis"`
	Stratify bool   `toml:"stratify"`
}

// Cleaning contains optional text and label normalization. Everything is
// off by default, which leaves plain whitespace trimming.
type Cleaning struct {
	NormalizeUnicode   bool              `toml:"normalize_unicode"`
	CollapseWhitespace bool              `toml:"collapse_whitespace"`
	LowercaseLabels    bool              `toml:"lowercase_labels"`
	// CanonicalLabels folds names, ISO 639-2 codes and BCP 47 tags
	// ("English", "eng", "en-US") to ISO 639-1 codes.
	CanonicalLabels    bool              `toml:"canonical_labels"`
	LabelMap           map[string]string `toml:"label_map"`
}

// Ledger contains configuration for the SQLite run history.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Default: <log_dir>/ledger.db
}

// Bundle contains configuration for staging files ahead of a hub upload.
type Bundle struct {
	Dir    string `toml:"dir"` // Default: <data_dir>/hf_dataset_upload
	Readme string `toml:"readme"`
	RepoID string `toml:"repo_id"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for langprep.
//
// Configuration sections by subsystem:
//   - Paths: data directory layout, split output and log directories
//   - Dataset: text and label column names
//   - Split: test/validation fractions, seed, stratification
//   - Cleaning: optional normalization applied during preprocessing
//   - Ledger: SQLite history of pipeline runs
//   - Bundle: staging directory for hub uploads
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Dataset  Dataset  `toml:"dataset"`
	Split    Split    `toml:"split"`
	Cleaning Cleaning `toml:"cleaning"`
	Ledger   Ledger   `toml:"ledger"`
	Bundle   Bundle   `toml:"bundle"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/langprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("langprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RawDir is where source corpora are expected to live.
func (c *Config) RawDir() string {
	return filepath.Join(c.Paths.DataDir, rawSubdir)
}

// ProcessedDir holds intermediate cleaned datasets.
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.Paths.DataDir, processedSubdir)
}

// SplitsDir is the default destination for split files.
func (c *Config) SplitsDir() string {
	return filepath.Join(c.Paths.DataDir, splitsSubdir)
}

// LedgerPath returns the resolved ledger database location.
func (c *Config) LedgerPath() string {
	if strings.TrimSpace(c.Ledger.Path) != "" {
		return c.Ledger.Path
	}
	return filepath.Join(c.Paths.LogDir, defaultLedgerFile)
}

// SplitOptions converts the split section into sampler options.
func (c *Config) SplitOptions() split.Options {
	return split.Options{
		TestFraction: c.Split.TestFraction,
		ValFraction:  c.Split.ValFraction,
		Seed:         c.Split.Seed,
		LabelColumn:  c.Dataset.LabelColumn,
		Basis:        split.Basis(c.Split.ValBasis),
		Stratify:     c.Split.Stratify,
	}
}

// EnsureDirectories creates the data directory layout (raw, processed, splits)
// plus the log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.RawDir(), c.ProcessedDir(), c.SplitsDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
