package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize fills unset paths and sections with their defaults and makes
// every path absolute with "~" expanded. Load calls it; a Config built from
// Default in code must be normalized before use.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDataset()
	c.normalizeSplit()
	c.normalizeCleaning()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	if err := c.normalizeBundle(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		if value, ok := os.LookupEnv("LANGPREP_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.DataDir = strings.TrimSpace(value)
		} else {
			c.Paths.DataDir = defaultDataDir
		}
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = filepath.Join(c.Paths.DataDir, splitsSubdir)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() {
	c.Dataset.TextColumn = strings.TrimSpace(c.Dataset.TextColumn)
	if c.Dataset.TextColumn == "" {
		c.Dataset.TextColumn = defaultTextColumn
	}
	c.Dataset.LabelColumn = strings.TrimSpace(c.Dataset.LabelColumn)
	if c.Dataset.LabelColumn == "" {
		c.Dataset.LabelColumn = defaultLabelColumn
	}
}

func (c *Config) normalizeSplit() {
	c.Split.ValBasis = strings.ToLower(strings.TrimSpace(c.Split.ValBasis))
	if c.Split.ValBasis == "" {
		c.Split.ValBasis = Default().Split.ValBasis
	}
}

func (c *Config) normalizeCleaning() {
	if len(c.Cleaning.LabelMap) == 0 {
		c.Cleaning.LabelMap = nil
		return
	}
	mapped := make(map[string]string, len(c.Cleaning.LabelMap))
	for from, to := range c.Cleaning.LabelMap {
		from = strings.TrimSpace(from)
		if from == "" {
			continue
		}
		mapped[from] = strings.TrimSpace(to)
	}
	c.Cleaning.LabelMap = mapped
}

func (c *Config) normalizeLedger() error {
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = ""
		return nil
	}
	var err error
	if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeBundle() error {
	var err error
	if strings.TrimSpace(c.Bundle.Dir) == "" {
		c.Bundle.Dir = filepath.Join(c.Paths.DataDir, defaultBundleSubdir)
	}
	if c.Bundle.Dir, err = expandPath(c.Bundle.Dir); err != nil {
		return fmt.Errorf("bundle.dir: %w", err)
	}
	c.Bundle.Readme = strings.TrimSpace(c.Bundle.Readme)
	if c.Bundle.Readme == "" {
		c.Bundle.Readme = defaultReadme
	}
	c.Bundle.RepoID = strings.TrimSpace(c.Bundle.RepoID)
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
