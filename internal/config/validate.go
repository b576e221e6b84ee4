package config

import (
	"errors"
	"fmt"

	"langprep/internal/split"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDataset() error {
	if c.Dataset.TextColumn == "" {
		return errors.New("dataset.text_column must be set")
	}
	if c.Dataset.LabelColumn == "" {
		return errors.New("dataset.label_column must be set")
	}
	if c.Dataset.TextColumn == c.Dataset.LabelColumn {
		return fmt.Errorf("dataset.text_column and dataset.label_column must differ (both %q)", c.Dataset.TextColumn)
	}
	return nil
}

func (c *Config) validateSplit() error {
	if err := split.ValidateFractions(c.Split.TestFraction, c.Split.ValFraction); err != nil {
		return fmt.Errorf("split: %w", err)
	}
	switch split.Basis(c.Split.ValBasis) {
	case split.BasisTotal, split.BasisRemainder:
	default:
		return fmt.Errorf("split.val_basis must be %q or %q, got %q", split.BasisTotal, split.BasisRemainder, c.Split.ValBasis)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
