// Package config loads, normalizes, and validates langprep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LANGPREP_DATA_DIR. The Config type centralizes every knob the pipeline and
// CLI need, so the data directory layout, column names, split fractions, and
// ledger location are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and split ratios that were already
// checked against the partition constraints.
package config
