// Package prepare runs the dataset preparation pipeline: load a labeled
// corpus, clean its text, split it into train, validation, and test sets,
// and write each split as CSV.
//
// Preparer exposes each stage on its own so callers can compose them, and
// Run chains them with the guarantees the CLI relies on: ratios are
// validated before any I/O, preflight checks run before loading, and no
// split file is written unless every earlier stage succeeded. Runs are
// tagged with a run ID in logs and, when a ledger is attached, recorded in
// the run history.
package prepare
