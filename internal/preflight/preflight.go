package preflight

import (
	"errors"
	"fmt"
	"strings"

	"langprep/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the checks that apply to a run reading inputPath and
// writing splits to outputDir. An empty inputPath skips the input checks;
// an empty outputDir falls back to the configured output directory.
func RunAll(cfg *config.Config, inputPath, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if strings.TrimSpace(inputPath) != "" {
		results = append(results, CheckReadable("Input file", inputPath))
		results = append(results, CheckFormat("Input format", inputPath))
	}

	if strings.TrimSpace(outputDir) == "" {
		outputDir = cfg.Paths.OutputDir
	}
	results = append(results, CheckWritableParent("Output directory", outputDir))

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckWritableParent("Log directory", cfg.Paths.LogDir))
	}

	if cfg.Ledger.Enabled {
		results = append(results, CheckWritableParent("Run ledger", cfg.LedgerPath()))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err joins failed results into a single error, or returns nil.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed))
	for _, r := range failed {
		errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
	}
	return errors.Join(errs...)
}
