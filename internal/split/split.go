package split

import (
	"errors"
	"fmt"
	"math"

	"langprep/internal/dataset"
)

var (
	// ErrInvalidSplitRatio reports fractions outside [0, 1) or summing to 1 or more.
	ErrInvalidSplitRatio = errors.New("invalid split ratio")
	// ErrInsufficientData reports a dataset too small or too imbalanced to split.
	ErrInsufficientData = errors.New("insufficient data")
)

// Basis says what the validation fraction is a share of.
type Basis string

const (
	// BasisTotal treats ValFraction as a share of the whole dataset; the
	// second stage uses ValFraction / (1 - TestFraction).
	BasisTotal Basis = "total"
	// BasisRemainder treats ValFraction as a share of the rows left after
	// the test split.
	BasisRemainder Basis = "remainder"
)

// Options controls a split.
type Options struct {
	TestFraction float64
	ValFraction  float64
	Seed         int64
	// LabelColumn is stratified on when Stratify is set and the dataset has it.
	LabelColumn string
	Basis       Basis
	Stratify    bool
}

// Partition holds row indices into the split dataset.
type Partition struct {
	Train []int
	Val   []int
	Test  []int
}

// Result holds the three split datasets.
type Result struct {
	Train *dataset.Dataset
	Val   *dataset.Dataset
	Test  *dataset.Dataset
}

// ValidateFractions enforces 0 <= test < 1, 0 <= val < 1 and test + val < 1.
func ValidateFractions(testFraction, valFraction float64) error {
	switch {
	case math.IsNaN(testFraction) || testFraction < 0 || testFraction >= 1:
		return fmt.Errorf("%w: test fraction %v must be in [0, 1)", ErrInvalidSplitRatio, testFraction)
	case math.IsNaN(valFraction) || valFraction < 0 || valFraction >= 1:
		return fmt.Errorf("%w: validation fraction %v must be in [0, 1)", ErrInvalidSplitRatio, valFraction)
	case testFraction+valFraction >= 1:
		return fmt.Errorf("%w: test fraction %v plus validation fraction %v must be below 1", ErrInvalidSplitRatio, testFraction, valFraction)
	}
	return nil
}

// ValRatio returns the share of the train+val pool that goes to validation.
func (o Options) ValRatio() float64 {
	if o.Basis == BasisRemainder {
		return o.ValFraction
	}
	return o.ValFraction / (1 - o.TestFraction)
}

// Split partitions ds into train, validation, and test datasets.
func Split(ds *dataset.Dataset, opts Options) (Result, error) {
	part, err := Indices(ds, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Train: ds.Subset(part.Train),
		Val:   ds.Subset(part.Val),
		Test:  ds.Subset(part.Test),
	}, nil
}

// Indices computes the partition of ds as row indices.
func Indices(ds *dataset.Dataset, opts Options) (Partition, error) {
	if err := ValidateFractions(opts.TestFraction, opts.ValFraction); err != nil {
		return Partition{}, err
	}

	var labels []string
	if opts.Stratify && opts.LabelColumn != "" && ds.HasColumn(opts.LabelColumn) {
		var err error
		if labels, err = ds.Strings(opts.LabelColumn); err != nil {
			return Partition{}, err
		}
	}

	all := make([]int, ds.Len())
	for i := range all {
		all[i] = i
	}

	trainVal, test, err := holdout(all, labels, opts.TestFraction, opts.Seed)
	if err != nil {
		return Partition{}, fmt.Errorf("test split: %w", err)
	}
	if opts.ValFraction == 0 {
		return Partition{Train: trainVal, Val: []int{}, Test: test}, nil
	}

	train, val, err := holdout(trainVal, labels, opts.ValRatio(), opts.Seed)
	if err != nil {
		return Partition{}, fmt.Errorf("validation split: %w", err)
	}
	return Partition{Train: train, Val: val, Test: test}, nil
}

// HeldOutCount is the number of rows a fraction of n holds out. Integral
// products are exact; fractional products round up.
func HeldOutCount(n int, fraction float64) int {
	x := fraction * float64(n)
	if r := math.Round(x); math.Abs(x-r) < 1e-9 {
		return int(r)
	}
	return int(math.Ceil(x))
}
