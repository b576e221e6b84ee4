package dataset

import "errors"

var (
	// ErrUnsupportedFormat reports an input file whose extension has no reader.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrMissingColumn reports a configured column that the dataset lacks.
	ErrMissingColumn = errors.New("missing column")
	// ErrMalformed reports input that a reader could parse but not tabulate.
	ErrMalformed = errors.New("malformed dataset")
)
