package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported input file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		if ext == "" {
			ext = "(none)"
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Load parses the file at path with the reader selected by its extension.
func Load(path string) (*Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var ds *Dataset
	switch format {
	case FormatCSV:
		ds, err = loadCSVFile(path)
	case FormatJSON:
		ds, err = loadJSONFile(path)
	case FormatXLSX:
		ds, err = loadXLSX(path)
	case FormatXLS:
		ds, err = loadXLS(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

func loadCSVFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses comma-separated input whose first record is the header.
// Empty cells become nil; every other cell stays a string.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	ds, err := newFromHeader(header)
	if err != nil {
		return nil, err
	}

	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		if len(rec) > len(ds.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrMalformed, line, len(rec), len(ds.Columns))
		}
		ds.Append(stringCells(rec)...)
	}
	return ds, nil
}

func newFromHeader(header []string) (*Dataset, error) {
	seen := make(map[string]struct{}, len(header))
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformed, name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}
	return New(columns...), nil
}

func stringCells(rec []string) []Value {
	values := make([]Value, len(rec))
	for i, cell := range rec {
		if cell == "" {
			continue
		}
		values[i] = cell
	}
	return values
}
