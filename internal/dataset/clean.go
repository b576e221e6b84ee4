package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CellString renders a cell the way it is written to CSV. nil renders as "".
func CellString(v Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// CleanText returns "" for anything that is not a string and the value with
// surrounding whitespace trimmed otherwise.
func CleanText(v Value) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// PreprocessOption customizes Preprocess beyond plain trimming.
type PreprocessOption func(*preprocessOptions)

type preprocessOptions struct {
	text  []func(string) string
	label []func(string) string
}

// WithTextNormalizer runs fn on every cleaned text value, in registration order.
func WithTextNormalizer(fn func(string) string) PreprocessOption {
	return func(o *preprocessOptions) {
		if fn != nil {
			o.text = append(o.text, fn)
		}
	}
}

// WithLabelNormalizer runs fn on every non-nil label value.
func WithLabelNormalizer(fn func(string) string) PreprocessOption {
	return func(o *preprocessOptions) {
		if fn != nil {
			o.label = append(o.label, fn)
		}
	}
}

// Preprocess cleans the text column and drops rows whose cleaned text is
// empty. The input is not modified; surviving rows keep their relative order.
// labelColumn is only required when a label normalizer is registered.
func Preprocess(ds *Dataset, textColumn, labelColumn string, opts ...PreprocessOption) (*Dataset, error) {
	var o preprocessOptions
	for _, opt := range opts {
		opt(&o)
	}

	textIdx := ds.ColumnIndex(textColumn)
	if textIdx < 0 {
		return nil, fmt.Errorf("preprocess: %w: %q", ErrMissingColumn, textColumn)
	}
	labelIdx := ds.ColumnIndex(labelColumn)
	if len(o.label) > 0 && labelIdx < 0 {
		return nil, fmt.Errorf("preprocess: %w: %q", ErrMissingColumn, labelColumn)
	}

	out := New(ds.Columns...)
	out.Rows = make([][]Value, 0, ds.Len())
	for _, row := range ds.Rows {
		var raw Value
		if textIdx < len(row) {
			raw = row[textIdx]
		}
		text := CleanText(raw)
		for _, fn := range o.text {
			text = fn(text)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		cleaned := make([]Value, len(ds.Columns))
		copy(cleaned, row)
		cleaned[textIdx] = text
		if len(o.label) > 0 && cleaned[labelIdx] != nil {
			label := CellString(cleaned[labelIdx])
			for _, fn := range o.label {
				label = fn(label)
			}
			cleaned[labelIdx] = label
		}
		out.Rows = append(out.Rows, cleaned)
	}
	return out, nil
}
