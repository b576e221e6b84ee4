package dataset

import (
	"fmt"
	"slices"
)

// Value is a single cell: string, json.Number, float64, int64, bool, or nil.
type Value = any

// Record is the (text, label) view of one row.
type Record struct {
	Text  string
	Label string
}

// Dataset is an ordered sequence of rows over named columns.
type Dataset struct {
	Columns []string
	Rows    [][]Value
}

// New returns an empty dataset with the given columns.
func New(columns ...string) *Dataset {
	return &Dataset{Columns: slices.Clone(columns)}
}

// FromRecords builds a two-column dataset from records.
func FromRecords(textColumn, labelColumn string, records []Record) *Dataset {
	ds := New(textColumn, labelColumn)
	ds.Rows = make([][]Value, 0, len(records))
	for _, rec := range records {
		ds.Rows = append(ds.Rows, []Value{rec.Text, rec.Label})
	}
	return ds
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnIndex returns the position of name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	if d == nil {
		return -1
	}
	return slices.Index(d.Columns, name)
}

// HasColumn reports whether the dataset has a column called name.
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// RequireColumns fails with ErrMissingColumn for the first absent name.
func (d *Dataset) RequireColumns(names ...string) error {
	for _, name := range names {
		if !d.HasColumn(name) {
			return fmt.Errorf("%w: %q (have %v)", ErrMissingColumn, name, d.columnsOrNil())
		}
	}
	return nil
}

func (d *Dataset) columnsOrNil() []string {
	if d == nil {
		return nil
	}
	return d.Columns
}

// Append adds a row, padding missing trailing cells with nil.
func (d *Dataset) Append(values ...Value) {
	row := make([]Value, len(d.Columns))
	copy(row, values)
	d.Rows = append(d.Rows, row)
}

// Value returns the cell at row i in column name, or nil when either is absent.
func (d *Dataset) Value(i int, name string) Value {
	col := d.ColumnIndex(name)
	if col < 0 || i < 0 || i >= d.Len() {
		return nil
	}
	row := d.Rows[i]
	if col >= len(row) {
		return nil
	}
	return row[col]
}

// Strings renders every cell of a column with CellString.
func (d *Dataset) Strings(name string) ([]string, error) {
	col := d.ColumnIndex(name)
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	out := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		if col < len(row) {
			out[i] = CellString(row[col])
		}
	}
	return out, nil
}

// Records returns the (text, label) view of every row.
func (d *Dataset) Records(textColumn, labelColumn string) ([]Record, error) {
	texts, err := d.Strings(textColumn)
	if err != nil {
		return nil, err
	}
	labels, err := d.Strings(labelColumn)
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(texts))
	for i := range texts {
		out[i] = Record{Text: texts[i], Label: labels[i]}
	}
	return out, nil
}

// Subset returns a new dataset containing the rows at idx, in idx order.
// Row slices are copied so the result can be mutated independently.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := New(d.Columns...)
	out.Rows = make([][]Value, 0, len(idx))
	for _, i := range idx {
		out.Rows = append(out.Rows, slices.Clone(d.Rows[i]))
	}
	return out
}

// Clone deep-copies the row slices of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := New(d.Columns...)
	out.Rows = make([][]Value, len(d.Rows))
	for i, row := range d.Rows {
		out.Rows[i] = slices.Clone(row)
	}
	return out
}

// LabelCounts tallies the rendered values of a column.
func (d *Dataset) LabelCounts(name string) map[string]int {
	values, err := d.Strings(name)
	if err != nil {
		return nil
	}
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	return counts
}
