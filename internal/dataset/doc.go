// Package dataset holds the in-memory tabular model the preparation pipeline
// works on, together with its readers, writer, and text cleaning.
//
// A Dataset is an ordered list of rows over named columns. Cells are loosely
// typed (string, number, bool, or nil) so a corpus loaded from JSON or Excel
// keeps the distinction between real text and stray numeric or missing
// values; cleaning treats anything that is not a string as empty text.
//
// Load picks a reader from the file extension (.csv, .json, .xlsx, .xls) and
// WriteCSV emits the header-plus-rows layout the split files use. Rows are
// never reordered by this package; Preprocess only drops rows.
package dataset
