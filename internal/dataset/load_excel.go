package dataset

import (
	"fmt"
	"strconv"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// loadXLSX reads the first worksheet of an Office Open XML workbook. Cells
// stored as numbers come back as float64, everything else as strings.
func loadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", ErrMalformed, sheet)
	}

	ds, err := newFromHeader(rows[0])
	if err != nil {
		return nil, err
	}
	for r, rec := range rows[1:] {
		if len(rec) > len(ds.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrMalformed, r+2, len(rec), len(ds.Columns))
		}
		values := make([]Value, len(rec))
		for c, cell := range rec {
			if cell == "" {
				continue
			}
			values[c] = xlsxCell(f, sheet, c+1, r+2, cell)
		}
		ds.Append(values...)
	}
	return ds, nil
}

func xlsxCell(f *excelize.File, sheet string, col, row int, raw string) Value {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case excelize.CellTypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// maxXLSColumns bounds the header scan for rows written without a ROW record.
const maxXLSColumns = 256

// loadXLS reads the first worksheet of a legacy BIFF workbook. The format
// carries no reliable cell typing through the reader, so cells are strings.
func loadXLS(path string) (*Dataset, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil {
		return nil, fmt.Errorf("%w: no workbook stream", ErrMalformed)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: first sheet unreadable", ErrMalformed)
	}

	header := xlsRow(sheet, 0)
	if header == nil {
		return nil, fmt.Errorf("%w: sheet %q has no header row", ErrMalformed, sheet.Name)
	}
	width := header.LastCol()
	if width == 0 {
		for width < maxXLSColumns && header.Col(width) != "" {
			width++
		}
	}
	names := make([]string, width)
	for c := range names {
		names[c] = header.Col(c)
	}
	ds, err := newFromHeader(names)
	if err != nil {
		return nil, err
	}

	for r := 1; r <= int(sheet.MaxRow); r++ {
		row := xlsRow(sheet, r)
		if row == nil {
			ds.Append()
			continue
		}
		cells := make([]string, len(ds.Columns))
		for c := range cells {
			cells[c] = row.Col(c)
		}
		ds.Append(stringCells(cells)...)
	}
	return ds, nil
}

// xlsRow returns row i, or nil when the sheet has no record for it. The
// reader dereferences missing rows, so the panic is turned into nil.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
