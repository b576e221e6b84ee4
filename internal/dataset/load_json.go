package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
)

func loadJSONFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadJSON(bytes.NewReader(data))
}

// ReadJSON parses either a list of row objects ([{"text": ..}, ..]) or an
// object of columns ({"text": {"0": ..}} or {"text": [..]}). Column order
// follows first appearance in the document. Numbers stay json.Number.
func ReadJSON(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	switch tok {
	case json.Delim('['):
		return readJSONRecords(dec)
	case json.Delim('{'):
		return readJSONColumns(dec)
	default:
		return nil, fmt.Errorf("%w: expected array or object, got %v", ErrMalformed, tok)
	}
}

type orderedObject struct {
	keys   []string
	values map[string]any
}

// readObjectBody consumes the members of an object whose opening brace was
// already read, preserving key order.
func readObjectBody(dec *json.Decoder) (orderedObject, error) {
	obj := orderedObject{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return obj, err
		}
		key, ok := tok.(string)
		if !ok {
			return obj, fmt.Errorf("%w: object key %v", ErrMalformed, tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return obj, err
		}
		if _, dup := obj.values[key]; !dup {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return obj, err
	}
	return obj, nil
}

func readJSONRecords(dec *json.Decoder) (*Dataset, error) {
	var rows []orderedObject
	var columns []string
	seen := make(map[string]struct{})

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(rows), err)
		}
		if tok != json.Delim('{') {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrMalformed, len(rows))
		}
		obj, err := readObjectBody(dec)
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(rows), err)
		}
		for _, key := range obj.keys {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
		}
		rows = append(rows, obj)
	}

	ds := New(columns...)
	for _, obj := range rows {
		row := make([]Value, len(columns))
		for i, col := range columns {
			row[i] = jsonCell(obj.values[col])
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func readJSONColumns(dec *json.Decoder) (*Dataset, error) {
	obj, err := readObjectBody(dec)
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	type column struct {
		byKey map[string]any
	}
	cols := make([]column, len(obj.keys))
	var rowKeys []string
	seenRow := make(map[string]struct{})
	addRowKey := func(k string) {
		if _, ok := seenRow[k]; !ok {
			seenRow[k] = struct{}{}
			rowKeys = append(rowKeys, k)
		}
	}

	for i, name := range obj.keys {
		cols[i].byKey = make(map[string]any)
		switch v := obj.values[name].(type) {
		case map[string]any:
			// Keys of a decoded map have no order; sortRowKeys restores it.
			for k, cell := range v {
				cols[i].byKey[k] = cell
				addRowKey(k)
			}
		case []any:
			for j, cell := range v {
				k := strconv.Itoa(j)
				cols[i].byKey[k] = cell
				addRowKey(k)
			}
		default:
			return nil, fmt.Errorf("%w: column %q is neither an object nor an array", ErrMalformed, name)
		}
	}

	sortRowKeys(rowKeys)
	ds := New(obj.keys...)
	for _, k := range rowKeys {
		row := make([]Value, len(cols))
		for i := range cols {
			row[i] = jsonCell(cols[i].byKey[k])
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// sortRowKeys orders numeric index keys numerically and everything else
// lexically after them.
func sortRowKeys(keys []string) {
	slices.SortStableFunc(keys, func(a, b string) int {
		ai, aErr := strconv.Atoi(a)
		bi, bErr := strconv.Atoi(b)
		switch {
		case aErr == nil && bErr == nil:
			return ai - bi
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	})
}

// jsonCell flattens nested values to their JSON text so they survive a CSV
// round trip; scalars are kept as decoded.
func jsonCell(v any) Value {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(data)
	default:
		return v
	}
}
