package testsupport

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteCSV writes header and rows to path, creating parent directories.
func WriteCSV(t testing.TB, path string, header []string, rows [][]string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header %s: %v", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows %s: %v", path, err)
	}
	return path
}

// BalancedRows returns n (text, label) rows alternating between "en" and "sn".
func BalancedRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		label := "en"
		if i%2 == 1 {
			label = "sn"
		}
		rows[i] = []string{fmt.Sprintf("sample_%d", i), label}
	}
	return rows
}

// WriteBalancedCSV writes an n-row two-label corpus with text/language columns.
func WriteBalancedCSV(t testing.TB, path string, n int) string {
	t.Helper()
	return WriteCSV(t, path, []string{"text", "language"}, BalancedRows(n))
}
