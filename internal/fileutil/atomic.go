package fileutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempFile is a file being written next to its final destination.
type TempFile struct {
	f    *os.File
	dest string
}

// CreateTemp opens a hidden temporary file in dest's directory. Nothing is
// visible at dest until Commit.
func CreateTemp(dest string) (*TempFile, error) {
	dir := filepath.Dir(dest)
	f, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	return &TempFile{f: f, dest: dest}, nil
}

// Name returns the temporary path.
func (t *TempFile) Name() string { return t.f.Name() }

// Write implements io.Writer.
func (t *TempFile) Write(p []byte) (int, error) { return t.f.Write(p) }

// Commit syncs the temporary file and renames it over the destination.
func (t *TempFile) Commit() error {
	if err := t.f.Sync(); err != nil {
		t.Abort()
		return fmt.Errorf("sync %s: %w", t.f.Name(), err)
	}
	if err := t.f.Close(); err != nil {
		_ = os.Remove(t.f.Name())
		return fmt.Errorf("close %s: %w", t.f.Name(), err)
	}
	if err := os.Chmod(t.f.Name(), 0o644); err != nil {
		_ = os.Remove(t.f.Name())
		return err
	}
	if err := os.Rename(t.f.Name(), t.dest); err != nil {
		_ = os.Remove(t.f.Name())
		return fmt.Errorf("rename into %s: %w", t.dest, err)
	}
	return nil
}

// Abort discards the temporary file. Safe to call after Commit.
func (t *TempFile) Abort() {
	_ = t.f.Close()
	_ = os.Remove(t.f.Name())
}

// WriteFileAtomic writes dest through a temporary file so readers never
// observe a partially written file.
func WriteFileAtomic(dest string, write func(io.Writer) error) error {
	tmp, err := CreateTemp(dest)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Abort()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Abort()
		return err
	}
	return tmp.Commit()
}
