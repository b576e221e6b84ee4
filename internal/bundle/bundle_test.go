package bundle_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"langprep/internal/bundle"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestStageCopiesFilesAndWritesManifest(t *testing.T) {
	src := t.TempDir()
	dir := filepath.Join(t.TempDir(), "upload")
	train := writeFile(t, src, "train.csv", "text,language\nhello,en\n")
	test := writeFile(t, src, "test.csv", "text,language\nmhoro,sn\n")
	readme := writeFile(t, src, "CARD.md", "# Shona/English\n")

	manifest, err := bundle.Stage(context.Background(), bundle.Options{
		Files:  []string{train, test},
		Readme: readme,
		Dir:    dir,
		RepoID: "example/en-sn",
	})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if len(manifest.Files) != 3 {
		t.Fatalf("expected 3 manifest entries, got %d", len(manifest.Files))
	}
	for _, name := range []string{"train.csv", "test.csv", "README.md", bundle.ManifestFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s in bundle: %v", name, err)
		}
	}

	back, err := bundle.ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if back.RepoID != "example/en-sn" {
		t.Fatalf("unexpected repo id %q", back.RepoID)
	}
	first := back.Files[0]
	if first.Name != "train.csv" || first.Size != int64(len("text,language\nhello,en\n")) || len(first.SHA256) != 64 {
		t.Fatalf("unexpected entry %+v", first)
	}
}

func TestStageMissingFileCopiesNothing(t *testing.T) {
	src := t.TempDir()
	dir := filepath.Join(t.TempDir(), "upload")
	train := writeFile(t, src, "train.csv", "text,language\n")

	_, err := bundle.Stage(context.Background(), bundle.Options{
		Files: []string{train, filepath.Join(src, "val.csv")},
		Dir:   dir,
	})
	if !errors.Is(err, bundle.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected bundle directory to be absent, stat err=%v", err)
	}
}

func TestStageRejectsDuplicateNames(t *testing.T) {
	a := writeFile(t, t.TempDir(), "train.csv", "a")
	b := writeFile(t, t.TempDir(), "train.csv", "b")
	if _, err := bundle.Stage(context.Background(), bundle.Options{Files: []string{a, b}, Dir: t.TempDir()}); err == nil {
		t.Fatal("expected duplicate base names to fail")
	}
}

func TestStageRequiresDirectory(t *testing.T) {
	a := writeFile(t, t.TempDir(), "train.csv", "a")
	if _, err := bundle.Stage(context.Background(), bundle.Options{Files: []string{a}}); err == nil {
		t.Fatal("expected empty directory to fail")
	}
}
