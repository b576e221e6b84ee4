package bundle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"langprep/internal/fileutil"
	"langprep/internal/logging"
)

// ManifestFile is written into the bundle directory last.
const ManifestFile = "manifest.json"

// ErrMissingFile reports a source file that does not exist.
var ErrMissingFile = errors.New("missing file")

// Options describes one staging operation.
type Options struct {
	// Files are copied into Dir under their base names.
	Files []string
	// Readme is copied as README.md. Empty skips the dataset card.
	Readme string
	Dir    string
	RepoID string
	Logger *slog.Logger
}

// Entry describes one staged file.
type Entry struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Manifest is the content of manifest.json.
type Manifest struct {
	RepoID    string    `json:"repo_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Files     []Entry   `json:"files"`
}

type source struct {
	path string
	name string
}

// Stage copies opts.Files and opts.Readme into opts.Dir and writes the
// manifest. It fails with ErrMissingFile before copying anything if a
// source is absent.
func Stage(ctx context.Context, opts Options) (Manifest, error) {
	logger := logging.NewComponentLogger(opts.Logger, "bundle")
	logger = logging.WithContext(logging.WithStage(ctx, "bundle"), logger)

	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return Manifest{}, errors.New("bundle directory is empty")
	}
	sources, err := collect(opts)
	if err != nil {
		return Manifest{}, err
	}
	if len(sources) == 0 {
		return Manifest{}, errors.New("no files to stage")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("create bundle directory: %w", err)
	}

	manifest := Manifest{
		RepoID:    strings.TrimSpace(opts.RepoID),
		CreatedAt: time.Now().UTC(),
		Files:     make([]Entry, 0, len(sources)),
	}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return Manifest{}, err
		}
		dst := filepath.Join(dir, src.name)
		if err := fileutil.CopyFileVerified(src.path, dst); err != nil {
			return Manifest{}, fmt.Errorf("stage %s: %w", src.name, err)
		}
		sum, size, err := fileutil.SHA256File(dst)
		if err != nil {
			return Manifest{}, fmt.Errorf("hash %s: %w", src.name, err)
		}
		manifest.Files = append(manifest.Files, Entry{Name: src.name, Size: size, SHA256: sum})
		logger.Debug("file staged",
			logging.String("path", dst),
			logging.Int64("size", size),
			logging.String("sha256", sum),
		)
	}

	err = fileutil.WriteFileAtomic(filepath.Join(dir, ManifestFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("write manifest: %w", err)
	}

	logger.Info("bundle staged",
		logging.String("output_dir", dir),
		logging.Int("files", len(manifest.Files)),
		logging.String("repo_id", manifest.RepoID),
	)
	return manifest, nil
}

func collect(opts Options) ([]source, error) {
	var sources []source
	var missing []string
	seen := make(map[string]string)

	add := func(path, name string) error {
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			missing = append(missing, path)
			return nil
		case err != nil:
			return fmt.Errorf("stat %s: %w", path, err)
		case info.IsDir():
			return fmt.Errorf("%s is a directory", path)
		}
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("%s and %s both stage as %s", prev, path, name)
		}
		seen[name] = path
		sources = append(sources, source{path: path, name: name})
		return nil
	}

	for _, path := range opts.Files {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := add(path, filepath.Base(path)); err != nil {
			return nil, err
		}
	}
	if readme := strings.TrimSpace(opts.Readme); readme != "" {
		if err := add(readme, "README.md"); err != nil {
			return nil, err
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, strings.Join(missing, ", "))
	}
	if slices.ContainsFunc(sources, func(s source) bool { return s.name == ManifestFile }) {
		return nil, fmt.Errorf("%s is reserved for the bundle manifest", ManifestFile)
	}
	return sources, nil
}

// ReadManifest loads the manifest from a staged bundle directory.
func ReadManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
