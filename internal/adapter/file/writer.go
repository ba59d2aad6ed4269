// Package file writes the generated site into a directory tree.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/festival-map/internal/domain"
)

// ScaffoldDirs is the project layout relative to the output root.
var ScaffoldDirs = []string{
	"data/raw",
	"data/processed",
	"assets/maps",
	"templates",
	"projetos/festivais-mundiais",
}

// Scaffold creates the project layout under base. Existing directories are
// left untouched.
func Scaffold(base string) error {
	for _, dir := range ScaffoldDirs {
		if err := os.MkdirAll(filepath.Join(base, filepath.FromSlash(dir)), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Writer stores a bundle under an output root.
// It implements pipeline.Loader.
type Writer struct {
	base          string
	exportParquet bool
	logger        *slog.Logger
}

// NewWriter creates a Writer rooted at base. With exportParquet the full
// record table is also written as Parquet.
func NewWriter(base string, exportParquet bool, logger *slog.Logger) *Writer {
	return &Writer{base: base, exportParquet: exportParquet, logger: logger}
}

// Files returns the files a Load of art would write, including the optional
// Parquet table.
func (w *Writer) Files(art domain.Artifacts) ([]domain.OutputFile, error) {
	files := art.Files()
	if w.exportParquet {
		table, err := EncodeParquet(art.Records)
		if err != nil {
			return nil, err
		}
		files = append(files, domain.OutputFile{
			Path:        domain.ParquetPath,
			ContentType: "application/vnd.apache.parquet",
			Body:        table,
		})
	}
	return files, nil
}

// Load encodes everything first, then replaces each file through a temporary
// sibling and a rename, so readers never see a partial file.
func (w *Writer) Load(ctx context.Context, art domain.Artifacts) error {
	files, err := w.Files(art)
	if err != nil {
		return err
	}
	if err := Scaffold(w.base); err != nil {
		return err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(w.base, filepath.FromSlash(f.Path))
		if err := writeAtomic(path, f.Body); err != nil {
			return err
		}
		w.logger.Info("file written", "path", path, "bytes", len(f.Body))
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
