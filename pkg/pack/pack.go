package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/exptechtw/trempack/pkg/paths"
)

// Archive accumulates entries in memory; nothing touches disk until
// WriteFile.
type Archive struct {
	entries []Entry
	size    int64
}

func NewArchive() *Archive {
	return &Archive{}
}

func (a *Archive) Add(relPath string, data []byte) error {
	if err := paths.ValidateEntryName(relPath); err != nil {
		return fmt.Errorf("invalid path %s: %w", relPath, err)
	}
	a.entries = append(a.entries, Entry{
		Path: relPath,
		Data: data,
	})
	a.size += int64(len(data))
	return nil
}

func (a *Archive) Entries() []Entry {
	return a.entries
}

func (a *Archive) Len() int {
	return len(a.entries)
}

func (a *Archive) Size() int64 {
	return a.size
}

func (a *Archive) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, e := range a.entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:   e.Path,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("write header %s: %w", e.Path, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return fmt.Errorf("write body %s: %w", e.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	return nil
}

// WriteFile serializes the archive to name, replacing any existing
// file. The previous file survives if writing fails.
func (a *Archive) WriteFile(name string) error {
	tmp, err := os.CreateTemp(
		filepath.Dir(name), ".trempack-*.tmp",
	)
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	writeErr := a.WriteZip(tmp)
	closeErr := tmp.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", tmpName, closeErr)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, name); err != nil {
		return fmt.Errorf("rename to %s: %w", name, err)
	}
	return nil
}
