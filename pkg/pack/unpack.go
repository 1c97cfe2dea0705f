package pack

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/exptechtw/trempack/pkg/paths"
)

// List reads back the entry table of an archive written by WriteFile.
func List(name string) ([]ListEntry, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer zr.Close()

	out := make([]ListEntry, 0, len(zr.File))
	for _, f := range zr.File {
		if err := paths.ValidateEntryName(f.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		out = append(out, ListEntry{
			Path: f.Name,
			Size: int64(f.UncompressedSize64),
		})
	}
	return out, nil
}

// ReadEntry returns the content of a single archive entry.
func ReadEntry(name, entry string) ([]byte, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer zr.Close()

	f, err := zr.Open(entry)
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", entry, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", entry, err)
	}
	return data, nil
}
