package pack

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/exptechtw/trempack/pkg/paths"
)

// Digests maps entry path to sha256 of its content.
type Digests map[string]string

type DiffResult struct {
	Added   []string
	Changed []string
	Removed []string
}

func (d DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

func (a *Archive) Digests() Digests {
	out := make(Digests, len(a.entries))
	for _, e := range a.entries {
		sum := sha256.Sum256(e.Data)
		out[e.Path] = hex.EncodeToString(sum[:])
	}
	return out
}

// ReadDigests hashes every file entry of an existing archive.
func ReadDigests(name string) (Digests, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer zr.Close()

	out := make(Digests, len(zr.File))
	buf := make([]byte, 1<<20)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := paths.ValidateEntryName(f.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		sum, err := hashZipFile(f, buf)
		if err != nil {
			return nil, err
		}
		out[f.Name] = sum
	}
	return out, nil
}

func hashZipFile(f *zip.File, buf []byte) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, rc, buf); err != nil {
		return "", fmt.Errorf("read entry %s: %w", f.Name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func ComputeDiff(current, previous Digests) DiffResult {
	var result DiffResult

	for path, sum := range current {
		prev, exists := previous[path]
		switch {
		case !exists:
			result.Added = append(result.Added, path)
		case prev != sum:
			result.Changed = append(result.Changed, path)
		}
	}
	for path := range previous {
		if _, exists := current[path]; !exists {
			result.Removed = append(result.Removed, path)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Changed)
	sort.Strings(result.Removed)
	return result
}
