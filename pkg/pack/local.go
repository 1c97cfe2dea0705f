package pack

import (
	"fmt"
	"io/fs"
	"path"
)

type Filter interface {
	Excluded(relPath string) bool
}

// Walk adds every regular file under fsys that survives the filter to
// a new Archive. Excluded directories are not descended into. onAdd,
// when set, is called with each path as it is added.
func Walk(
	fsys fs.FS,
	filter Filter,
	onAdd func(relPath string),
) (*Archive, error) {
	a := NewArchive()
	if err := walkDir(fsys, ".", filter, a, onAdd); err != nil {
		return nil, err
	}
	return a, nil
}

func walkDir(
	fsys fs.FS,
	dir string,
	filter Filter,
	a *Archive,
	onAdd func(string),
) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, d := range entries {
		rel := path.Join(dir, d.Name())
		if filter != nil && filter.Excluded(rel) {
			continue
		}

		// fs.Stat follows symlinks, so a link is packed as
		// whatever it points at.
		info, err := fs.Stat(fsys, rel)
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}

		switch {
		case info.IsDir():
			if err := walkDir(fsys, rel, filter, a, onAdd); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			data, err := fs.ReadFile(fsys, rel)
			if err != nil {
				return fmt.Errorf("read %s: %w", rel, err)
			}
			if err := a.Add(rel, data); err != nil {
				return err
			}
			if onAdd != nil {
				onAdd(rel)
			}
		}
	}
	return nil
}
