package paths

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

func ValidateRelPath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("path contains null byte")
	}
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return fmt.Errorf("absolute path not allowed: %s", p)
	}
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == "." {
		return fmt.Errorf("path resolves to current directory")
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf(
			"path escapes base directory: %s", p,
		)
	}
	return nil
}

// ValidateFileName accepts a single path component that can be
// written into the working directory as-is.
func ValidateFileName(name string) error {
	if err := ValidateRelPath(name); err != nil {
		return err
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("path separator in %q", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("reserved name %q", name)
	}
	return nil
}

// ValidateEntryName is the rule every archive entry name must pass,
// both when it is added and when an archive is read back. Backslash is
// an ordinary file name character on unix, but a ".." segment on
// either side of one is still refused.
func ValidateEntryName(name string) error {
	if err := ValidateRelPath(name); err != nil {
		return err
	}
	if strings.HasPrefix(name, `\`) {
		return fmt.Errorf("absolute path not allowed: %s", name)
	}
	segments := strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, seg := range segments {
		if seg == ".." {
			return fmt.Errorf("path traversal in entry: %s", name)
		}
	}
	return nil
}

func CleanRelPath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	p = strings.TrimPrefix(p, "./")
	return p
}
