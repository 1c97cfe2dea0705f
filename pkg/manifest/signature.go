package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type Signature struct {
	raw map[string]any
}

func (s *Signature) Version() string { return stringField(s.raw, "version") }

// LoadSignature returns (nil, nil) when signature.json does not exist.
func LoadSignature(dir string) (*Signature, error) {
	data, err := os.ReadFile(filepath.Join(dir, SignatureFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SignatureFileName, err)
	}
	raw, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureMalformed, err)
	}
	return &Signature{raw: raw}, nil
}

// CheckSignature reports whether signature.json exists, and fails when
// its version drifted from the manifest's.
func CheckSignature(dir string, m *Manifest) (bool, error) {
	sig, err := LoadSignature(dir)
	if err != nil {
		return false, err
	}
	if sig == nil {
		return false, nil
	}
	if sig.Version() != m.Version() {
		return true, &SignatureMismatchError{
			ManifestVersion:  m.Version(),
			SignatureVersion: sig.Version(),
		}
	}
	return true, nil
}
