package packer

import (
	"errors"
	"fmt"

	"github.com/exptechtw/trempack/pkg/manifest"
)

type Kind int

const (
	KindNone Kind = iota
	ManifestMissing
	ManifestMalformed
	ManifestInvalid
	SignatureMalformed
	SignatureMismatch
	FileSystemError
	UserCancelled
	ConfigError
)

var kindNames = map[Kind]string{
	KindNone:           "none",
	ManifestMissing:    "ManifestMissing",
	ManifestMalformed:  "ManifestMalformed",
	ManifestInvalid:    "ManifestInvalid",
	SignatureMalformed: "SignatureMalformed",
	SignatureMismatch:  "SignatureMismatch",
	FileSystemError:    "FileSystemError",
	UserCancelled:      "UserCancelled",
	ConfigError:        "ConfigError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var ErrCancelled = errors.New("cancelled by user")

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies err. Errors not produced by Run map to
// FileSystemError, since everything else Run does is file I/O.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	var inv *manifest.InvalidError
	var mm *manifest.SignatureMismatchError
	switch {
	case errors.Is(err, ErrCancelled):
		return UserCancelled
	case errors.Is(err, manifest.ErrMissing):
		return ManifestMissing
	case errors.Is(err, manifest.ErrMalformed):
		return ManifestMalformed
	case errors.As(err, &inv):
		return ManifestInvalid
	case errors.Is(err, manifest.ErrSignatureMalformed):
		return SignatureMalformed
	case errors.As(err, &mm):
		return SignatureMismatch
	}
	return FileSystemError
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Err: err}
}
