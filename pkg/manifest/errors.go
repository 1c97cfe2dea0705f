package manifest

import (
	"errors"
	"fmt"
)

var (
	ErrMissing   = errors.New("info.json not found")
	ErrMalformed = errors.New("info.json is not valid JSON")

	ErrSignatureMalformed = errors.New("signature.json is not valid JSON")
)

type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf(
		"invalid info.json: field %q %s", e.Field, e.Reason,
	)
}

func invalid(field, reason string) error {
	return &InvalidError{Field: field, Reason: reason}
}

type SignatureMismatchError struct {
	ManifestVersion  string
	SignatureVersion string
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf(
		"signature version %q does not match info.json version %q",
		e.SignatureVersion, e.ManifestVersion,
	)
}
