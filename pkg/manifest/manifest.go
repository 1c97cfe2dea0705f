package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/exptechtw/trempack/pkg/paths"
)

const (
	FileName          = "info.json"
	SignatureFileName = "signature.json"
)

type Level int

const (
	Strict Level = iota
	Legacy
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "legacy", "lax":
		return Legacy, nil
	}
	return Strict, fmt.Errorf("unknown validation level %q", s)
}

func (l Level) String() string {
	if l == Legacy {
		return "legacy"
	}
	return "strict"
}

var requiredFields = []string{
	"name", "version", "description", "author", "dependencies",
}

// Manifest keeps the decoded info.json object exactly as read.
type Manifest struct {
	raw map[string]any
}

func (m *Manifest) Raw() map[string]any { return m.raw }

func (m *Manifest) Name() string    { return stringField(m.raw, "name") }
func (m *Manifest) Version() string { return stringField(m.raw, "version") }

func (m *Manifest) Description() string {
	d, _ := m.raw["description"].(map[string]any)
	return stringField(d, "zh_tw")
}

func (m *Manifest) Authors() []string {
	list, _ := m.raw["author"].([]any)
	out := make([]string, 0, len(list))
	for _, a := range list {
		if s, ok := a.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (m *Manifest) Dependencies() map[string]any {
	deps, _ := m.raw["dependencies"].(map[string]any)
	return deps
}

// DependenciesJSON renders the dependency mapping indented, keys sorted.
func (m *Manifest) DependenciesJSON() string {
	deps := m.Dependencies()
	if deps == nil {
		deps = map[string]any{}
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(deps); err != nil {
		return "{}"
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *Manifest) ArchiveName() string {
	return m.Name() + paths.ArchiveExt
}

func Load(dir string, level Level) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	return Parse(data, level)
}

func Parse(data []byte, level Level) (*Manifest, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := Validate(raw, level); err != nil {
		return nil, err
	}
	return &Manifest{raw: raw}, nil
}

func Validate(raw map[string]any, level Level) error {
	if level == Legacy {
		return validateName(raw)
	}

	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			return invalid(f, "is required")
		}
	}
	if err := validateName(raw); err != nil {
		return err
	}
	if _, ok := raw["version"].(string); !ok {
		return invalid("version", "must be a string")
	}

	desc, ok := raw["description"].(map[string]any)
	if !ok {
		return invalid("description", "must be an object")
	}
	if _, ok := desc["zh_tw"]; !ok {
		return invalid("description.zh_tw", "is required")
	}
	if _, ok := desc["zh_tw"].(string); !ok {
		return invalid("description.zh_tw", "must be a string")
	}

	authors, ok := raw["author"].([]any)
	if !ok {
		return invalid("author", "must be an array")
	}
	for i, a := range authors {
		if _, ok := a.(string); !ok {
			return invalid(
				fmt.Sprintf("author[%d]", i), "must be a string",
			)
		}
	}

	if _, ok := raw["dependencies"].(map[string]any); !ok {
		return invalid("dependencies", "must be an object")
	}
	return nil
}

func validateName(raw map[string]any) error {
	v, ok := raw["name"]
	if !ok {
		return invalid("name", "is required")
	}
	name, ok := v.(string)
	if !ok {
		return invalid("name", "must be a string")
	}
	if name == "" {
		return invalid("name", "must not be empty")
	}
	if err := paths.ValidateFileName(name + paths.ArchiveExt); err != nil {
		return invalid("name", "is not a usable file name")
	}
	return nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is not an object")
	}
	return obj, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func (m *Manifest) SortedDependencyNames() []string {
	deps := m.Dependencies()
	names := make([]string, 0, len(deps))
	for k := range deps {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
