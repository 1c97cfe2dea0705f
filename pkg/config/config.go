package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/exptechtw/trempack/pkg/manifest"
	"github.com/exptechtw/trempack/pkg/paths"
)

type Config struct {
	Validation    string   `toml:"validation"`
	IncludeHidden bool     `toml:"include_hidden"`
	Exclude       []string `toml:"exclude"`
	ExcludeRegex  []string `toml:"exclude_regex"`
	OutDir        string   `toml:"out_dir"`
	AssumeYes     bool     `toml:"assume_yes"`
}

func Default() Config {
	return Config{Validation: manifest.Strict.String()}
}

// Load reads a TOML config. An empty path yields Default(); a named
// file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config not found: %s", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := manifest.ParseLevel(c.Validation); err != nil {
		return err
	}
	if _, err := compile(c.ExcludeRegex); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() manifest.Level {
	l, _ := manifest.ParseLevel(c.Validation)
	return l
}

// Rules layers the config on top of the built-in exclusion rules.
func (c Config) Rules() (paths.Rules, error) {
	r := paths.DefaultRules()
	if c.IncludeHidden {
		r.SkipHidden = false
	}
	extra, err := compile(c.ExcludeRegex)
	if err != nil {
		return paths.Rules{}, err
	}
	r.Patterns = append(r.Patterns, extra...)
	r.Globs = append(r.Globs, c.Exclude...)
	return r, nil
}

func compile(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, fmt.Errorf("exclude_regex %q: %w", e, err)
		}
		out = append(out, re)
	}
	return out, nil
}
