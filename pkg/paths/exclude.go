package paths

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const ArchiveExt = ".trem"

type Rules struct {
	Literals     []string
	Patterns     []*regexp.Regexp
	Globs        []string
	SkipHidden   bool
	SkipPrefixes []string
	SkipSuffixes []string
}

var denyLiterals = []string{
	"LICENSE",
	"README.md",
	"package-lock.json",
	"package.json",
	".git",
	".gitignore",
	".DS_Store",
	".vscode",
	"node_modules/.bin",
	"node_modules/.package-lock.json",
	"node_modules/acorn",
	"node_modules/acorn-jsx",
	"node_modules/adm-zip",
	"node_modules/ajv",
	"node_modules/ansi-styles",
	"node_modules/argparse",
	"node_modules/balanced-match",
	"node_modules/brace-expansion",
	"node_modules/callsites",
	"node_modules/chalk",
	"node_modules/color-convert",
	"node_modules/color-name",
	"node_modules/concat-map",
	"node_modules/cross-spawn",
	"node_modules/debug",
	"node_modules/deep-is",
	"node_modules/escape-string-regexp",
	"node_modules/espree",
	"node_modules/esquery",
	"node_modules/esrecurse",
	"node_modules/estraverse",
	"node_modules/esutils",
	"node_modules/fast-deep-equal",
	"node_modules/fast-json-stable-stringify",
	"node_modules/fast-levenshtein",
	"node_modules/file-entry-cache",
	"node_modules/find-up",
	"node_modules/flat-cache",
	"node_modules/flatted",
	"node_modules/glob-parent",
	"node_modules/globals",
	"node_modules/has-flag",
	"node_modules/ignore",
	"node_modules/import-fresh",
	"node_modules/imurmurhash",
	"node_modules/is-extglob",
	"node_modules/is-glob",
	"node_modules/isexe",
	"node_modules/js-yaml",
	"node_modules/json-buffer",
	"node_modules/json-schema-traverse",
	"node_modules/json-stable-stringify-without-jsonify",
	"node_modules/keyv",
	"node_modules/levn",
	"node_modules/locate-path",
	"node_modules/lodash.merge",
	"node_modules/minimatch",
	"node_modules/ms",
	"node_modules/natural-compare",
	"node_modules/optionator",
	"node_modules/p-limit",
	"node_modules/p-locate",
	"node_modules/parent-module",
	"node_modules/path-exists",
	"node_modules/path-key",
	"node_modules/prelude-ls",
	"node_modules/punycode",
	"node_modules/resolve-from",
	"node_modules/shebang-command",
	"node_modules/shebang-regex",
	"node_modules/strip-json-comments",
	"node_modules/supports-color",
	"node_modules/type-check",
	"node_modules/uri-js",
	"node_modules/which",
	"node_modules/word-wrap",
	"node_modules/yocto-queue",
}

var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\.git(/|$)`),
	regexp.MustCompile(`^\.vscode(/|$)`),
	regexp.MustCompile(`(^|/)\.?eslintrc(\.[A-Za-z]+)?$`),
	regexp.MustCompile(`(^|/)eslint\.config\.[cm]?[jt]s$`),
	regexp.MustCompile(
		`^node_modules/(@eslint|@eslint-community|@typescript-eslint|eslint[^/]*)(/|$)`,
	),
}

// DefaultRules returns a fresh copy of the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		Literals:     append([]string(nil), denyLiterals...),
		Patterns:     append([]*regexp.Regexp(nil), denyPatterns...),
		SkipHidden:   true,
		SkipPrefixes: []string{"__MACOSX"},
		SkipSuffixes: []string{ArchiveExt},
	}
}

type Matcher struct {
	literals map[string]struct{}
	patterns []*regexp.Regexp
	globs    []glob
	hidden   bool
	prefixes []string
	suffixes []string
}

func NewMatcher(r Rules) *Matcher {
	lit := make(map[string]struct{}, len(r.Literals))
	for _, l := range r.Literals {
		lit[CleanRelPath(l)] = struct{}{}
	}
	globs := make([]glob, 0, len(r.Globs))
	for _, g := range r.Globs {
		globs = append(globs, compileGlob(g))
	}
	return &Matcher{
		literals: lit,
		patterns: append([]*regexp.Regexp(nil), r.Patterns...),
		globs:    globs,
		hidden:   r.SkipHidden,
		prefixes: append([]string(nil), r.SkipPrefixes...),
		suffixes: append([]string(nil), r.SkipSuffixes...),
	}
}

// Excluded reports whether relPath (slash separated, relative to the
// packaging root) must be left out of the archive.
func (m *Matcher) Excluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	base := path.Base(relPath)

	if m.hidden && strings.HasPrefix(base, ".") {
		return true
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(base, p) {
			return true
		}
	}
	for _, s := range m.suffixes {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	if _, ok := m.literals[relPath]; ok {
		return true
	}
	for _, re := range m.patterns {
		if re.MatchString(relPath) {
			return true
		}
	}
	for _, g := range m.globs {
		if g.match(relPath) {
			return true
		}
	}
	return false
}

// glob is a user exclusion pattern. A pattern without a slash is tried
// against every path segment; one "**" spans any number of directories.
type glob struct {
	pattern string
	segment bool

	double bool
	prefix string
	suffix string
}

func compileGlob(pattern string) glob {
	pattern = strings.TrimSuffix(pattern, "/")
	g := glob{
		pattern: pattern,
		segment: !strings.Contains(pattern, "/"),
	}
	before, after, found := strings.Cut(pattern, "**")
	if found && !strings.Contains(after, "**") {
		g.double = true
		g.prefix = strings.TrimSuffix(before, "/")
		g.suffix = strings.TrimPrefix(after, "/")
	}
	return g
}

func (g glob) match(relPath string) bool {
	if g.segment {
		for _, part := range strings.Split(relPath, "/") {
			if ok, _ := path.Match(g.pattern, part); ok {
				return true
			}
		}
	}
	if g.double {
		return g.matchDouble(relPath)
	}
	if g.segment {
		return false
	}
	ok, _ := path.Match(g.pattern, relPath)
	return ok
}

func (g glob) matchDouble(relPath string) bool {
	rest := relPath
	if g.prefix != "" {
		if relPath == g.prefix {
			return g.suffix == ""
		}
		var ok bool
		if rest, ok = strings.CutPrefix(relPath, g.prefix+"/"); !ok {
			return false
		}
	}
	if g.suffix == "" {
		return true
	}
	for {
		if ok, _ := path.Match(g.suffix, rest); ok {
			return true
		}
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return false
		}
		rest = rest[i+1:]
	}
}
