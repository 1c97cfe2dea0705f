package packer

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exptechtw/trempack/pkg/manifest"
	"github.com/exptechtw/trempack/pkg/pack"
	"github.com/exptechtw/trempack/pkg/prompt"
	"github.com/exptechtw/trempack/pkg/ui"
)

const fooInfo = `{"name":"foo","version":"1.0.0",` +
	`"description":{"zh_tw":"test"},"author":["a"],"dependencies":{}}`

func makeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

type recorder struct {
	summaries []ui.Summary
	added     []string
}

func (r *recorder) Summary(s ui.Summary) { r.summaries = append(r.summaries, s) }
func (r *recorder) Adding(p string)      { r.added = append(r.added, p) }

type fixture struct {
	src, out string
	asker    *prompt.Scripted
	rec      *recorder
}

func newFixture(t *testing.T, files map[string]string, answers ...string) *fixture {
	t.Helper()
	f := &fixture{
		src:   t.TempDir(),
		out:   t.TempDir(),
		asker: &prompt.Scripted{Answers: answers},
		rec:   &recorder{},
	}
	makeTree(t, f.src, files)
	return f
}

func (f *fixture) run() (Result, error) {
	return New(Options{
		Dir:      f.src,
		OutDir:   f.out,
		Asker:    f.asker,
		Reporter: f.rec,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).Run()
}

func (f *fixture) outputs(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(f.out, "*"))
	require.NoError(t, err)
	return matches
}

func listNames(t *testing.T, name string) []string {
	t.Helper()
	entries, err := pack.List(name)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Path)
	}
	sort.Strings(out)
	return out
}

func TestRunPacksAndExcludesGit(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json":       fooInfo,
		"main.js":         "console.log('hi')",
		".git/HEAD":       "ref",
		".git/refs/x":     "y",
		".git/objects/ab": "z",
	}, "y", "Y")

	res, err := f.run()
	require.NoError(t, err)
	assert.Equal(t, Done, res.State)
	assert.Equal(t, filepath.Join(f.out, "foo.trem"), res.Output)
	assert.Equal(t, 2, res.Files)
	assert.False(t, res.Signed)

	assert.Equal(t, []string{"info.json", "main.js"}, listNames(t, res.Output))
	assert.Len(t, f.asker.Questions, 2)
	assert.Contains(t, f.asker.Questions[1], "signature.json not found")

	require.Len(t, f.rec.summaries, 1)
	assert.Equal(t, ui.Summary{
		Name:         "foo",
		Version:      "1.0.0",
		Description:  "test",
		Authors:      []string{"a"},
		Dependencies: "{}",
	}, f.rec.summaries[0])
	sort.Strings(f.rec.added)
	assert.Equal(t, []string{"info.json", "main.js"}, f.rec.added)
}

func TestRunSignedSkipsSecondPrompt(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json":      fooInfo,
		"signature.json": `{"version":"1.0.0"}`,
		"index.js":       "x",
	}, "y")

	res, err := f.run()
	require.NoError(t, err)
	assert.True(t, res.Signed)
	assert.Len(t, f.asker.Questions, 1)
	assert.Equal(t,
		[]string{"index.js", "info.json", "signature.json"},
		listNames(t, res.Output),
	)
}

func TestRunSignatureMismatch(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json":      fooInfo,
		"signature.json": `{"version":"0.9.0"}`,
		"main.js":        "x",
	}, "y", "y")

	res, err := f.run()
	assert.Equal(t, Failed, res.State)
	assert.Equal(t, SignatureMismatch, KindOf(err))
	assert.Contains(t, err.Error(), "1.0.0")
	assert.Contains(t, err.Error(), "0.9.0")
	assert.Empty(t, f.asker.Questions)
	assert.Empty(t, f.rec.added)
	assert.Empty(t, f.outputs(t))
}

func TestRunCancelledAtFirstPrompt(t *testing.T) {
	for _, answer := range []string{"n", "", "yes", "N"} {
		f := newFixture(t, map[string]string{
			"info.json": fooInfo,
			"main.js":   "x",
		}, answer)

		res, err := f.run()
		assert.Equal(t, Cancelled, res.State, "answer %q", answer)
		assert.Equal(t, UserCancelled, KindOf(err))
		assert.ErrorIs(t, err, ErrCancelled)
		assert.Len(t, f.asker.Questions, 1)
		assert.Empty(t, f.outputs(t))
	}
}

func TestRunCancelledWithoutSignature(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json": fooInfo,
	}, "y", "n")

	res, err := f.run()
	assert.Equal(t, Cancelled, res.State)
	assert.Equal(t, UserCancelled, KindOf(err))
	assert.Empty(t, f.outputs(t))
}

func TestRunEOFCancels(t *testing.T) {
	f := newFixture(t, map[string]string{"info.json": fooInfo})
	res, err := f.run()
	assert.Equal(t, Cancelled, res.State)
	assert.Equal(t, UserCancelled, KindOf(err))
}

func TestRunManifestErrors(t *testing.T) {
	cases := []struct {
		info string
		kind Kind
	}{
		{"", ManifestMissing},
		{"{oops", ManifestMalformed},
		{`{"name":"foo"}`, ManifestInvalid},
	}
	for _, tc := range cases {
		files := map[string]string{"main.js": "x"}
		if tc.kind != ManifestMissing {
			files["info.json"] = tc.info
		}
		f := newFixture(t, files, "y", "y")

		res, err := f.run()
		assert.Equal(t, Failed, res.State)
		assert.Equal(t, tc.kind, KindOf(err), "info %q", tc.info)
		assert.Empty(t, f.asker.Questions)
	}
}

func TestRunLegacyLevel(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json": `{"name":"bar"}`,
		"a.js":      "a",
	}, "y", "y")

	res, err := New(Options{
		Dir:    f.src,
		OutDir: f.out,
		Level:  manifest.Legacy,
		Asker:  f.asker,
	}).Run()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.out, "bar.trem"), res.Output)
}

func TestRunOutputWriteFailure(t *testing.T) {
	f := newFixture(t, map[string]string{"info.json": fooInfo}, "y", "y")

	res, err := New(Options{
		Dir:    f.src,
		OutDir: filepath.Join(f.out, "does-not-exist"),
		Asker:  f.asker,
	}).Run()
	assert.Equal(t, Failed, res.State)
	assert.Equal(t, FileSystemError, KindOf(err))
}

func TestRunTwiceSameEntries(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json":    fooInfo,
		"lib/a.js":     "a",
		"lib/b/c.js":   "c",
		"assets/x.png": "\x89PNG",
	}, "y", "y", "y", "y")

	first, err := f.run()
	require.NoError(t, err)
	assert.Nil(t, first.Previous)
	firstNames := listNames(t, first.Output)
	firstBody, err := pack.ReadEntry(first.Output, "lib/b/c.js")
	require.NoError(t, err)

	second, err := f.run()
	require.NoError(t, err)
	assert.Equal(t, firstNames, listNames(t, second.Output))
	secondBody, err := pack.ReadEntry(second.Output, "lib/b/c.js")
	require.NoError(t, err)
	assert.Equal(t, firstBody, secondBody)
	require.NotNil(t, second.Previous)
	assert.True(t, second.Previous.Empty())
}

func TestRunReportsChangesSincePrevious(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json": fooInfo,
		"a.js":      "a",
		"b.js":      "b",
	}, "y", "y", "y", "y")

	_, err := f.run()
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(f.src, "b.js")))
	makeTree(t, f.src, map[string]string{
		"a.js": "a2",
		"c.js": "c",
	})

	res, err := f.run()
	require.NoError(t, err)
	require.NotNil(t, res.Previous)
	assert.Equal(t, []string{"c.js"}, res.Previous.Added)
	assert.Equal(t, []string{"a.js"}, res.Previous.Changed)
	assert.Equal(t, []string{"b.js"}, res.Previous.Removed)
}

func TestRunOverwritesUnreadablePrevious(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json": fooInfo,
		"a.js":      "a",
	}, "y", "y")
	stale := filepath.Join(f.out, "foo.trem")
	require.NoError(t, os.WriteFile(stale, []byte("not a zip"), 0644))

	res, err := f.run()
	require.NoError(t, err)
	assert.Nil(t, res.Previous)
	assert.Equal(t, []string{"a.js", "info.json"}, listNames(t, stale))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, FileSystemError, KindOf(errors.New("disk")))
	assert.Equal(t, ManifestMissing, KindOf(manifest.ErrMissing))
	assert.Equal(t, UserCancelled, KindOf(ErrCancelled))
	assert.Equal(t, SignatureMismatch, KindOf(&manifest.SignatureMismatchError{}))
	assert.Equal(t, "ManifestInvalid", ManifestInvalid.String())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "signature_checked", SignatureChecked.String())
	assert.True(t, Cancelled.Terminal())
	assert.False(t, Packed.Terminal())
	assert.Equal(t, "unknown", State(99).String())
}

func TestRunPacksBackslashNames(t *testing.T) {
	f := newFixture(t, map[string]string{
		"info.json": fooInfo,
		`a\b.js`:    "b",
	}, "y", "y")

	res, err := f.run()
	require.NoError(t, err)
	assert.Equal(t, Done, res.State)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, []string{`a\b.js`, "info.json"}, listNames(t, res.Output))
}

func TestRunRejectsTraversalBeforeWriting(t *testing.T) {
	files := map[string]string{
		"info.json":       fooInfo,
		"a.js":            "a",
		`lib\..\..\up.js`: "x",
	}

	f := newFixture(t, files, "y", "y")
	res, err := f.run()
	assert.Equal(t, Failed, res.State)
	assert.Equal(t, FileSystemError, KindOf(err))
	assert.Empty(t, res.Output)
	assert.Empty(t, f.outputs(t))

	f = newFixture(t, files, "y", "y")
	prev := filepath.Join(f.out, "foo.trem")
	require.NoError(t, os.WriteFile(prev, []byte("previous"), 0644))
	_, err = f.run()
	require.Error(t, err)
	body, err := os.ReadFile(prev)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(body))
	assert.Equal(t, []string{prev}, f.outputs(t))
}

func TestRunErrorLeavesNoArchive(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		kind  Kind
	}{
		{"missing manifest", map[string]string{"a.js": "a"}, ManifestMissing},
		{"signature mismatch", map[string]string{
			"info.json":      fooInfo,
			"signature.json": `{"version":"9.9.9"}`,
		}, SignatureMismatch},
		{"bad entry name", map[string]string{
			"info.json": fooInfo,
			`x\..\..\y`: "y",
		}, FileSystemError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.files, "y", "y")
			res, err := f.run()
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, Failed, res.State)
			assert.Empty(t, f.outputs(t))
		})
	}

	t.Run("write failure", func(t *testing.T) {
		f := newFixture(t, map[string]string{"info.json": fooInfo}, "y", "y")
		missing := filepath.Join(f.out, "does-not-exist")
		_, err := New(Options{
			Dir:    f.src,
			OutDir: missing,
			Asker:  f.asker,
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}).Run()
		require.Error(t, err)
		assert.Empty(t, f.outputs(t))
	})
}
