package packer

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/exptechtw/trempack/pkg/manifest"
	"github.com/exptechtw/trempack/pkg/pack"
	"github.com/exptechtw/trempack/pkg/paths"
	"github.com/exptechtw/trempack/pkg/prompt"
	"github.com/exptechtw/trempack/pkg/ui"
)

const Version = "1.0.0"

func VersionTag() string {
	return "trempack v" + Version
}

const (
	confirmInfoQuestion = "Confirm plugin information?"
	noSignatureQuestion = manifest.SignatureFileName +
		" not found. Continue without it?"
)

type Reporter interface {
	Summary(ui.Summary)
	Adding(relPath string)
}

type Options struct {
	Dir      string
	OutDir   string
	Level    manifest.Level
	Filter   pack.Filter
	Asker    prompt.Asker
	Reporter Reporter
	Logger   *slog.Logger
}

type Result struct {
	State    State
	Manifest *manifest.Manifest
	Signed   bool
	Output   string
	Files    int
	Previous *pack.DiffResult
}

type Packer struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) *Packer {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if opts.Filter == nil {
		opts.Filter = paths.NewMatcher(paths.DefaultRules())
	}
	if opts.Asker == nil {
		opts.Asker = prompt.AlwaysYes{}
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Packer{opts: opts, log: log}
}

// Run drives one packaging attempt to a terminal state. A cancelled run
// returns an *Error of kind UserCancelled alongside State Cancelled.
func (p *Packer) Run() (Result, error) {
	res := Result{State: Start}

	m, err := manifest.Load(p.opts.Dir, p.opts.Level)
	if err != nil {
		return p.fail(res, err)
	}
	res.Manifest = m
	p.advance(&res, ManifestLoaded,
		"name", m.Name(),
		"version", m.Version(),
		"level", p.opts.Level.String(),
		"dependencies", m.SortedDependencyNames(),
	)

	signed, err := manifest.CheckSignature(p.opts.Dir, m)
	if err != nil {
		return p.fail(res, err)
	}
	res.Signed = signed
	p.advance(&res, SignatureChecked, "signed", signed)

	p.opts.Reporter.Summary(ui.Summary{
		Name:         m.Name(),
		Version:      m.Version(),
		Description:  m.Description(),
		Authors:      m.Authors(),
		Dependencies: m.DependenciesJSON(),
	})
	if ok, err := prompt.Confirm(p.opts.Asker, confirmInfoQuestion); err != nil {
		return p.fail(res, err)
	} else if !ok {
		return p.cancel(res)
	}
	if !signed {
		ok, err := prompt.Confirm(p.opts.Asker, noSignatureQuestion)
		if err != nil {
			return p.fail(res, err)
		}
		if !ok {
			return p.cancel(res)
		}
	}
	p.advance(&res, Confirmed)

	archive, err := pack.Walk(
		os.DirFS(p.opts.Dir), p.opts.Filter, p.opts.Reporter.Adding,
	)
	if err != nil {
		return p.fail(res, err)
	}
	out := filepath.Join(p.opts.OutDir, m.ArchiveName())
	res.Previous = p.comparePrevious(out, archive)
	if err := archive.WriteFile(out); err != nil {
		return p.fail(res, err)
	}
	res.Output = out
	res.Files = archive.Len()
	p.advance(&res, Packed,
		"output", out,
		"entries", res.Files,
		"bytes", archive.Size(),
	)
	p.advance(&res, Done)
	return res, nil
}

// comparePrevious diffs against an archive about to be replaced. An
// unreadable previous file is simply overwritten.
func (p *Packer) comparePrevious(
	out string, archive *pack.Archive,
) *pack.DiffResult {
	if _, err := os.Stat(out); err != nil {
		return nil
	}
	prev, err := pack.ReadDigests(out)
	if err != nil {
		p.log.Warn("previous archive unreadable",
			"path", out, "error", err)
		return nil
	}
	diff := pack.ComputeDiff(archive.Digests(), prev)
	return &diff
}

func (p *Packer) advance(res *Result, s State, attrs ...any) {
	p.log.Debug("state",
		append([]any{"from", res.State, "to", s}, attrs...)...)
	res.State = s
}

func (p *Packer) fail(res Result, err error) (Result, error) {
	p.log.Debug("state",
		"from", res.State, "to", Failed, "error", err)
	res.State = Failed
	return res, wrap(err)
}

func (p *Packer) cancel(res Result) (Result, error) {
	p.log.Debug("state", "from", res.State, "to", Cancelled)
	res.State = Cancelled
	return res, &Error{Kind: UserCancelled, Err: ErrCancelled}
}

type nopReporter struct{}

func (nopReporter) Summary(ui.Summary) {}
func (nopReporter) Adding(string)      {}
