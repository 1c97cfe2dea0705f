package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Summary struct {
	Name         string
	Version      string
	Description  string
	Authors      []string
	Dependencies string
}

type Result struct {
	Output        string
	Name          string
	Version       string
	Files         int
	PackerVersion string

	// Replaced is set when an older archive was overwritten.
	Replaced bool
	Added    int
	Changed  int
	Removed  int
}

// Printer renders status lines. Each stream gets its own renderer so
// color is only emitted when that stream is a terminal.
type Printer struct {
	out io.Writer
	err io.Writer

	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	muted lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
}

func New(out, errOut io.Writer) *Printer {
	ro := lipgloss.NewRenderer(out)
	re := lipgloss.NewRenderer(errOut)
	return &Printer{
		out:   out,
		err:   errOut,
		title: ro.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label: ro.NewStyle().Foreground(lipgloss.Color("14")),
		value: ro.NewStyle(),
		muted: ro.NewStyle().Foreground(lipgloss.Color("8")),
		ok:    ro.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		warn:  ro.NewStyle().Foreground(lipgloss.Color("11")),
		fail:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

func (p *Printer) Summary(s Summary) {
	var b strings.Builder
	b.WriteString(p.title.Render("Plugin information") + "\n")
	p.field(&b, "Name", s.Name)
	p.field(&b, "Version", s.Version)
	p.field(&b, "Description", s.Description)
	p.field(&b, "Author", strings.Join(s.Authors, ", "))
	p.field(&b, "Dependencies", s.Dependencies)
	fmt.Fprint(p.out, b.String())
}

func (p *Printer) field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s %s\n",
		p.label.Render(label+":"), p.value.Render(value))
}

func (p *Printer) Adding(relPath string) {
	fmt.Fprintf(p.out, "%s %s\n", p.muted.Render("adding:"), relPath)
}

func (p *Printer) Notice(msg string) {
	fmt.Fprintln(p.out, p.warn.Render(msg))
}

func (p *Printer) Success(r Result) {
	fmt.Fprintf(p.out, "%s %s (%d files)\n",
		p.ok.Render("Successfully created"), r.Output, r.Files)
	fmt.Fprintf(p.out, "  %s %s v%s\n",
		p.label.Render("Plugin:"), r.Name, r.Version)
	if r.Replaced {
		fmt.Fprintf(p.out, "  %s +%d ~%d -%d since previous archive\n",
			p.label.Render("Changes:"), r.Added, r.Changed, r.Removed)
	}
	fmt.Fprintf(p.out, "  %s %s\n",
		p.label.Render("Packer:"), r.PackerVersion)
}

func (p *Printer) Error(err error) {
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	fmt.Fprintf(p.err, "%s %s\n", p.fail.Render("error:"), msg)
}
