package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/exptechtw/trempack/pkg/config"
	"github.com/exptechtw/trempack/pkg/manifest"
	"github.com/exptechtw/trempack/pkg/packer"
	"github.com/exptechtw/trempack/pkg/paths"
	"github.com/exptechtw/trempack/pkg/prompt"
	"github.com/exptechtw/trempack/pkg/ui"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(
	args []string,
	stdin io.Reader,
	stdout, stderr io.Writer,
) int {
	printer := ui.New(stdout, stderr)
	app := &cli.App{
		Name:            "trempack",
		Usage:           "package a TREM plugin directory into a .trem archive",
		ArgsUsage:       "[dir]",
		Version:         packer.Version,
		HideHelpCommand: true,
		Reader:          stdin,
		Writer:          stdout,
		ErrWriter:       stderr,
		Before: func(c *cli.Context) error {
			configureLogging(stderr, c.Bool("verbose"))
			return nil
		},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return &packer.Error{
				Kind: packer.ConfigError,
				Err:  fmt.Errorf("usage: %w", err),
			}
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{"TREMPACK_CONFIG"},
				Usage:   "TOML config file",
			},
			&cli.BoolFlag{
				Name:  "legacy",
				Usage: "only require the name field in info.json",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "answer yes to every confirmation",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "extra exclude pattern (repeatable)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "directory to write the archive to (default: working directory)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "verbose output",
			},
		},
		Action: func(c *cli.Context) error {
			return packAction(c, stdin, stdout, printer)
		},
	}

	err := app.Run(args)
	switch packer.KindOf(err) {
	case packer.KindNone:
		return 0
	case packer.UserCancelled:
		printer.Notice("Packaging cancelled.")
		return 0
	default:
		printer.Error(err)
		return 1
	}
}

func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		}),
	))
}

func packAction(
	c *cli.Context,
	stdin io.Reader,
	stdout io.Writer,
	printer *ui.Printer,
) error {
	if c.NArg() > 1 {
		return &packer.Error{
			Kind: packer.ConfigError,
			Err:  fmt.Errorf("usage: trempack [dir]"),
		}
	}
	dir := c.Args().First()
	if dir == "" {
		dir = "."
	}

	opts, err := buildOptions(c)
	if err != nil {
		return &packer.Error{Kind: packer.ConfigError, Err: err}
	}
	opts.Dir = dir
	opts.Reporter = printer
	opts.Logger = slog.Default()

	if opts.Asker == nil {
		console := prompt.NewConsole(stdin, stdout)
		defer console.Close()
		opts.Asker = console
	}

	res, err := packer.New(opts).Run()
	if err != nil {
		return err
	}
	summary := ui.Result{
		Output:        res.Output,
		Name:          res.Manifest.Name(),
		Version:       res.Manifest.Version(),
		Files:         res.Files,
		PackerVersion: packer.VersionTag(),
	}
	if d := res.Previous; d != nil {
		summary.Replaced = true
		summary.Added = len(d.Added)
		summary.Changed = len(d.Changed)
		summary.Removed = len(d.Removed)
	}
	printer.Success(summary)
	return nil
}

// buildOptions merges the config file with flags; flags win.
func buildOptions(c *cli.Context) (packer.Options, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return packer.Options{}, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return packer.Options{}, err
	}
	rules.Globs = append(rules.Globs, c.StringSlice("exclude")...)

	level := cfg.Level()
	if c.Bool("legacy") {
		level = manifest.Legacy
	}
	outDir := cfg.OutDir
	if c.IsSet("out") {
		outDir = c.String("out")
	}

	opts := packer.Options{
		OutDir: outDir,
		Level:  level,
		Filter: paths.NewMatcher(rules),
	}
	if cfg.AssumeYes || c.Bool("yes") {
		opts.Asker = prompt.AlwaysYes{}
	}
	slog.Debug("options",
		"config", c.String("config"),
		"level", level.String(),
		"out", outDir,
		"globs", len(rules.Globs),
	)
	return opts, nil
}
