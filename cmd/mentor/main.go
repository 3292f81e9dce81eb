package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// errIssuesFound signals that analysis completed but found issues at or
// above the --fail-on severity.
var errIssuesFound = errors.New("issues found")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process status: 1 when issues were
// found, 2 for anything that stopped the run.
func exitCode(err error) int {
	if errors.Is(err, errIssuesFound) {
		return 1
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	return 2
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "mentor",
		Usage:    "Review source code for syntax, logic, and quality issues",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `mentor parses source files, builds scopes and control-flow graphs, and
reports syntax errors, likely bugs, and maintainability problems with
line and column positions.

Supports: Python, JavaScript, TypeScript, Go`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"MENTOR_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			level := slog.LevelInfo
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			c.App.Metadata["logger"] = slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
			return nil
		},
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			analyzeCmd(),
			languagesCmd(),
			configCmd(),
			watchCmd(),
			mcpCmd(),
			cacheCmd(),
		},
	}
}

// logger returns the logger installed by the app's Before hook.
func logger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata["logger"].(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func printf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, format, args...)
}
