package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/output"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/progress"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/report"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/scanner"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/service/analysis"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/config"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Report syntax, logical, and quality issues",
		ArgsUsage: "[path|glob...]",
		Description: `Analyzes files, directories, or glob patterns such as "src/**/*.py".
Directories honor the exclude settings and .gitignore.

With --lang, a single file or standard input ("-" or no argument) is
analyzed as that language regardless of its extension.

Examples:
  mentor analyze                       # Current directory
  mentor analyze src/ --fail-on warning
  mentor analyze --lang python < script.py
  mentor analyze --format html -o report.html .`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Analyze one file or stdin as this language: " + strings.Join(lang.Names(), ", "),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: " + output.FormatNames() + " (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:  "timeout",
				Usage: "Per-file analysis time budget, e.g. 5s (0 for none)",
			},
			&cli.UintFlag{
				Name:  "cyclomatic",
				Usage: "Cyclomatic complexity limit per function",
			},
			&cli.UintFlag{
				Name:  "cognitive",
				Usage: "Cognitive complexity limit per function",
			},
			&cli.IntFlag{
				Name:  "min-ident",
				Usage: "Shortest allowed identifier name",
			},
			&cli.IntFlag{
				Name:  "min-duplicate",
				Usage: "Shortest statement run reported as duplicate code",
			},
			&cli.StringFlag{
				Name:  "fail-on",
				Usage: "Exit with status 1 when an issue is at least this severe: error, warning, info, none (default from config)",
			},
		},
		Action: runAnalyzeCmd,
	}
}

// applyAnalyzeFlags copies the command-line overrides onto cfg.
func applyAnalyzeFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("timeout") {
		cfg.Analysis.Timeout = c.String("timeout")
	}
	if c.IsSet("cyclomatic") {
		cfg.Thresholds.MaxCyclomatic = uint32(c.Uint("cyclomatic"))
	}
	if c.IsSet("cognitive") {
		cfg.Thresholds.MaxCognitive = uint32(c.Uint("cognitive"))
	}
	if c.IsSet("min-ident") {
		cfg.Thresholds.MinIdentifierLength = c.Int("min-ident")
	}
	if c.IsSet("min-duplicate") {
		cfg.Thresholds.MinDuplicateStatements = c.Int("min-duplicate")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("fail-on") {
		cfg.Output.FailOn = c.String("fail-on")
	}
	return cfg.Validate()
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applyAnalyzeFlags(c, cfg); err != nil {
		return err
	}
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rep *report.Report
	if c.IsSet("lang") {
		rep, err = analyzeAs(ctx, c, svc, c.String("lang"))
	} else {
		rep, err = analyzePaths(ctx, c, svc, getPaths(c))
	}
	if err != nil {
		return err
	}
	if rep == nil {
		return nil
	}

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"),
		output.WithWriter(c.App.Writer), output.WithColor(cfg.Output.Color && !color.NoColor))
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.NewIssueReport(rep)); err != nil {
		return err
	}
	if formatter.ToFile() {
		color.New(color.FgGreen).Fprintf(c.App.ErrWriter, "Report written to %s\n", c.String("output"))
	}

	if cfg.Output.FailOn == "none" {
		return nil
	}
	level, err := models.ParseSeverity(cfg.Output.FailOn)
	if err != nil {
		return err
	}
	if rep.Fails(level) {
		return fmt.Errorf("%w at or above %s severity", errIssuesFound, level)
	}
	return nil
}

// analyzePaths expands paths and analyzes every supported file. It returns
// a nil report when no source files were found.
func analyzePaths(ctx context.Context, c *cli.Context, svc *analysis.Service, paths []string) (*report.Report, error) {
	scan := scanner.NewScanner(svc.Config())
	spinner := progress.ForTerminal("Scanning...", -1)
	files, err := scan.Expand(paths)
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	if len(files) == 0 {
		spinner.FinishSkipped("no source files")
		color.New(color.FgYellow).Fprintln(c.App.ErrWriter, "No source files found")
		return nil, nil
	}
	spinner.FinishSuccess()
	for name, group := range scan.GroupByLanguage(files) {
		logger(c).Debug("files to analyze", "language", name, "count", len(group))
	}

	tracker := progress.ForTerminal("Analyzing...", len(files))
	start := time.Now()
	rep, err := svc.AnalyzeFiles(ctx, files, analysis.FilesOptions{
		Paths:      paths,
		OnProgress: tracker.OnFile,
	})
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()
	logger(c).Debug("analysis complete", "files", len(files), "elapsed", time.Since(start))
	return rep, nil
}

// analyzeAs analyzes a single file or stdin as language.
func analyzeAs(ctx context.Context, c *cli.Context, svc *analysis.Service, language string) (*report.Report, error) {
	la, err := lang.Resolve(language)
	if err != nil {
		return nil, err
	}
	if c.Args().Len() > 1 {
		return nil, fmt.Errorf("--lang takes at most one file, got %d", c.Args().Len())
	}

	name := c.Args().First()
	var source []byte
	if name == "" || name == "-" {
		name = "<stdin>"
		source, err = io.ReadAll(c.App.Reader)
	} else {
		source, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}

	opts, err := svc.Options()
	if err != nil {
		return nil, err
	}
	res, err := svc.AnalyzeSource(ctx, source, la.Name(), opts)
	if err != nil {
		return nil, err
	}
	return report.New(report.Metadata{
		Tool:        "mentor",
		Version:     version,
		GeneratedAt: time.Now().UTC(),
		Paths:       []string{filepath.ToSlash(name)},
		Thresholds:  opts.Thresholds,
	}, []report.FileReport{report.FromResult(name, res)}), nil
}
