package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/output"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/report"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "Re-analyze source files as they change",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before a changed file is analyzed",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}
	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), "",
		output.WithWriter(c.App.Writer), output.WithColor(cfg.Output.Color && !color.NoColor))
	if err != nil {
		return err
	}
	defer formatter.Close()

	w, err := watch.NewWatcher(dir, cfg, c.Duration("debounce"))
	if err != nil {
		return err
	}
	defer w.Stop()

	aopts, err := svc.Options()
	if err != nil {
		return err
	}
	w.SetCallback(func(ctx context.Context, path string) {
		fr, err := svc.AnalyzeFile(ctx, path)
		if err != nil {
			formatter.Error("%v", err)
			return
		}
		rep := report.New(report.Metadata{
			Tool:        "mentor",
			Version:     version,
			GeneratedAt: time.Now().UTC(),
			Paths:       []string{path},
			Thresholds:  aopts.Thresholds,
		}, []report.FileReport{fr})
		if err := formatter.Output(output.NewIssueReport(rep)); err != nil {
			logger(c).Warn("render failed", "path", path, "error", err)
		}
		if fr.Degraded {
			formatter.Warning("partial analysis: %s", strings.Join(fr.DegradedReasons, "; "))
		}
	})
	w.SetOutput(c.App.Writer)
	w.SetRemoveCallback(svc.Forget)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
