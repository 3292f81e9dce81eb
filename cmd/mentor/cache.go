package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/cache"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the analysis cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the number and size of cached reports",
				Action: runCacheStats,
			},
			{
				Name:   "prune",
				Usage:  "Delete expired and unreadable cached reports",
				Action: runCachePrune,
			},
			{
				Name:   "clear",
				Usage:  "Delete every cached report",
				Action: runCacheClear,
			},
		},
	}
}

// openCacheDir opens the configured cache directory even when caching is
// disabled for analysis runs.
func openCacheDir(c *cli.Context) (*cache.Cache, string, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, "", err
	}
	ch, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
	if err != nil {
		return nil, "", fmt.Errorf("open cache: %w", err)
	}
	return ch, cfg.Cache.Dir, nil
}

func runCacheStats(c *cli.Context) error {
	ch, dir, err := openCacheDir(c)
	if err != nil {
		return err
	}
	stats, err := ch.GetStats()
	if err != nil {
		return err
	}
	printf(c, "Cache directory: %s\n", dir)
	printf(c, "Entries:         %d\n", stats.Entries)
	printf(c, "Expired:         %d\n", stats.Expired)
	printf(c, "Size:            %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		printf(c, "Oldest entry:    %s\n", stats.OldestAge.Round(time.Second))
	}
	return nil
}

func runCachePrune(c *cli.Context) error {
	ch, dir, err := openCacheDir(c)
	if err != nil {
		return err
	}
	removed, err := ch.Prune()
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Removed %d cached reports from %s\n", removed, dir)
	return nil
}

func runCacheClear(c *cli.Context) error {
	ch, dir, err := openCacheDir(c)
	if err != nil {
		return err
	}
	if err := ch.Clear(); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Cleared cache in %s\n", dir)
	return nil
}
