package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/cache"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/service/analysis"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/config"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig loads the config named by --config, or the first standard
// config file, or the defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, source, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return nil, err
	}
	if source != "" {
		logger(c).Debug("config loaded", "path", source)
	}
	return cfg, nil
}

// openCache opens the report cache described by cfg, honoring --no-cache.
func openCache(c *cli.Context, cfg *config.Config) (*cache.Cache, error) {
	enabled := cfg.Cache.Enabled && !c.Bool("no-cache")
	ch, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, enabled)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return ch, nil
}

// newService builds the analysis service shared by analyze, watch and mcp.
func newService(c *cli.Context, cfg *config.Config) (*analysis.Service, error) {
	ch, err := openCache(c, cfg)
	if err != nil {
		return nil, err
	}
	return analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithCache(ch),
		analysis.WithLogger(logger(c)),
		analysis.WithVersion(version),
	), nil
}
