package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write a config file with the default settings",
				ArgsUsage: "[file]",
				Description: `Writes the default configuration to mentor.toml, or to the given file.
The format follows the file extension (.toml, .yaml, .yml, .json).`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file.

Examples:
  mentor config show                  # Show effective config as TOML
  mentor config show --format yaml
  mentor -c mentor.json config show`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "toml",
						Usage:   "Output format: toml, yaml, json",
					},
				},
				Action: runConfigShow,
			},
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a mentor configuration file for syntax errors and invalid values.

Examples:
  mentor config validate                  # Validates default config locations
  mentor -c mentor.toml config validate   # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema config files are validated against",
				Action: runConfigSchema,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = "mentor.toml"
	}
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	content, err := config.DefaultConfig().Encode(formatForPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Created %s\n", path)
	return nil
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

func runConfigShow(c *cli.Context) error {
	cfg, source, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return err
	}

	content, err := cfg.Encode(c.String("format"))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if c.String("format") != "json" {
		if source != "" {
			printf(c, "# Configuration from: %s\n\n", source)
		} else {
			printf(c, "# Default configuration (no config file found)\n\n")
		}
	}
	printf(c, "%s", content)
	return nil
}

func runConfigValidate(c *cli.Context) error {
	_, source, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		color.New(color.FgRed).Fprintln(c.App.Writer, "Configuration validation failed:")
		printf(c, "  - %s\n", err)
		return err
	}

	if source != "" {
		color.New(color.FgGreen).Fprintf(c.App.Writer, "Configuration valid: %s\n", source)
	} else {
		color.New(color.FgYellow).Fprintln(c.App.Writer, "No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigSchema(c *cli.Context) error {
	_, err := c.App.Writer.Write(config.Schema())
	return err
}
