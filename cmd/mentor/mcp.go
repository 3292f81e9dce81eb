package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes mentor's analysis
as tools that LLMs can invoke, so an assistant can review a learner's code
and explain the findings.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "mentor": {
        "command": "mentor",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_source    Review inline source code in one language
  - analyze_paths     Review files, directories, or globs on disk
  - list_languages    Supported languages, extensions, and features`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest (server.json)",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger(c).Debug("mcp server starting", "version", version)
	return mcpserver.NewServer(version, svc).Run(ctx)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	printf(c, "%s\n", data)
	return nil
}
