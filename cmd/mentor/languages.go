package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/output"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
)

func languagesCmd() *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "List supported languages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
		},
		Action: runLanguagesCmd,
	}
}

type languageRow struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	Features   []string `json:"features"`
	Enabled    bool     `json:"enabled"`
}

func runLanguagesCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var data []languageRow
	var rows [][]string
	for _, a := range lang.Languages() {
		row := languageRow{
			Name:       a.Name(),
			Extensions: a.Extensions(),
			Enabled:    cfg.LanguageEnabled(a.Name()),
		}
		for _, f := range a.Features() {
			row.Features = append(row.Features, f.String())
		}
		data = append(data, row)

		enabled := "yes"
		if !row.Enabled {
			enabled = "no"
		}
		rows = append(rows, []string{
			row.Name,
			strings.Join(row.Extensions, " "),
			strings.Join(row.Features, ", "),
			enabled,
		})
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"),
		output.WithWriter(c.App.Writer), output.WithColor(!color.NoColor))
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewTable(
		"Supported Languages",
		[]string{"Language", "Extensions", "Features", "Enabled"},
		rows,
		nil,
		data,
	))
}
