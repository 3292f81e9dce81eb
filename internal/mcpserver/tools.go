package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/output"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/report"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/scanner"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/service/analysis"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// FormatInput selects the rendering of a tool result.
type FormatInput struct {
	Format      string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	MinSeverity string `json:"min_severity,omitempty" jsonschema:"Drop issues below this severity: error, warning, or info (default)."`
}

// ThresholdInput overrides the configured thresholds for one call. Zero
// values keep the configured value.
type ThresholdInput struct {
	Cyclomatic             uint32 `json:"cyclomatic,omitempty" jsonschema:"Cyclomatic complexity limit per function. Default 10."`
	Cognitive              uint32 `json:"cognitive,omitempty" jsonschema:"Cognitive complexity limit per function. Default 15."`
	MaxNesting             int    `json:"max_nesting,omitempty" jsonschema:"Deepest allowed control-flow nesting. Default 4."`
	MaxFunctionLines       int    `json:"max_function_lines,omitempty" jsonschema:"Longest allowed function body in lines. Default 50."`
	MinIdentifierLength    int    `json:"min_identifier_length,omitempty" jsonschema:"Shortest allowed identifier name. Default 2."`
	MinDuplicateStatements int    `json:"min_duplicate_statements,omitempty" jsonschema:"Shortest statement run reported as duplicate code. Default 3."`
}

func (in ThresholdInput) apply(t *models.Thresholds) {
	if in.Cyclomatic > 0 {
		t.MaxCyclomatic = in.Cyclomatic
	}
	if in.Cognitive > 0 {
		t.MaxCognitive = in.Cognitive
	}
	if in.MaxNesting > 0 {
		t.MaxNesting = in.MaxNesting
	}
	if in.MaxFunctionLines > 0 {
		t.MaxFunctionLines = in.MaxFunctionLines
	}
	if in.MinIdentifierLength > 0 {
		t.MinIdentifierLength = in.MinIdentifierLength
	}
	if in.MinDuplicateStatements > 0 {
		t.MinDuplicateStatements = in.MinDuplicateStatements
	}
}

// AnalyzeSourceInput is the input of analyze_source.
type AnalyzeSourceInput struct {
	FormatInput
	ThresholdInput
	Source    string `json:"source" jsonschema:"The source code to analyze."`
	Language  string `json:"language" jsonschema:"Language of the source: python, javascript, typescript, or go. Aliases such as py, js, ts are accepted."`
	Name      string `json:"name,omitempty" jsonschema:"Optional file name used in the report. Default <source>."`
	TimeoutMs int    `json:"timeout_ms,omitempty" jsonschema:"Analysis time budget in milliseconds. Results are partial when it runs out."`
}

// AnalyzePathsInput is the input of analyze_paths.
type AnalyzePathsInput struct {
	FormatInput
	Paths []string `json:"paths,omitempty" jsonschema:"Files, directories, or glob patterns to analyze. Defaults to current directory if empty."`
}

// ListLanguagesInput is the input of list_languages.
type ListLanguagesInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	Name       string   `json:"name" toon:"name"`
	Extensions []string `json:"extensions" toon:"extensions"`
	Features   []string `json:"features" toon:"features"`
}

// Helper functions

func getPaths(input AnalyzePathsInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func getMinSeverity(input FormatInput) (models.Severity, error) {
	if input.MinSeverity == "" {
		return models.SeverityInfo, nil
	}
	return models.ParseSeverity(input.MinSeverity)
}

func formatOutput(data any, format output.Format) (string, error) {
	r, renderable := data.(output.Renderable)
	if renderable && format != output.FormatMarkdown {
		data = r.RenderData()
	}

	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		if renderable {
			var buf bytes.Buffer
			if err := r.RenderMarkdown(&buf); err != nil {
				return "", err
			}
			return buf.String(), nil
		}
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return "```\n" + string(out) + "\n```", nil
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// reportResult renders rep. With single set, structured formats return the
// lone file report without the run metadata.
func reportResult(rep *report.Report, format output.Format, single bool) (*mcp.CallToolResult, any, error) {
	if single && len(rep.Files) == 1 && format != output.FormatMarkdown {
		return toolResult(rep.Files[0], format)
	}
	return toolResult(output.NewIssueReport(rep), format)
}

// Tool handlers

func (s *Server) handleAnalyzeSource(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeSourceInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)
	level, err := getMinSeverity(input.FormatInput)
	if err != nil {
		return toolError(err.Error())
	}
	if input.Language == "" {
		return toolError("language is required")
	}
	la, err := lang.Resolve(input.Language)
	if err != nil {
		return toolError(err.Error())
	}

	opts, err := s.svc.Options()
	if err != nil {
		return toolError(err.Error())
	}
	input.ThresholdInput.apply(&opts.Thresholds)
	if input.TimeoutMs > 0 {
		opts.Timeout = time.Duration(input.TimeoutMs) * time.Millisecond
	}

	res, err := s.svc.AnalyzeSource(ctx, []byte(input.Source), la.Name(), opts)
	if err != nil {
		return toolError(err.Error())
	}

	name := input.Name
	if name == "" {
		name = "<source>"
	}
	rep := report.New(report.Metadata{
		Tool:        "mentor",
		Version:     s.version,
		GeneratedAt: time.Now().UTC(),
		Paths:       []string{name},
		Thresholds:  opts.Thresholds,
	}, []report.FileReport{report.FromResult(name, res)})

	return reportResult(rep.Filter(level), format, true)
}

func (s *Server) handleAnalyzePaths(ctx context.Context, req *mcp.CallToolRequest, input AnalyzePathsInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input)
	format := getFormat(input.Format)
	level, err := getMinSeverity(input.FormatInput)
	if err != nil {
		return toolError(err.Error())
	}

	files, err := scanner.NewScanner(s.svc.Config()).Expand(paths)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	rep, err := s.svc.AnalyzeFiles(ctx, files, analysis.FilesOptions{Paths: paths})
	if err != nil {
		return toolError(err.Error())
	}
	return reportResult(rep.Filter(level), format, false)
}

func (s *Server) handleListLanguages(ctx context.Context, req *mcp.CallToolRequest, input ListLanguagesInput) (*mcp.CallToolResult, any, error) {
	cfg := s.svc.Config()
	var langs []LanguageInfo
	for _, l := range supportedLanguages() {
		if cfg.LanguageEnabled(l.Name) {
			langs = append(langs, l)
		}
	}
	result := struct {
		Languages []LanguageInfo `json:"languages" toon:"languages"`
	}{langs}
	return toolResult(result, getFormat(input.Format))
}

// supportedLanguages describes every registered language, enabled or not.
func supportedLanguages() []LanguageInfo {
	all := lang.Languages()
	out := make([]LanguageInfo, 0, len(all))
	for _, a := range all {
		features := make([]string, 0, len(a.Features()))
		for _, f := range a.Features() {
			features = append(features, f.String())
		}
		out = append(out, LanguageInfo{
			Name:       a.Name(),
			Extensions: a.Extensions(),
			Features:   features,
		})
	}
	return out
}
