package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/report"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// bufferFormatter returns a formatter writing into buf.
func bufferFormatter(format Format, buf *bytes.Buffer) *Formatter {
	return &Formatter{format: format, writer: buf}
}

func sampleReport() *report.Report {
	issues := []models.Issue{
		{
			ID:       "logical-1",
			Type:     models.IssueLogical,
			Severity: models.SeverityWarning,
			Category: models.CategoryUnreachable,
			Location: models.Location{
				Span:    models.Span{Start: models.Position{Line: 1, Column: 25}, End: models.Position{Line: 1, Column: 40}},
				Snippet: "console.log(1);",
			},
			Message:  "code after return can never run",
			Function: "f",
		},
	}
	return report.New(report.Metadata{Tool: "mentor", GeneratedAt: time.Now()}, []report.FileReport{
		{Path: "src/f.js", Language: "javascript", Issues: issues, Summary: models.Summarize(issues)},
		{Path: "src/clean.py", Language: "python", Issues: []models.Issue{}},
		report.Failed("src/lib.rs", errors.New("unsupported language")),
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"html", FormatHTML},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "output.txt")

	var stdout bytes.Buffer
	f, err := NewFormatter(FormatJSON, outputPath, WithWriter(&stdout), WithColor(true))
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if !f.ToFile() {
		t.Error("ToFile() should be true for file output")
	}
	if f.colored {
		t.Error("colored should be false when writing to file")
	}
	if err := f.Output(map[string]int{"n": 1}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("the writer should be unused when a path is given, got %q", stdout.String())
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("output file: %v", err)
	}
	if !strings.Contains(string(data), `"n": 1`) {
		t.Errorf("file content = %q", data)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, "/nonexistent/directory/file.txt")
	if err == nil {
		t.Error("NewFormatter() should error for invalid path")
	}
}

func TestNewFormatterWriter(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter(FormatText, "", WithWriter(&buf))
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.ToFile() {
		t.Error("ToFile() should be false without a path")
	}
	f.Warning("hello")
	if buf.String() != "WARNING: hello\n" {
		t.Errorf("output = %q", buf.String())
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() should not error without a file: %v", err)
	}
}

func TestFormatNames(t *testing.T) {
	if got := FormatNames(); got != "text, json, markdown, toon, html" {
		t.Errorf("FormatNames() = %q", got)
	}
}

func TestTableRenderText(t *testing.T) {
	table := NewTable("Languages", []string{"Name", "Extensions"}, [][]string{
		{"python", ".py"},
		{"go", ".go"},
	}, []string{"Total", "2"}, nil)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Languages", "=========", "python", ".go", "TOTAL"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("RenderText() missing %q:\n%s", want, out)
		}
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Languages", []string{"Name", "Extensions"}, [][]string{{"python", ".py"}}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	want := "## Languages\n\n| Name | Extensions |\n| --- | --- |\n| python | .py |\n\n"
	if buf.String() != want {
		t.Errorf("RenderMarkdown() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTableRenderMarkdownEscapesPipes(t *testing.T) {
	table := NewTable("", []string{"Op"}, [][]string{{"a || b"}}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.Contains(buf.String(), `| a \|\| b |`) {
		t.Errorf("RenderMarkdown() = %q", buf.String())
	}
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("", []string{"Name", "Extensions"}, [][]string{{"python", ".py"}}, nil, nil)
	rows, ok := table.RenderData().([]map[string]string)
	if !ok || len(rows) != 1 || rows[0]["Name"] != "python" {
		t.Errorf("RenderData() = %#v", table.RenderData())
	}

	wrapped := NewTable("", nil, nil, nil, map[string]int{"n": 1})
	if _, ok := wrapped.RenderData().(map[string]int); !ok {
		t.Error("RenderData() should return Data when set")
	}
}

func TestFormatterOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	f := bufferFormatter(FormatJSON, &buf)
	if err := f.Output(NewIssueReport(sampleReport())); err != nil {
		t.Fatalf("Output() error: %v", err)
	}

	var decoded report.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded.Summary.Total != 1 || len(decoded.Files) != 3 {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestFormatterOutputTOON(t *testing.T) {
	var buf bytes.Buffer
	f := bufferFormatter(FormatTOON, &buf)
	if err := f.Output(map[string]any{"language": "python", "issues": 2}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "language: python") || !strings.Contains(out, "issues: 2") {
		t.Errorf("TOON output = %q", out)
	}
}

func TestFormatterOutputText(t *testing.T) {
	var buf bytes.Buffer
	f := bufferFormatter(FormatText, &buf)
	if err := f.Output(NewIssueReport(sampleReport())); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"src/f.js (javascript)",
		"unreachable-code",
		"1:25",
		"(in f)",
		"skipped: unsupported language",
		"1 issues (0 errors, 1 warnings, 0 info) in 2 files, 1 skipped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "clean.py") {
		t.Error("files without issues should not be listed")
	}
}

func TestFormatterOutputMarkdown(t *testing.T) {
	var buf bytes.Buffer
	f := bufferFormatter(FormatMarkdown, &buf)
	if err := f.Output(NewIssueReport(sampleReport())); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Mentor report",
		"## src/f.js (javascript)",
		"| Line | Severity | Category | Message | Code |",
		"`console.log(1);`",
		"## src/lib.rs\n\nSkipped: unsupported language",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatterOutputHTML(t *testing.T) {
	var buf bytes.Buffer
	f := bufferFormatter(FormatHTML, &buf)
	if err := f.Output(NewIssueReport(sampleReport())); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE html>") {
		t.Errorf("HTML output should be a document, got %.40q", buf.String())
	}

	buf.Reset()
	if err := f.Output(NewTable("", []string{"Name"}, [][]string{{"go"}}, nil, nil)); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"Name": "go"`) {
		t.Errorf("non-HTML data should fall back to JSON, got %q", buf.String())
	}
}

func TestFormatterOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	f := bufferFormatter(FormatMarkdown, &buf)
	if err := f.Output(map[string]string{"key": "value"}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "```json\n") || !strings.HasSuffix(out, "```\n") {
		t.Errorf("markdown raw output should be fenced JSON, got %q", out)
	}
}

func TestFormatterMessageMethods(t *testing.T) {
	var buf bytes.Buffer
	f := bufferFormatter(FormatText, &buf)

	f.Warning("careful %s", "now")
	f.Error("failed")

	want := "WARNING: careful now\nERROR: failed\n"
	if buf.String() != want {
		t.Errorf("messages = %q, want %q", buf.String(), want)
	}
}

func TestSeverityColor(t *testing.T) {
	for _, sev := range []string{"error", "warning", "info", "other"} {
		if got := SeverityColor(sev, "text"); !strings.Contains(got, "text") {
			t.Errorf("SeverityColor(%q) = %q, want it to contain the text", sev, got)
		}
	}
}
