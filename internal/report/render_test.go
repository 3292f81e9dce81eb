package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	rep := New(Metadata{
		Tool:        "mentor",
		Version:     "1.2.3",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, sampleFiles())

	var buf bytes.Buffer
	if err := r.Render(rep, &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>mentor report</title>",
		"2026-01-02 03:04:05 UTC",
		"a.js",
		"unsupported language",
		"Partial analysis",
		"Unreachable Code",
		`id="report-summary"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestRenderNoIssues(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	var buf bytes.Buffer
	if err := r.Render(New(Metadata{Tool: "mentor"}, []FileReport{{Path: "ok.py"}}), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No issues found.") {
		t.Error("expected the empty-state note")
	}
}

func TestRenderEscapesSnippets(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	files := sampleFiles()
	files[0].Issues[0].Location.Snippet = "<script>alert(1)</script>"

	var buf bytes.Buffer
	if err := r.Render(New(Metadata{}, files), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)</script>") {
		t.Error("snippet was not escaped")
	}
}
