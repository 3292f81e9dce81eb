package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/report"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

const unreachableJS = "function f() {\n  return 1;\n  console.log(1);\n}\n"

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI with args after the program name.
func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"mentor", "--no-cache", "--no-color"}, args...))
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func readReport(t *testing.T, path string) report.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	return rep
}

func hasCategory(rep report.Report, c models.Category) bool {
	for _, f := range rep.Files {
		for _, iss := range f.Issues {
			if iss.Category == c {
				return true
			}
		}
	}
	return false
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(fmt.Errorf("%w at or above error severity", errIssuesFound)))
	assert.Equal(t, 2, exitCode(errors.New("boom")))
}

func TestAnalyzeCommandJSON(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"bad.js":         unreachableJS,
		"ok.py":          "def add(left, right):\n    return left + right\n",
		"vendor/lib.go":  "package lib\n",
		"notes/todo.txt": "not code\n",
	})
	out := filepath.Join(t.TempDir(), "report.json")

	res := run(t, "", "analyze", "--format", "json", "--fail-on", "none", "-o", out, dir)
	require.NoError(t, res.err)

	rep := readReport(t, out)
	assert.Equal(t, 2, rep.FilesAnalyzed)
	assert.Equal(t, 0, rep.FilesFailed)
	assert.Equal(t, "mentor", rep.Metadata.Tool)
	assert.True(t, hasCategory(rep, models.CategoryUnreachable))
	assert.Contains(t, res.stderr, "Report written to")
}

func TestAnalyzeFailOn(t *testing.T) {
	dir := writeTree(t, map[string]string{"bad.js": unreachableJS})
	out := filepath.Join(t.TempDir(), "out.txt")

	res := run(t, "", "analyze", "--fail-on", "warning", "-o", out, dir)
	assert.ErrorIs(t, res.err, errIssuesFound)

	res = run(t, "", "analyze", "--fail-on", "none", "-o", out, dir)
	assert.NoError(t, res.err)

	text, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(text), "unreachable-code")
	assert.Contains(t, string(text), "in 1 files")
}

func TestAnalyzeLangStdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")

	res := run(t, "def f(:\n    return 1\n", "analyze", "--lang", "py", "--format", "json", "-o", out)
	assert.ErrorIs(t, res.err, errIssuesFound)

	rep := readReport(t, out)
	require.Len(t, rep.Files, 1)
	assert.Equal(t, "<stdin>", rep.Files[0].Path)
	assert.Equal(t, "python", rep.Files[0].Language)
	assert.Positive(t, rep.Summary.ByType[models.IssueSyntax])
}

func TestAnalyzeLangFileOverridesExtension(t *testing.T) {
	dir := writeTree(t, map[string]string{"script.txt": "def f(ab):\n    return ab\n"})
	out := filepath.Join(t.TempDir(), "report.json")

	res := run(t, "", "analyze", "--lang", "python", "--min-ident", "3", "--format", "json", "--fail-on", "none", "-o", out, filepath.Join(dir, "script.txt"))
	require.NoError(t, res.err)

	rep := readReport(t, out)
	assert.True(t, hasCategory(rep, models.CategoryShortIdent))
	assert.Equal(t, 3, rep.Metadata.Thresholds.MinIdentifierLength)
}

func TestAnalyzeErrors(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.py": "x = 1\n"})
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown language", []string{"analyze", "--lang", "cobol"}, "unsupported language"},
		{"too many files with lang", []string{"analyze", "--lang", "python", "a.py", "b.py"}, "at most one file"},
		{"bad timeout", []string{"analyze", "--timeout", "soon", dir}, "analysis.timeout"},
		{"bad format", []string{"analyze", "--format", "xml", dir}, "output.format"},
		{"bad fail-on", []string{"analyze", "--fail-on", "fatal", dir}, "output.fail_on"},
		{"missing path", []string{"analyze", filepath.Join(dir, "missing")}, "no such file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", tt.args...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), tt.want)
			assert.False(t, errors.Is(res.err, errIssuesFound))
		})
	}
}

func TestAnalyzeNoFiles(t *testing.T) {
	res := run(t, "", "analyze", t.TempDir())
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "No source files found")
}

func TestAnalyzeHTML(t *testing.T) {
	dir := writeTree(t, map[string]string{"bad.js": unreachableJS})
	out := filepath.Join(t.TempDir(), "report.html")

	res := run(t, "", "analyze", "--format", "html", "--fail-on", "none", "-o", out, dir)
	require.NoError(t, res.err)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<!DOCTYPE html>")
	assert.Contains(t, string(html), "bad.js")
}

func TestLanguagesCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "langs.json")
	res := run(t, "", "languages", "--format", "json", "-o", out)
	require.NoError(t, res.err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows []languageRow
	require.NoError(t, json.Unmarshal(data, &rows))

	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
		assert.True(t, r.Enabled, r.Name)
		assert.NotEmpty(t, r.Extensions, r.Name)
	}
	assert.Equal(t, []string{"go", "javascript", "python", "typescript"}, names)
}

func TestConfigInitShowValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentor.yaml")

	res := run(t, "", "config", "init", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Created")

	res = run(t, "", "config", "init", path)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "already exists")

	res = run(t, "", "-c", path, "config", "validate")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Configuration valid")

	res = run(t, "", "-c", path, "config", "show", "--format", "json")
	require.NoError(t, res.err)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &shown))
	assert.Contains(t, shown, "thresholds")

	res = run(t, "", "-c", path, "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "# Configuration from: "+path)
	assert.Contains(t, res.stdout, "[thresholds]")
}

func TestConfigValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentor.toml")
	require.NoError(t, os.WriteFile(path, []byte("[thresholds]\ncyclomatic = \"ten\"\n"), 0o644))

	res := run(t, "", "-c", path, "config", "validate")
	require.Error(t, res.err)
	assert.Contains(t, res.stdout, "Configuration validation failed")
}

func TestConfigSchema(t *testing.T) {
	res := run(t, "", "config", "schema")
	require.NoError(t, res.err)
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &schema))
	assert.Equal(t, "object", schema["type"])
}

func TestCacheCommands(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	cfgPath := filepath.Join(t.TempDir(), "mentor.json")
	cfgJSON := fmt.Sprintf(`{"cache": {"enabled": true, "dir": %q, "ttl": 1}}`, cacheDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgJSON), 0o644))
	dir := writeTree(t, map[string]string{"a.py": "def add(left, right):\n    return left + right\n"})

	// Analyze with caching on; run adds --no-cache, so build the app directly.
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer, app.ErrWriter = &stdout, &stderr
	out := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, app.Run([]string{"mentor", "-c", cfgPath, "analyze", "-o", out, dir}))

	res := run(t, "", "-c", cfgPath, "cache", "stats")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Entries:         1")

	res = run(t, "", "-c", cfgPath, "cache", "prune")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Removed 0 cached reports")

	res = run(t, "", "-c", cfgPath, "cache", "clear")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Cleared cache")

	res = run(t, "", "-c", cfgPath, "cache", "stats")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Entries:         0")
}

func TestMCPManifestCommand(t *testing.T) {
	res := run(t, "", "mcp", "manifest")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "io.github.MohammedMohsini/AI-Coding-Mentor")
}

func TestWatchRejectsFile(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.py": "x = 1\n"})
	res := run(t, "", "watch", filepath.Join(dir, "a.py"))
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "is not a directory")
}
