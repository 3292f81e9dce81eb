package analysis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/cache"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/config"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestAnalyzeFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.js":   "function f(){ return 1; console.log(1); }\n",
		"good.py":  "def add(left, right):\n    return left + right\n",
		"notes.rb": "puts 1\n",
	})
	files := []string{
		filepath.Join(dir, "good.py"),
		filepath.Join(dir, "bad.js"),
		filepath.Join(dir, "notes.rb"),
	}

	var ticks atomic.Int32
	rep, err := New().AnalyzeFiles(context.Background(), files, FilesOptions{
		Paths:      []string{dir},
		OnProgress: func(string) { ticks.Add(1) },
	})
	require.NoError(t, err)

	assert.Equal(t, int32(3), ticks.Load())
	require.Len(t, rep.Files, 3)
	assert.Equal(t, filepath.Join(dir, "bad.js"), rep.Files[0].Path)
	assert.Equal(t, 2, rep.FilesAnalyzed)
	assert.Equal(t, 1, rep.FilesFailed)
	assert.Contains(t, rep.Files[2].Error, "unsupported language")
	assert.Equal(t, 1, rep.Summary.ByType[models.IssueLogical])
	assert.Equal(t, []string{dir}, rep.Metadata.Paths)
	assert.Equal(t, "mentor", rep.Metadata.Tool)
}

func TestAnalyzeFilesUsesCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.py": "x = 1\n"})
	path := filepath.Join(dir, "a.py")

	c, err := cache.New(filepath.Join(dir, ".cache"), 1, true)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := New(WithCache(c), WithLogger(logger))

	_, err = svc.AnalyzeFiles(context.Background(), []string{path}, FilesOptions{})
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "cache hit")

	_, err = svc.AnalyzeFiles(context.Background(), []string{path}, FilesOptions{})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "cache hit")

	logs.Reset()
	svc.Forget(path)
	_, err = svc.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "cache hit")
}

func TestAnalyzeFilesRespectsMaxFileSize(t *testing.T) {
	dir := writeFiles(t, map[string]string{"big.py": strings.Repeat("x = 1\n", 100)})
	cfg := config.DefaultConfig()
	cfg.Analysis.MaxFileSize = 10

	_, err := New(WithConfig(cfg)).AnalyzeFile(context.Background(), filepath.Join(dir, "big.py"))
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestAnalyzeFilesCanceled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.py": "x = 1\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().AnalyzeFiles(ctx, []string{filepath.Join(dir, "a.py")}, FilesOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeFilesInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Timeout = "soon"

	_, err := New(WithConfig(cfg)).AnalyzeFiles(context.Background(), nil, FilesOptions{})
	assert.Error(t, err)
}

func TestAnalyzeSource(t *testing.T) {
	svc := New()
	opts, err := svc.Options()
	require.NoError(t, err)
	opts.Thresholds.MinIdentifierLength = 3

	res, err := svc.AnalyzeSource(context.Background(), []byte("def f(ab):\n    return ab\n"), "python", opts)
	require.NoError(t, err)
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, models.CategoryShortIdent, res.Issues[0].Category)
}
