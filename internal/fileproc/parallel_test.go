package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
	return path
}

func readFile(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func TestForEachFile(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "a.py", "a = 1\n"),
		createTestFile(t, tmpDir, "b.py", "b = 2\n"),
		createTestFile(t, tmpDir, "c.py", "c = 3\n"),
	}

	results, errs := ForEachFile(context.Background(), files, Options{}, readFile)
	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	want := []string{"a = 1\n", "b = 2\n", "c = 3\n"}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %q, want %q", i, results[i], want[i])
		}
	}
}

func TestForEachFile_EmptyFileList(t *testing.T) {
	results, errs := ForEachFile(context.Background(), nil, Options{}, readFile)
	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected no errors, got %v", errs)
	}
}

func TestForEachFile_KeepsInputOrder(t *testing.T) {
	var files []string
	for i := range 50 {
		files = append(files, fmt.Sprintf("f%02d", i))
	}

	results, errs := ForEachFile(context.Background(), files, Options{Workers: 8}, func(_ context.Context, path string) (string, error) {
		return strings.ToUpper(path), nil
	})
	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	for i, r := range results {
		if r != strings.ToUpper(files[i]) {
			t.Fatalf("results[%d] = %q, want %q", i, r, strings.ToUpper(files[i]))
		}
	}
}

func TestForEachFile_CollectsErrors(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "ok.py", "x = 1\n"),
		filepath.Join(tmpDir, "missing-b.py"),
		filepath.Join(tmpDir, "missing-a.py"),
	}

	results, errs := ForEachFile(context.Background(), files, Options{}, readFile)
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
	if errs == nil {
		t.Fatal("Expected errors for missing files")
	}
	if len(errs.Errors) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(errs.Errors))
	}
	if !strings.HasSuffix(errs.Errors[0].Path, "missing-a.py") {
		t.Errorf("errors should be sorted by path, first is %s", errs.Errors[0].Path)
	}
	if !errors.Is(errs, os.ErrNotExist) {
		t.Error("errors.Is should see through ProcessingErrors to os.ErrNotExist")
	}
	if !strings.Contains(errs.Error(), "2 files failed") {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestForEachFile_Progress(t *testing.T) {
	files := []string{"a", "b", "c", "d"}
	var count atomic.Int32
	var mu sync.Mutex
	seen := make(map[string]bool)

	_, _ = ForEachFile(context.Background(), files, Options{
		Workers: 2,
		OnProgress: func(path string) {
			count.Add(1)
			mu.Lock()
			seen[path] = true
			mu.Unlock()
		},
	}, func(_ context.Context, path string) (int, error) {
		if path == "c" {
			return 0, errors.New("boom")
		}
		return len(path), nil
	})

	if got := count.Load(); got != int32(len(files)) {
		t.Errorf("progress called %d times, want %d", got, len(files))
	}
	if len(seen) != len(files) {
		t.Errorf("progress saw %d distinct files, want %d", len(seen), len(files))
	}
}

func TestForEachFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results, errs := ForEachFile(ctx, []string{"a", "b"}, Options{}, func(_ context.Context, path string) (string, error) {
		calls.Add(1)
		return path, nil
	})

	if len(results) != 0 {
		t.Errorf("Expected no results, got %v", results)
	}
	if calls.Load() != 0 {
		t.Errorf("fn should not run after cancellation, ran %d times", calls.Load())
	}
	if errs == nil || !errors.Is(errs, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", errs)
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	if errs.HasErrors() {
		t.Error("new collection should be empty")
	}
	if errs.Error() != "no errors" {
		t.Errorf("Error() = %q, want %q", errs.Error(), "no errors")
	}

	errs.Add("one.go", errors.New("bad"))
	if errs.Error() != "one.go: bad" {
		t.Errorf("Error() = %q, want %q", errs.Error(), "one.go: bad")
	}
}
