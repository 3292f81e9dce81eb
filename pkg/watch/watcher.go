// Package watch re-runs analysis on source files as they change.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/config"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
)

// DefaultDebounce is how long a file must stay quiet before it is analyzed.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors files for changes and triggers analysis.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	path      string
	out       io.Writer
	onChange  func(ctx context.Context, path string)
	onRemove  func(path string)
	mu        sync.Mutex
	pending   map[string]time.Time
}

// NewWatcher creates a new file watcher rooted at path.
func NewWatcher(path string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  debounce,
		path:      path,
		out:       os.Stdout,
		pending:   make(map[string]time.Time),
	}, nil
}

// SetCallback sets the function to call when a file changes. Callbacks run
// one at a time, so their output never interleaves.
func (w *Watcher) SetCallback(cb func(ctx context.Context, path string)) {
	w.onChange = cb
}

// SetRemoveCallback sets the function to call when a watched file is
// removed or renamed away.
func (w *Watcher) SetRemoveCallback(cb func(path string)) {
	w.onRemove = cb
}

// SetOutput redirects the banner lines, which go to stdout by default.
func (w *Watcher) SetOutput(out io.Writer) {
	w.out = out
}

// Start watches until ctx is done. It returns ctx.Err() on cancellation,
// after the callback in flight has finished.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(w.out, "Watching for changes in %s...\n", w.path)
	color.New(color.FgCyan).Fprintln(w.out, "Press Ctrl+C to stop")
	fmt.Fprintln(w.out)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processDebounced(ctx)
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			color.New(color.FgRed).Fprintf(w.out, "Watch error: %v\n", err)
		}
	}
}

// addTree watches root and every directory below it that is not excluded.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && slices.Contains(w.config.Exclude.Dirs, d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// relevant reports whether path is a source file the config accepts.
func (w *Watcher) relevant(path string) bool {
	rel, err := filepath.Rel(w.path, path)
	if err != nil {
		rel = path
	}
	if w.config.ShouldExclude(rel) {
		return false
	}
	a, err := lang.ForPath(path)
	if err != nil {
		return false
	}
	return w.config.LanguageEnabled(a.Name())
}

// handleEvent processes a filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !slices.Contains(w.config.Exclude.Dirs, info.Name()) {
				_ = w.addTree(path)
			}
			return
		}
	}

	if !w.relevant(path) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if w.onRemove != nil {
			w.onRemove(path)
		}
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		w.mu.Lock()
		w.pending[path] = time.Now()
		w.mu.Unlock()
	}
}

// processDebounced processes pending changes after debounce period.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(max(w.debounce/5, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, path := range w.ready(time.Now()) {
				if ctx.Err() != nil {
					return
				}
				w.runCallback(ctx, path)
			}
		}
	}
}

// ready removes and returns the files that have been quiet for the debounce
// period, in path order.
func (w *Watcher) ready(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			out = append(out, path)
		}
	}
	for _, path := range out {
		delete(w.pending, path)
	}
	slices.Sort(out)
	return out
}

// runCallback executes the callback for a changed file.
func (w *Watcher) runCallback(ctx context.Context, path string) {
	if w.onChange == nil {
		return
	}
	relPath, err := filepath.Rel(w.path, path)
	if err != nil {
		relPath = path
	}

	color.New(color.FgYellow).Fprintf(w.out, "\nFile changed: %s\n", relPath)
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	w.onChange(ctx, path)

	fmt.Fprintln(w.out)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the directories being watched.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
