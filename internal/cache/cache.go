// Package cache keeps per-file analysis reports on disk between runs.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/report"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analysis"
)

const entryExt = ".json"

// Cache stores one report per (file, options) pair. An entry is reused only
// while the file content and the analysis options are unchanged and the
// entry is younger than the TTL. A zero TTL never expires.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// entry is the on-disk form of a cached report.
type entry struct {
	Path    string            `json:"path"`
	Digest  string            `json:"digest"`
	Options string            `json:"options"`
	Stored  time.Time         `json:"stored"`
	Report  report.FileReport `json:"report"`
}

// New opens the cache rooted at dir, creating it if needed. A disabled cache
// misses on every lookup and ignores writes.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

// OptionsKey fingerprints the options that change analysis output, so
// results computed under other thresholds or weights are never reused.
func OptionsKey(opts analysis.Options) string {
	data, _ := json.Marshal(struct {
		Thresholds any `json:"t"`
		Weights    any `json:"w"`
	}{opts.Thresholds, opts.Weights})
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Report returns the cached report for path when source and options match
// what produced it. Expired entries are removed on lookup.
func (c *Cache) Report(path string, source []byte, optsKey string) (report.FileReport, bool) {
	if !c.enabled {
		return report.FileReport{}, false
	}
	file := c.entryPath(path, optsKey)
	e, err := readEntry(file)
	if err != nil {
		return report.FileReport{}, false
	}
	if c.expired(e.Stored, time.Now()) {
		_ = os.Remove(file)
		return report.FileReport{}, false
	}
	if e.Path != path || e.Options != optsKey || e.Digest != analysis.Digest(source) {
		return report.FileReport{}, false
	}
	return e.Report, true
}

// StoreReport caches fr for path. Degraded or failed reports are not cached
// since a rerun may succeed.
func (c *Cache) StoreReport(path string, source []byte, optsKey string, fr report.FileReport) error {
	if !c.enabled || fr.Degraded || fr.Error != "" {
		return nil
	}
	data, err := json.Marshal(entry{
		Path:    path,
		Digest:  analysis.Digest(source),
		Options: optsKey,
		Stored:  time.Now().UTC(),
		Report:  fr,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	// Write then rename so a concurrent reader never sees half an entry.
	file := c.entryPath(path, optsKey)
	tmp := file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, file)
}

// Invalidate removes the report cached for path under optsKey.
func (c *Cache) Invalidate(path, optsKey string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.entryPath(path, optsKey))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Prune deletes expired and unreadable entries and returns how many it
// removed.
func (c *Cache) Prune() (int, error) {
	if !c.enabled {
		return 0, nil
	}
	now := time.Now()
	removed := 0
	err := c.walk(func(file string, _ fs.FileInfo) error {
		e, err := readEntry(file)
		if err == nil && !c.expired(e.Stored, now) {
			return nil
		}
		if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

// Stats summarizes what the cache directory holds.
type Stats struct {
	Entries   int           `json:"entries"`
	Expired   int           `json:"expired"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats walks the cache directory. Entry ages come from file modification
// times, so no entry is parsed.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{}
	if !c.enabled {
		return stats, nil
	}

	now := time.Now()
	var oldest, newest time.Time
	err := c.walk(func(_ string, info fs.FileInfo) error {
		mod := info.ModTime()
		stats.Entries++
		stats.TotalSize += info.Size()
		if c.expired(mod, now) {
			stats.Expired++
		}
		if oldest.IsZero() || mod.Before(oldest) {
			oldest = mod
		}
		if mod.After(newest) {
			newest = mod
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !oldest.IsZero() {
		stats.OldestAge = now.Sub(oldest)
		stats.NewestAge = now.Sub(newest)
	}
	return stats, nil
}

func (c *Cache) expired(stored, now time.Time) bool {
	return c.ttl > 0 && now.Sub(stored) > c.ttl
}

// walk calls fn for every entry file. A missing directory holds no entries.
func (c *Cache) walk(fn func(file string, info fs.FileInfo) error) error {
	return filepath.WalkDir(c.dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(file) != entryExt {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		return fn(file, info)
	})
}

// entryPath maps a (path, options) pair to a flat file name.
func (c *Cache) entryPath(path, optsKey string) string {
	sum := blake3.Sum256([]byte(path + "\x00" + optsKey))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+entryExt)
}

func readEntry(file string) (entry, error) {
	var e entry
	data, err := os.ReadFile(file)
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(data, &e)
	return e, err
}
