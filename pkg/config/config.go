package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analysis"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/complexity"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// Config holds all configuration options for mentor.
type Config struct {
	// Limits the quality detector measures against
	Thresholds models.Thresholds `json:"thresholds" koanf:"thresholds" toml:"thresholds" yaml:"thresholds"`

	// Cognitive complexity policy
	Weights complexity.Weights `json:"weights" koanf:"weights" toml:"weights" yaml:"weights"`

	// Analysis settings
	Analysis AnalysisConfig `json:"analysis" koanf:"analysis" toml:"analysis" yaml:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `json:"exclude" koanf:"exclude" toml:"exclude" yaml:"exclude"`

	// Cache settings
	Cache CacheConfig `json:"cache" koanf:"cache" toml:"cache" yaml:"cache"`

	// Output settings
	Output OutputConfig `json:"output" koanf:"output" toml:"output" yaml:"output"`
}

// AnalysisConfig controls how files are analyzed.
type AnalysisConfig struct {
	Timeout     string   `json:"timeout" koanf:"timeout" toml:"timeout" yaml:"timeout"` // per file, e.g. "10s"; empty for none
	Parallelism int      `json:"parallelism" koanf:"parallelism" toml:"parallelism" yaml:"parallelism"`
	Languages   []string `json:"languages" koanf:"languages" toml:"languages" yaml:"languages"` // empty means every registered language
	MaxFileSize int64    `json:"max_file_size" koanf:"max_file_size" toml:"max_file_size" yaml:"max_file_size"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `json:"patterns" koanf:"patterns" toml:"patterns" yaml:"patterns"`
	Extensions []string `json:"extensions" koanf:"extensions" toml:"extensions" yaml:"extensions"`
	Dirs       []string `json:"dirs" koanf:"dirs" toml:"dirs" yaml:"dirs"`
	Gitignore  bool     `json:"gitignore" koanf:"gitignore" toml:"gitignore" yaml:"gitignore"` // also skip paths ignored by .gitignore files
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `json:"enabled" koanf:"enabled" toml:"enabled" yaml:"enabled"`
	Dir     string `json:"dir" koanf:"dir" toml:"dir" yaml:"dir"`
	TTL     int    `json:"ttl" koanf:"ttl" toml:"ttl" yaml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `json:"format" koanf:"format" toml:"format" yaml:"format"` // text, json, markdown, toon, html
	Color  bool   `json:"color" koanf:"color" toml:"color" yaml:"color"`
	FailOn string `json:"fail_on" koanf:"fail_on" toml:"fail_on" yaml:"fail_on"` // error, warning, info, none
}

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "markdown", "toon", "html"}

// FailLevels lists the accepted fail_on values.
var FailLevels = []string{"error", "warning", "info", "none"}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: models.DefaultThresholds(),
		Weights:    complexity.DefaultWeights(),
		Analysis: AnalysisConfig{
			Timeout:     "30s",
			Parallelism: 0,
			Languages:   []string{},
			MaxFileSize: 1 << 20,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.bundle.js",
				"*.d.ts",
			},
			Extensions: []string{},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".mentor",
				"dist",
				"build",
				"__pycache__",
				".venv",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".mentor/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
			FailOn: "error",
		},
	}
}

// parserFor picks the koanf parser from the file extension, defaulting to
// TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// Load loads configuration from a file over the defaults. The raw file is
// checked against the embedded schema before it is decoded, and the result
// is validated.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := ValidateRaw(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Standard config file names to search for, in order.
var configNames = []string{
	"mentor.toml",
	"mentor.yaml",
	"mentor.yml",
	"mentor.json",
	".mentor.toml",
	".mentor.yaml",
	".mentor.yml",
	".mentor.json",
}

// Find returns the first config file in the current directory or .mentor,
// or "" when there is none.
func Find() string {
	for _, dir := range []string{".", ".mentor"} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the config at path, or the first standard config file
// when path is empty, or the defaults when none exists. It also returns the
// file the config came from.
func LoadOrDefault(path string) (*Config, string, error) {
	if path == "" {
		path = Find()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains(FailLevels, c.Output.FailOn) {
		return fmt.Errorf("output.fail_on %q is not one of %s", c.Output.FailOn, strings.Join(FailLevels, ", "))
	}
	if c.Analysis.Parallelism < 0 {
		return fmt.Errorf("analysis.parallelism must not be negative, got %d", c.Analysis.Parallelism)
	}
	return nil
}

// Timeout parses Analysis.Timeout. An empty value means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Analysis.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Analysis.Timeout)
	if err != nil {
		return 0, fmt.Errorf("analysis.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("analysis.timeout must not be negative, got %s", d)
	}
	return d, nil
}

// AnalysisOptions converts the config into per-file analysis options.
func (c *Config) AnalysisOptions() (analysis.Options, error) {
	timeout, err := c.Timeout()
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{
		Thresholds: c.Thresholds,
		Weights:    c.Weights,
		Timeout:    timeout,
	}, nil
}

// LanguageEnabled reports whether files of the language should be analyzed.
func (c *Config) LanguageEnabled(name string) bool {
	return len(c.Analysis.Languages) == 0 || slices.Contains(c.Analysis.Languages, name)
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check extension exclusions
	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
