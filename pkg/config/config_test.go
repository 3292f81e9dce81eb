package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	// Check threshold defaults
	if cfg.Thresholds.MaxCyclomatic != 10 {
		t.Errorf("Thresholds.MaxCyclomatic = %d, want 10", cfg.Thresholds.MaxCyclomatic)
	}
	if cfg.Thresholds.MaxCognitive != 15 {
		t.Errorf("Thresholds.MaxCognitive = %d, want 15", cfg.Thresholds.MaxCognitive)
	}
	if cfg.Thresholds.MinDuplicateStatements != 3 {
		t.Errorf("Thresholds.MinDuplicateStatements = %d, want 3", cfg.Thresholds.MinDuplicateStatements)
	}
	if cfg.Weights.If != 1 || cfg.Weights.Nesting != 1 {
		t.Errorf("Weights = %+v, want every weight 1", cfg.Weights)
	}

	// Check output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if cfg.Output.FailOn != "error" {
		t.Errorf("Output.FailOn = %s, want error", cfg.Output.FailOn)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "mentor.toml", `
[thresholds]
cyclomatic = 5
min_identifier_length = 3

[weights]
nesting = 2

[analysis]
timeout = "2s"
languages = ["python"]

[exclude]
dirs = ["vendor", "custom_exclude"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Thresholds.MaxCyclomatic != 5 {
		t.Errorf("Thresholds.MaxCyclomatic = %d, want 5", cfg.Thresholds.MaxCyclomatic)
	}
	if cfg.Thresholds.MaxCognitive != 15 {
		t.Errorf("Thresholds.MaxCognitive = %d, want default 15", cfg.Thresholds.MaxCognitive)
	}
	if cfg.Thresholds.MinIdentifierLength != 3 {
		t.Errorf("Thresholds.MinIdentifierLength = %d, want 3", cfg.Thresholds.MinIdentifierLength)
	}
	if cfg.Weights.Nesting != 2 || cfg.Weights.If != 1 {
		t.Errorf("Weights = %+v, want nesting 2 and the rest 1", cfg.Weights)
	}
	if d, _ := cfg.Timeout(); d != 2*time.Second {
		t.Errorf("Timeout() = %v, want 2s", d)
	}
	if !cfg.LanguageEnabled("python") || cfg.LanguageEnabled("go") {
		t.Errorf("Languages = %v, want only python enabled", cfg.Analysis.Languages)
	}
	if len(cfg.Exclude.Dirs) != 2 {
		t.Errorf("Exclude.Dirs = %v, want 2 entries", cfg.Exclude.Dirs)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "mentor.yaml", `
thresholds:
  cognitive: 20
  max_nesting: 6
output:
  format: json
  fail_on: warning
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Thresholds.MaxCognitive != 20 {
		t.Errorf("Thresholds.MaxCognitive = %d, want 20", cfg.Thresholds.MaxCognitive)
	}
	if cfg.Thresholds.MaxNesting != 6 {
		t.Errorf("Thresholds.MaxNesting = %d, want 6", cfg.Thresholds.MaxNesting)
	}
	if cfg.Output.Format != "json" || cfg.Output.FailOn != "warning" {
		t.Errorf("Output = %+v, want json/warning", cfg.Output)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "mentor.json", `{
  "thresholds": {"min_duplicate_statements": 5},
  "cache": {"enabled": false}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Thresholds.MinDuplicateStatements != 5 {
		t.Errorf("Thresholds.MinDuplicateStatements = %d, want 5", cfg.Thresholds.MinDuplicateStatements)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/mentor.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeConfig(t, "mentor.toml", "this is not [valid toml")

	if _, err := Load(path); err == nil {
		t.Error("Load() should return error for invalid TOML")
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{
			name:    "zero cyclomatic",
			file:    "mentor.toml",
			content: "[thresholds]\ncyclomatic = 0\n",
			want:    "invalid config",
		},
		{
			name:    "unknown section",
			file:    "mentor.yaml",
			content: "smells:\n  enabled: true\n",
			want:    "invalid config",
		},
		{
			name:    "unknown format",
			file:    "mentor.json",
			content: `{"output": {"format": "xml"}}`,
			want:    "invalid config",
		},
		{
			name:    "wrong type",
			file:    "mentor.toml",
			content: "[thresholds]\nmax_nesting = \"deep\"\n",
			want:    "invalid config",
		},
		{
			name:    "bad duration",
			file:    "mentor.toml",
			content: "[analysis]\ntimeout = \"soon\"\n",
			want:    "invalid config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() should reject the file")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, source, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if source != "" {
		t.Errorf("source = %q, want empty", source)
	}
	if cfg.Thresholds.MaxCyclomatic != 10 {
		t.Errorf("Thresholds.MaxCyclomatic = %d, want default 10", cfg.Thresholds.MaxCyclomatic)
	}
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.Mkdir(".mentor", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(".mentor", "mentor.toml"), []byte("[thresholds]\ncognitive = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, source, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if source != filepath.Join(".mentor", "mentor.toml") {
		t.Errorf("source = %q, want .mentor/mentor.toml", source)
	}
	if cfg.Thresholds.MaxCognitive != 7 {
		t.Errorf("Thresholds.MaxCognitive = %d, want 7", cfg.Thresholds.MaxCognitive)
	}
}

func TestAnalysisOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Timeout = ""
	cfg.Thresholds.MaxCyclomatic = 3

	opts, err := cfg.AnalysisOptions()
	if err != nil {
		t.Fatalf("AnalysisOptions() error = %v", err)
	}
	if opts.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", opts.Timeout)
	}
	if opts.Thresholds.MaxCyclomatic != 3 {
		t.Errorf("Thresholds.MaxCyclomatic = %d, want 3", opts.Thresholds.MaxCyclomatic)
	}

	cfg.Analysis.Timeout = "-1s"
	if _, err := cfg.AnalysisOptions(); err == nil {
		t.Error("AnalysisOptions() should reject a negative timeout")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []string{"toml", "yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Thresholds.MaxNesting = 9

			data, err := cfg.Encode(format)
			if err != nil {
				t.Fatalf("Encode(%s) error = %v", format, err)
			}
			ext := map[string]string{"toml": ".toml", "yaml": ".yaml", "json": ".json"}[format]
			path := writeConfig(t, "mentor"+ext, string(data))

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() of encoded %s error = %v\n%s", format, err, data)
			}
			if loaded.Thresholds.MaxNesting != 9 {
				t.Errorf("Thresholds.MaxNesting = %d, want 9", loaded.Thresholds.MaxNesting)
			}
		})
	}

	if _, err := DefaultConfig().Encode("ini"); err == nil {
		t.Error("Encode(ini) should fail")
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		// Excluded directories
		{"vendor/lib.go", true},
		{"node_modules/pkg/index.js", true},
		{filepath.Join("src", "__pycache__", "mod.py"), true},

		// Excluded patterns
		{"app.min.js", true},
		{"types.d.ts", true},

		// Not excluded
		{"main.go", false},
		{"pkg/util/helper.py", false},
		{"app.js", false},
		{filepath.Join("pkg", "vendor_utils.go"), false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSchemaIsEmbedded(t *testing.T) {
	if !strings.Contains(string(Schema()), `"thresholds"`) {
		t.Error("Schema() should describe the thresholds section")
	}
	if err := ValidateRaw(map[string]any{}); err != nil {
		t.Errorf("empty document should be valid: %v", err)
	}
}
