package complexity

import (
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// Metrics represents code complexity measurements for a function.
type Metrics struct {
	Cyclomatic uint32 `json:"cyclomatic"`
	Cognitive  uint32 `json:"cognitive"`
	MaxNesting int    `json:"max_nesting"`
	Lines      int    `json:"lines"`
	Parameters int    `json:"parameters"`
}

// FunctionResult represents complexity metrics for a single function.
type FunctionResult struct {
	Name       string      `json:"name"`
	Span       models.Span `json:"span"`
	TopLevel   bool        `json:"top_level,omitempty"`
	FunctionID int         `json:"function_id"`
	Metrics    Metrics     `json:"metrics"`
}

// FileResult represents aggregated complexity for a file. The module-level
// pseudo function is listed in Functions but left out of every aggregate.
type FileResult struct {
	Functions       []FunctionResult `json:"functions"`
	FunctionCount   int              `json:"function_count"`
	TotalLines      int              `json:"total_lines"`
	TotalCyclomatic uint32           `json:"total_cyclomatic"`
	TotalCognitive  uint32           `json:"total_cognitive"`
	AvgCyclomatic   float64          `json:"avg_cyclomatic"`
	AvgCognitive    float64          `json:"avg_cognitive"`
	MaxCyclomatic   uint32           `json:"max_cyclomatic"`
	MaxCognitive    uint32           `json:"max_cognitive"`
	P90Cyclomatic   float64          `json:"p90_cyclomatic"`
}

// Weights is the cognitive complexity policy table. Each branching
// construct adds its base weight plus Nesting times its depth.
type Weights struct {
	If      int `json:"if" koanf:"if" toml:"if" yaml:"if"`
	Loop    int `json:"loop" koanf:"loop" toml:"loop" yaml:"loop"`
	Switch  int `json:"switch" koanf:"switch" toml:"switch" yaml:"switch"`
	Catch   int `json:"catch" koanf:"catch" toml:"catch" yaml:"catch"`
	Ternary int `json:"ternary" koanf:"ternary" toml:"ternary" yaml:"ternary"`
	Else    int `json:"else" koanf:"else" toml:"else" yaml:"else"`
	Logical int `json:"logical" koanf:"logical" toml:"logical" yaml:"logical"`
	Nesting int `json:"nesting" koanf:"nesting" toml:"nesting" yaml:"nesting"`
	Jump    int `json:"jump" koanf:"jump" toml:"jump" yaml:"jump"`
}

// DefaultWeights returns a weight of one for every construct.
func DefaultWeights() Weights {
	return Weights{
		If:      1,
		Loop:    1,
		Switch:  1,
		Catch:   1,
		Ternary: 1,
		Else:    1,
		Logical: 1,
		Nesting: 1,
		Jump:    1,
	}
}

// ExceedsComplexity returns true if either complexity score is over its limit.
func (m *Metrics) ExceedsComplexity(t models.Thresholds) bool {
	return m.Cyclomatic > t.MaxCyclomatic || m.Cognitive > t.MaxCognitive
}
