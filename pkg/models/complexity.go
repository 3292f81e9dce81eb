package models

import "fmt"

// Thresholds is the quality policy applied by the quality detector.
type Thresholds struct {
	MaxCyclomatic          uint32 `json:"cyclomatic" koanf:"cyclomatic" toml:"cyclomatic" yaml:"cyclomatic"`
	MaxCognitive           uint32 `json:"cognitive" koanf:"cognitive" toml:"cognitive" yaml:"cognitive"`
	MaxNesting             int    `json:"max_nesting" koanf:"max_nesting" toml:"max_nesting" yaml:"max_nesting"`
	MaxFunctionLines       int    `json:"max_function_lines" koanf:"max_function_lines" toml:"max_function_lines" yaml:"max_function_lines"`
	MinIdentifierLength    int    `json:"min_identifier_length" koanf:"min_identifier_length" toml:"min_identifier_length" yaml:"min_identifier_length"`
	MinDuplicateStatements int    `json:"min_duplicate_statements" koanf:"min_duplicate_statements" toml:"min_duplicate_statements" yaml:"min_duplicate_statements"`
}

// DefaultThresholds returns sensible defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxCyclomatic:          10,
		MaxCognitive:           15,
		MaxNesting:             4,
		MaxFunctionLines:       50,
		MinIdentifierLength:    2,
		MinDuplicateStatements: 3,
	}
}

// Validate rejects thresholds no detector can apply.
func (t Thresholds) Validate() error {
	switch {
	case t.MaxCyclomatic < 1:
		return fmt.Errorf("cyclomatic threshold must be at least 1, got %d", t.MaxCyclomatic)
	case t.MaxCognitive < 1:
		return fmt.Errorf("cognitive threshold must be at least 1, got %d", t.MaxCognitive)
	case t.MaxNesting < 1:
		return fmt.Errorf("max_nesting must be at least 1, got %d", t.MaxNesting)
	case t.MaxFunctionLines < 1:
		return fmt.Errorf("max_function_lines must be at least 1, got %d", t.MaxFunctionLines)
	case t.MinIdentifierLength < 0:
		return fmt.Errorf("min_identifier_length must not be negative, got %d", t.MinIdentifierLength)
	case t.MinDuplicateStatements < 1:
		return fmt.Errorf("min_duplicate_statements must be at least 1, got %d", t.MinDuplicateStatements)
	}
	return nil
}
