package models

import "fmt"

// IssueType groups issues by the detector family that produced them.
type IssueType string

const (
	IssueSyntax      IssueType = "syntax"
	IssueLogical     IssueType = "logical"
	IssueRuntimeRisk IssueType = "runtime-risk"
	IssueQuality     IssueType = "quality"
)

// IssueTypes lists every issue type in priority order.
var IssueTypes = []IssueType{IssueSyntax, IssueLogical, IssueRuntimeRisk, IssueQuality}

// Rank returns the sort weight of the type. Unknown types sort last.
func (t IssueType) Rank() int {
	for i, it := range IssueTypes {
		if it == t {
			return i
		}
	}
	return len(IssueTypes)
}

// Severity represents how serious an issue is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Severities lists every severity from most to least serious.
var Severities = []Severity{SeverityError, SeverityWarning, SeverityInfo}

// Rank returns the sort weight of the severity. Unknown severities sort last.
func (s Severity) Rank() int {
	for i, sv := range Severities {
		if sv == s {
			return i
		}
	}
	return len(Severities)
}

// AtLeast reports whether s is as serious as or more serious than o.
func (s Severity) AtLeast(o Severity) bool {
	return s.Rank() <= o.Rank()
}

// ParseSeverity converts a string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	for _, sv := range Severities {
		if string(sv) == s {
			return sv, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Category is the fine-grained label of an issue.
type Category string

const (
	CategorySyntaxError    Category = "syntax-error"
	CategoryMissingToken   Category = "missing-token"
	CategoryParseFailure   Category = "parse-failure"
	CategoryUnreachable    Category = "unreachable-code"
	CategoryInfiniteLoop   Category = "infinite-loop"
	CategoryConstantCond   Category = "constant-condition"
	CategoryIdentical      Category = "identical-branches"
	CategoryAssignInCond   Category = "assignment-in-condition"
	CategorySelfComparison Category = "self-comparison"
	CategoryUnresolved     Category = "unresolved-reference"
	CategoryUseBeforeDecl  Category = "use-before-declaration"
	CategoryUnguardedIndex Category = "unguarded-index"
	CategoryNullDeref      Category = "null-deref-risk"
	CategoryDivByZero      Category = "division-by-zero"
	CategoryHighComplexity Category = "high-complexity"
	CategoryDeepNesting    Category = "deep-nesting"
	CategoryLongFunction   Category = "long-function"
	CategoryDuplicateBlock Category = "duplicate-block"
	CategoryShortIdent     Category = "short-identifier"
)

// Issue is a single finding. Issues are values and are never modified
// once a detector returns them.
type Issue struct {
	ID       string    `json:"id"`
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Category Category  `json:"category"`
	Location Location  `json:"location"`
	Message  string    `json:"message"`
	Function string    `json:"function,omitempty"`
}

// Line returns the 1-based line the issue starts on.
func (i Issue) Line() int { return i.Location.Span.Start.Line }

// Column returns the 1-based column the issue starts on.
func (i Issue) Column() int { return i.Location.Span.Start.Column }

// Summary counts issues per type and per severity.
type Summary struct {
	Total      int               `json:"total"`
	ByType     map[IssueType]int `json:"by_type"`
	BySeverity map[Severity]int  `json:"by_severity"`
}

// Summarize builds a Summary for issues.
func Summarize(issues []Issue) Summary {
	s := Summary{
		ByType:     make(map[IssueType]int, len(IssueTypes)),
		BySeverity: make(map[Severity]int, len(Severities)),
	}
	for _, t := range IssueTypes {
		s.ByType[t] = 0
	}
	for _, sv := range Severities {
		s.BySeverity[sv] = 0
	}
	for _, iss := range issues {
		s.Total++
		s.ByType[iss.Type]++
		s.BySeverity[iss.Severity]++
	}
	return s
}
