// Package prioritize orders issues so the most serious findings come first.
package prioritize

import (
	"sort"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// Prioritize returns a copy of issues sorted by severity, then issue type,
// then line and column. Issues that tie keep their input order. The input
// slice is left untouched.
func Prioritize(issues []models.Issue) []models.Issue {
	out := make([]models.Issue, len(issues))
	copy(out, issues)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// Less reports whether a sorts before b.
func Less(a, b models.Issue) bool {
	if ra, rb := a.Severity.Rank(), b.Severity.Rank(); ra != rb {
		return ra < rb
	}
	if ra, rb := a.Type.Rank(), b.Type.Rank(); ra != rb {
		return ra < rb
	}
	if a.Line() != b.Line() {
		return a.Line() < b.Line()
	}
	return a.Column() < b.Column()
}

// Filter returns the issues at least as serious as minSeverity, preserving order.
func Filter(issues []models.Issue, minSeverity models.Severity) []models.Issue {
	out := make([]models.Issue, 0, len(issues))
	for _, iss := range issues {
		if iss.Severity.AtLeast(minSeverity) {
			out = append(out, iss)
		}
	}
	return out
}
