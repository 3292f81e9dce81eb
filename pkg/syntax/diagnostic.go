package syntax

import (
	"fmt"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// DiagnosticCode classifies a parse diagnostic.
type DiagnosticCode string

const (
	DiagUnexpected   DiagnosticCode = "unexpected-input"
	DiagMissing      DiagnosticCode = "missing-token"
	DiagParseFailure DiagnosticCode = "parse-failure"
)

func (c DiagnosticCode) String() string { return string(c) }

// Diagnostic reports input the parser could not fully recover from.
// Diagnostics never abort analysis.
type Diagnostic struct {
	Span    models.Span    `json:"span"`
	Message string         `json:"message"`
	Code    DiagnosticCode `json:"code"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Span.Start.Line, d.Span.Start.Column, d.Message)
}
