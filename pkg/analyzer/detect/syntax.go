package detect

import (
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Syntax reports every parse diagnostic as an error-severity issue.
type Syntax struct{}

func (Syntax) Name() string           { return "syntax" }
func (Syntax) Type() models.IssueType { return models.IssueSyntax }

// Detect maps diagnostics one to one, keeping their exact spans.
func (d Syntax) Detect(ctx *Context) []models.Issue {
	c := newCollector(d.Type(), ctx.Source)
	for _, diag := range ctx.Diagnostics {
		c.add(models.SeverityError, diagnosticCategory(diag.Code), diag.Span, "", "%s", diag.Message)
	}
	return c.result()
}

func diagnosticCategory(code syntax.DiagnosticCode) models.Category {
	switch code {
	case syntax.DiagMissing:
		return models.CategoryMissingToken
	case syntax.DiagParseFailure:
		return models.CategoryParseFailure
	default:
		return models.CategorySyntaxError
	}
}
