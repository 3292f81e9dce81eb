package detect

import (
	"slices"
	"unicode/utf8"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/complexity"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/symbols"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Quality reports maintainability problems measured against the configured
// thresholds.
type Quality struct{}

func (Quality) Name() string           { return "quality" }
func (Quality) Type() models.IssueType { return models.IssueQuality }

func (d Quality) Detect(ctx *Context) []models.Issue {
	c := newCollector(d.Type(), ctx.Source)

	// Phase 1: per-function metrics
	if ctx.Metrics != nil {
		for i := range ctx.Metrics.Functions {
			fr := &ctx.Metrics.Functions[i]
			if fr.TopLevel {
				continue
			}
			d.function(c, ctx, fr.Name, fr.Span, &fr.Metrics)
		}
	}

	// Phase 2: duplicated statement runs
	if ctx.Thresholds.MinDuplicateStatements > 0 {
		for _, cl := range FindClones(ctx.Tree, ctx.Thresholds.MinDuplicateStatements) {
			c.add(models.SeverityWarning, models.CategoryDuplicateBlock, cl.Copy, enclosing(ctx.Tree, cl.first),
				"these %d statements duplicate lines %d-%d", cl.Statements, cl.Original.Start.Line, cl.Original.End.Line)
		}
	}

	// Phase 3: identifier names
	if ctx.Symbols != nil && ctx.Thresholds.MinIdentifierLength > 1 {
		d.identifiers(c, ctx, ctx.Symbols)
	}
	return c.result()
}

func (Quality) function(c *collector, ctx *Context, name string, span models.Span, m *complexity.Metrics) {
	t := ctx.Thresholds
	if m.ExceedsComplexity(t) {
		c.add(models.SeverityWarning, models.CategoryHighComplexity, span, name,
			"function %q is too complex (cyclomatic %d, cognitive %d; limits %d and %d)",
			name, m.Cyclomatic, m.Cognitive, t.MaxCyclomatic, t.MaxCognitive)
	}
	if t.MaxNesting > 0 && m.MaxNesting > t.MaxNesting {
		c.add(models.SeverityWarning, models.CategoryDeepNesting, span, name,
			"function %q nests %d levels deep (limit %d)", name, m.MaxNesting, t.MaxNesting)
	}
	if t.MaxFunctionLines > 0 && m.Lines > t.MaxFunctionLines {
		c.add(models.SeverityInfo, models.CategoryLongFunction, span, name,
			"function %q has %d lines of code (limit %d)", name, m.Lines, t.MaxFunctionLines)
	}
}

// identifiers flags declared names shorter than the minimum length. Loop
// variables, catch parameters, the blank identifier and the language's
// idiomatic short names are exempt.
func (Quality) identifiers(c *collector, ctx *Context, t *symbols.Table) {
	syms := make([]*symbols.Symbol, 0, len(t.Symbols))
	for i := range t.Symbols {
		syms = append(syms, &t.Symbols[i])
	}
	slices.SortStableFunc(syms, func(a, b *symbols.Symbol) int {
		return a.Declaration.Start.Offset - b.Declaration.Start.Offset
	})

	minLen := ctx.Thresholds.MinIdentifierLength
	for _, sym := range syms {
		if utf8.RuneCountInString(sym.Name) >= minLen || exemptName(ctx, sym) {
			continue
		}
		var fn string
		if ctx.Tree != nil {
			fn = enclosing(ctx.Tree, ctx.Tree.Node(sym.NodeID))
		}
		c.add(models.SeverityInfo, models.CategoryShortIdent, sym.Declaration, fn,
			"identifier %q is shorter than %d characters", sym.Name, minLen)
	}
}

func exemptName(ctx *Context, sym *symbols.Symbol) bool {
	switch {
	case sym.Name == "_" || sym.Name == "":
		return true
	case sym.Kind == syntax.BindLoopVar || sym.Kind == syntax.BindCatchVar:
		return true
	case ctx.Grammar != nil && ctx.Grammar.Idiomatic[sym.Name]:
		return true
	}
	return false
}
