package detect

import (
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/symbols"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// RuntimeRisk reports code that may fail when it runs. Every finding is a
// warning: these are heuristics, not proofs.
type RuntimeRisk struct{}

func (RuntimeRisk) Name() string           { return "runtime-risk" }
func (RuntimeRisk) Type() models.IssueType { return models.IssueRuntimeRisk }

func (d RuntimeRisk) Detect(ctx *Context) []models.Issue {
	c := newCollector(d.Type(), ctx.Source)
	if t := ctx.Symbols; t != nil {
		d.symbols(c, ctx, t)
	}
	d.unguardedIndexes(c, ctx)
	d.divisionByZero(c, ctx)
	return c.result()
}

func (RuntimeRisk) refFunction(ctx *Context, r symbols.Reference) string {
	if ctx.Tree == nil {
		return ""
	}
	return enclosing(ctx.Tree, ctx.Tree.Node(r.NodeID))
}

func (d RuntimeRisk) symbols(c *collector, ctx *Context, t *symbols.Table) {
	for _, r := range t.Unresolved {
		c.add(models.SeverityWarning, models.CategoryUnresolved, r.Span, d.refFunction(ctx, r),
			"%q is not defined in any enclosing scope", r.Name)
	}
	for _, f := range t.Forward {
		sym := t.Symbols[f.Symbol]
		c.add(models.SeverityWarning, models.CategoryUseBeforeDecl, f.Reference.Span, d.refFunction(ctx, f.Reference),
			"%q is used before its declaration on line %d", sym.Name, sym.Declaration.Start.Line)
	}
	for _, sym := range t.Symbols {
		if !sym.NullInit || sym.Reassigned() {
			continue
		}
		for _, r := range sym.References {
			if r.Receiver {
				c.add(models.SeverityWarning, models.CategoryNullDeref, r.Span, d.refFunction(ctx, r),
					"%q is initialised to null and never reassigned, so this member access will fail", sym.Name)
			}
		}
	}
}

// guard is a condition whose identifiers count as bounds checks for index
// expressions inside or after it.
type guard struct {
	span  models.Span
	names map[string]bool
}

// unguardedIndexes flags index expressions with a computed index when no
// enclosing or earlier condition in the same function mentions any of the
// index's identifiers.
func (d RuntimeRisk) unguardedIndexes(c *collector, ctx *Context) {
	if ctx.Tree == nil || ctx.Tree.Root() == nil {
		return
	}
	d.indexScope(c, ctx, ctx.Tree.Root())
	for _, fn := range ctx.Tree.Functions() {
		d.indexScope(c, ctx, fn)
	}
}

// indexScope checks the index expressions of one function body, not
// descending into nested functions.
func (RuntimeRisk) indexScope(c *collector, ctx *Context, scope *syntax.Node) {
	var guards []guard
	var indexes []*syntax.Node
	var visit func(n *syntax.Node)
	visit = func(n *syntax.Node) {
		for _, ch := range n.Children() {
			if ch.Kind() == syntax.KindFunction {
				continue
			}
			if g, ok := guardOf(ch); ok {
				guards = append(guards, g)
			}
			if ch.Kind() == syntax.KindIndex {
				indexes = append(indexes, ch)
			}
			visit(ch)
		}
	}
	visit(scope)

	fn := ""
	if scope.Kind() == syntax.KindFunction {
		fn = syntax.FunctionName(scope)
	}
	for _, ix := range indexes {
		index := ix.ChildByField("index")
		if index == nil || index.Kind() == syntax.KindLiteral || isNegatedLiteral(index) || isSlice(index) {
			continue
		}
		if guarded(ix, index, guards) {
			continue
		}
		c.add(models.SeverityWarning, models.CategoryUnguardedIndex, ix.Span(), fn,
			"index %q is not checked against the bounds of %q before use",
			ctx.Tree.Text(index), objectText(ctx, ix))
	}
}

func objectText(ctx *Context, ix *syntax.Node) string {
	if obj := ix.ChildByField("object"); obj != nil {
		return ctx.Tree.Text(obj)
	}
	return ctx.Tree.Text(ix)
}

// guardOf returns the condition names of a branching construct. For-each
// loops guard their loop variables and the collection they walk.
func guardOf(n *syntax.Node) (guard, bool) {
	var parts []*syntax.Node
	switch n.Kind() {
	case syntax.KindIf, syntax.KindElseIf, syntax.KindTernary, syntax.KindSwitch:
		parts = n.ChildrenByField("condition")
	case syntax.KindLoop:
		parts = n.ChildrenByField("condition")
		if n.Attr(syntax.AttrLoopKind) == syntax.LoopForEach {
			parts = append(parts, n.ChildrenByField("left")...)
			parts = append(parts, n.ChildrenByField("right")...)
		}
	default:
		return guard{}, false
	}
	g := guard{span: n.Span(), names: make(map[string]bool)}
	for _, p := range parts {
		syntax.Walk(p, func(x *syntax.Node) bool {
			if x.Kind() == syntax.KindIdentifier {
				g.names[x.Text()] = true
			}
			return x.Kind() != syntax.KindFunction
		})
	}
	return g, len(g.names) > 0
}

func guarded(ix, index *syntax.Node, guards []guard) bool {
	var names []string
	syntax.Walk(index, func(x *syntax.Node) bool {
		if x.Kind() == syntax.KindIdentifier {
			names = append(names, x.Text())
		}
		return true
	})
	at := ix.Span()
	for _, g := range guards {
		if !g.span.Contains(at) && g.span.End.Offset > at.Start.Offset {
			continue
		}
		for _, name := range names {
			if g.names[name] {
				return true
			}
		}
	}
	return false
}

func isNegatedLiteral(n *syntax.Node) bool {
	if n.Kind() != syntax.KindUnary {
		return false
	}
	kids := n.Children()
	return len(kids) == 1 && kids[0].Kind() == syntax.KindLiteral
}

// isSlice reports a slice subscript such as xs[1:n], which never raises.
func isSlice(n *syntax.Node) bool {
	return n.Type() == "slice"
}

func (RuntimeRisk) divisionByZero(c *collector, ctx *Context) {
	inspect(ctx.Tree, func(n *syntax.Node) bool {
		if n.Kind() != syntax.KindBinary && n.Kind() != syntax.KindAssignment {
			return true
		}
		op := n.Attr(syntax.AttrOperator)
		if !syntax.IsDivisionOp(op) {
			return true
		}
		if _, right, ok := operands(n); ok && syntax.IsZero(right) {
			c.add(models.SeverityWarning, models.CategoryDivByZero, n.Span(), enclosing(ctx.Tree, n),
				"division by zero: the right operand of %q is the literal 0", op)
		}
		return true
	})
}
