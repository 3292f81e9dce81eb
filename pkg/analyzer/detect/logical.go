package detect

import (
	"fmt"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Logical reports control flow and conditions that cannot do what the code
// appears to intend.
type Logical struct{}

func (Logical) Name() string           { return "logical" }
func (Logical) Type() models.IssueType { return models.IssueLogical }

// Detect runs the graph checks first, then the condition checks in source
// order.
func (d Logical) Detect(ctx *Context) []models.Issue {
	c := newCollector(d.Type(), ctx.Source)

	// Phase 1: unreachable regions and loops that never exit
	for _, g := range ctx.Graphs {
		for _, id := range g.UnreachableRegions() {
			n := g.Node(id)
			c.add(models.SeverityWarning, models.CategoryUnreachable, n.Span, graphFunction(g),
				"unreachable code: no path from the start of %s reaches this statement", scopeLabel(graphFunction(g)))
		}
		for _, id := range g.InfiniteLoops {
			n := g.Node(id)
			c.add(models.SeverityWarning, models.CategoryInfiniteLoop, n.Span, graphFunction(g),
				"possible infinite loop: the loop has no reachable exit")
		}
	}

	// Phase 2: conditions
	inspect(ctx.Tree, func(n *syntax.Node) bool {
		switch n.Kind() {
		case syntax.KindIf, syntax.KindElseIf, syntax.KindTernary:
			cond := n.ChildByField("condition")
			d.condition(c, ctx, n, cond, false)
			d.identicalBranches(c, ctx, n)
		case syntax.KindLoop:
			if n.Attr(syntax.AttrLoopKind) != syntax.LoopForEach {
				d.condition(c, ctx, n, n.ChildByField("condition"), true)
			}
		case syntax.KindBinary:
			d.selfComparison(c, ctx, n)
		}
		return true
	})
	return c.result()
}

func scopeLabel(fn string) string {
	if fn == "" {
		return "the module"
	}
	return fmt.Sprintf("function %q", fn)
}

// condition checks one controlling expression. Loops are only flagged when
// constant false: constant-true loops are reported as infinite when they
// never exit.
func (Logical) condition(c *collector, ctx *Context, owner, cond *syntax.Node, loop bool) {
	if cond == nil {
		return
	}
	if cond.Kind() == syntax.KindStatement {
		kids := cond.Children()
		if len(kids) == 0 {
			return
		}
		cond = kids[0]
	}
	fn := enclosing(ctx.Tree, owner)

	if cond.Kind() == syntax.KindAssignment && cond.Attr(syntax.AttrOperator) == "=" {
		c.add(models.SeverityWarning, models.CategoryAssignInCond, cond.Span(), fn,
			"assignment used as a condition; did you mean to compare with ==?")
		return
	}

	v, ok := syntax.Truth(cond)
	if !ok {
		return
	}
	if loop {
		if !v && owner.Attr(syntax.AttrLoopKind) != syntax.LoopDo {
			c.add(models.SeverityWarning, models.CategoryConstantCond, cond.Span(), fn,
				"loop condition is always false; the body never runs")
		}
		return
	}
	c.add(models.SeverityWarning, models.CategoryConstantCond, cond.Span(), fn,
		"condition is always %t", v)
}

// identicalBranches flags an if/else or ternary whose two branches are
// structurally the same. Chains with elseif arms are left alone.
func (Logical) identicalBranches(c *collector, ctx *Context, n *syntax.Node) {
	then := n.ChildByField("consequence")
	alts := n.ChildrenByField("alternative")
	if then == nil || len(alts) != 1 {
		return
	}
	alt := alts[0]
	switch alt.Kind() {
	case syntax.KindElseIf, syntax.KindIf:
		return
	case syntax.KindElse:
		body := alt.ChildByField("body")
		if body == nil {
			kids := branchStatements(alt)
			if len(kids) != 1 {
				return
			}
			body = kids[0]
		}
		if body.Kind() == syntax.KindIf {
			return
		}
		alt = body
	}

	a, b := branchStatements(then), branchStatements(alt)
	if syntax.HashSequence(a) != syntax.HashSequence(b) || !syntax.EqualSequence(a, b) {
		return
	}
	what := "if/else"
	if n.Kind() == syntax.KindTernary {
		what = "conditional expression"
	}
	c.add(models.SeverityWarning, models.CategoryIdentical, n.Span(), enclosing(ctx.Tree, n),
		"both branches of this %s are identical", what)
}

// branchStatements unwraps a block into its statements.
func branchStatements(n *syntax.Node) []*syntax.Node {
	if n.Kind() != syntax.KindBlock && n.Kind() != syntax.KindElse {
		return []*syntax.Node{n}
	}
	var out []*syntax.Node
	for _, ch := range n.Children() {
		if ch.Kind() != syntax.KindComment {
			out = append(out, ch)
		}
	}
	return out
}

func (Logical) selfComparison(c *collector, ctx *Context, n *syntax.Node) {
	if !syntax.IsComparisonOp(n.Attr(syntax.AttrOperator)) {
		return
	}
	left, right, ok := operands(n)
	if !ok || left.Kind() == syntax.KindLiteral || !syntax.Equal(left, right) {
		return
	}
	c.add(models.SeverityInfo, models.CategorySelfComparison, n.Span(), enclosing(ctx.Tree, n),
		"%q is compared with itself", ctx.Tree.Text(left))
}
