// Package complexity computes per-function complexity metrics from syntax
// trees and their control-flow graphs.
package complexity

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/cfg"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Calculate computes metrics for every graph of tree. It has no side
// effects and returns the same result for the same inputs.
func Calculate(tree *syntax.Tree, graphs []*cfg.Graph, w Weights) *FileResult {
	fc := &FileResult{Functions: make([]FunctionResult, 0, len(graphs))}
	if tree == nil || tree.Root() == nil {
		return fc
	}
	lines := newLineCounter(tree)

	var cyc, cog []float64
	for _, g := range graphs {
		fn := tree.Node(g.FunctionID)
		if fn == nil {
			continue
		}
		fr := FunctionResult{
			Name:       g.Name,
			Span:       g.Span,
			TopLevel:   g.TopLevel,
			FunctionID: g.FunctionID,
			Metrics: Metrics{
				Cyclomatic: Cyclomatic(g),
				Cognitive:  Cognitive(fn, w),
				MaxNesting: MaxNesting(fn),
				Lines:      lines.count(fn),
				Parameters: Parameters(fn),
			},
		}
		fc.Functions = append(fc.Functions, fr)
		if g.TopLevel {
			fc.TotalLines = fr.Metrics.Lines
			continue
		}

		fc.FunctionCount++
		fc.TotalCyclomatic += fr.Metrics.Cyclomatic
		fc.TotalCognitive += fr.Metrics.Cognitive
		fc.MaxCyclomatic = max(fc.MaxCyclomatic, fr.Metrics.Cyclomatic)
		fc.MaxCognitive = max(fc.MaxCognitive, fr.Metrics.Cognitive)
		cyc = append(cyc, float64(fr.Metrics.Cyclomatic))
		cog = append(cog, float64(fr.Metrics.Cognitive))
	}

	if len(cyc) > 0 {
		fc.AvgCyclomatic = stat.Mean(cyc, nil)
		fc.AvgCognitive = stat.Mean(cog, nil)
		slices.Sort(cyc)
		fc.P90Cyclomatic = stat.Quantile(0.9, stat.Empirical, cyc, nil)
	}
	return fc
}

// Cyclomatic returns E - N + 2 over the reachable part of g, never less
// than one.
func Cyclomatic(g *cfg.Graph) uint32 {
	v := g.ReachableEdges() - g.ReachableCount() + 2
	if v < 1 {
		return 1
	}
	return uint32(v)
}

// Cognitive computes cognitive complexity with nesting penalties. The
// program node is scored without descending into its functions.
func Cognitive(fn *syntax.Node, w Weights) uint32 {
	c := cognitive{w: w, module: fn.Kind() == syntax.KindProgram}
	c.walk(fn, 0)
	if c.score < 0 {
		return 0
	}
	return uint32(c.score)
}

type cognitive struct {
	w      Weights
	module bool
	score  int
}

func (c *cognitive) nested(base, depth int) {
	c.score += base + c.w.Nesting*depth
}

// walk scores the children of n at the given depth.
func (c *cognitive) walk(n *syntax.Node, depth int) {
	for _, ch := range n.Children() {
		c.node(ch, depth)
	}
}

func (c *cognitive) node(n *syntax.Node, depth int) {
	switch n.Kind() {
	case syntax.KindIf:
		c.nested(c.w.If, depth)
		c.ifChain(n, depth)
	case syntax.KindLoop:
		c.nested(c.w.Loop, depth)
		c.walk(n, depth+1)
	case syntax.KindSwitch:
		c.nested(c.w.Switch, depth)
		c.walk(n, depth+1)
	case syntax.KindCatch:
		c.nested(c.w.Catch, depth)
		c.walk(n, depth+1)
	case syntax.KindTernary:
		c.nested(c.w.Ternary, depth)
		c.walk(n, depth+1)
	case syntax.KindBreak, syntax.KindContinue:
		c.score += c.w.Jump
	case syntax.KindFunction:
		if !c.module {
			c.walk(n, depth+1)
		}
	case syntax.KindBinary:
		if syntax.IsLogicalOp(n.Attr(syntax.AttrOperator)) {
			c.logical(n, depth)
			return
		}
		c.walk(n, depth)
	default:
		c.walk(n, depth)
	}
}

// ifChain scores the parts of an if whose own increment has been counted.
// else and elseif branches add a flat increment and stay at the if's depth.
func (c *cognitive) ifChain(n *syntax.Node, depth int) {
	for _, ch := range n.Children() {
		if ch.Field() != "alternative" {
			if ch.Field() == "consequence" {
				c.node(ch, depth+1)
			} else {
				c.node(ch, depth)
			}
			continue
		}
		c.score += c.w.Else
		switch ch.Kind() {
		case syntax.KindIf:
			c.ifChain(ch, depth)
		case syntax.KindElseIf:
			c.ifChain(ch, depth)
		case syntax.KindElse:
			if inner := soleIf(ch); inner != nil {
				c.ifChain(inner, depth)
			} else {
				c.walk(ch, depth+1)
			}
		default:
			c.node(ch, depth+1)
		}
	}
}

// soleIf returns the if statement an else clause consists of, if any.
func soleIf(e *syntax.Node) *syntax.Node {
	var only *syntax.Node
	for _, ch := range e.Children() {
		if ch.Kind() == syntax.KindComment {
			continue
		}
		if only != nil {
			return nil
		}
		only = ch
	}
	if only != nil && only.Kind() == syntax.KindIf {
		return only
	}
	return nil
}

// logical scores a chain of boolean operators once per change of operator
// and then scores the operands.
func (c *cognitive) logical(n *syntax.Node, depth int) {
	var ops []string
	var operands []*syntax.Node
	var flatten func(*syntax.Node)
	flatten = func(x *syntax.Node) {
		op := x.Attr(syntax.AttrOperator)
		if x.Kind() != syntax.KindBinary || !syntax.IsLogicalOp(op) {
			operands = append(operands, x)
			return
		}
		kids := significant(x)
		if len(kids) != 2 {
			operands = append(operands, kids...)
			return
		}
		flatten(kids[0])
		ops = append(ops, op)
		flatten(kids[1])
	}
	flatten(n)

	for i, op := range ops {
		if i == 0 || op != ops[i-1] {
			c.score += c.w.Logical
		}
	}
	for _, o := range operands {
		c.node(o, depth)
	}
}

func significant(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, ch := range n.Children() {
		if ch.Kind() != syntax.KindComment {
			out = append(out, ch)
		}
	}
	return out
}

// MaxNesting returns the deepest nesting of branching constructs inside fn.
// Nested functions are measured on their own, and an else-if chain counts
// as one level.
func MaxNesting(fn *syntax.Node) int {
	return nesting(fn, 0)
}

func nesting(n *syntax.Node, depth int) int {
	deepest := depth
	for _, ch := range n.Children() {
		if ch.Kind() == syntax.KindFunction {
			continue
		}
		d := depth
		if ch.Kind().IsBranch() && !chained(n, ch) {
			d++
		}
		deepest = max(deepest, nesting(ch, d))
	}
	return deepest
}

// chained reports whether ch continues parent's else-if chain.
func chained(parent, ch *syntax.Node) bool {
	if ch.Kind() != syntax.KindIf {
		return false
	}
	if parent.Kind() == syntax.KindElse {
		return soleIf(parent) == ch
	}
	return parent.Kind() == syntax.KindIf && ch.Field() == "alternative"
}

// Parameters counts the declared parameters of fn.
func Parameters(fn *syntax.Node) int {
	params := fn.ChildByField("parameters")
	if params == nil {
		return 0
	}
	if params.Kind() == syntax.KindIdentifier {
		return 1
	}
	n := 0
	for _, p := range params.Children() {
		if p.Kind() == syntax.KindComment {
			continue
		}
		if names := p.ChildrenByField("name"); len(names) > 1 {
			n += len(names)
			continue
		}
		n++
	}
	return n
}

// lineCounter counts non-blank lines with code outside comments.
type lineCounter struct {
	source  []byte
	comment []bool // per byte: inside a comment
}

func newLineCounter(tree *syntax.Tree) *lineCounter {
	lc := &lineCounter{source: tree.Source(), comment: make([]bool, len(tree.Source()))}
	syntax.Walk(tree.Root(), func(n *syntax.Node) bool {
		if n.Kind() == syntax.KindComment {
			sp := n.Span()
			for i := max(sp.Start.Offset, 0); i < sp.End.Offset && i < len(lc.comment); i++ {
				lc.comment[i] = true
			}
			return false
		}
		return true
	})
	return lc
}

func (lc *lineCounter) count(n *syntax.Node) int {
	sp := n.Span()
	start, end := max(sp.Start.Offset, 0), min(sp.End.Offset, len(lc.source))
	lines := 0
	code := false
	for i := start; i < end; i++ {
		b := lc.source[i]
		if b == '\n' {
			if code {
				lines++
			}
			code = false
			continue
		}
		if !lc.comment[i] && b != ' ' && b != '\t' && b != '\r' {
			code = true
		}
	}
	if code {
		lines++
	}
	return lines
}
