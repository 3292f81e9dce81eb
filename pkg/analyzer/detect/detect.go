// Package detect turns the analysis artifacts of one source file into
// issues. Each detector reads a shared, read-only Context and never depends
// on the findings of another.
package detect

import (
	"fmt"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/cfg"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/complexity"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/symbols"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/parser"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Context is everything a detector may read. Any artifact may be nil or
// empty when the stage that builds it failed; detectors skip what is
// missing.
type Context struct {
	Tree        *syntax.Tree
	Source      []byte
	Diagnostics []syntax.Diagnostic
	Symbols     *symbols.Table
	Graphs      []*cfg.Graph
	Metrics     *complexity.FileResult
	Thresholds  models.Thresholds
	Grammar     *parser.Grammar
}

// Detector produces the issues of one issue type.
type Detector interface {
	Name() string
	Type() models.IssueType
	Detect(ctx *Context) []models.Issue
}

// All returns one instance of every detector in merge order.
func All() []Detector {
	return []Detector{Syntax{}, Logical{}, RuntimeRisk{}, Quality{}}
}

// collector numbers issues as they are found.
type collector struct {
	typ    models.IssueType
	source []byte
	issues []models.Issue
}

func newCollector(typ models.IssueType, source []byte) *collector {
	return &collector{typ: typ, source: source}
}

func (c *collector) add(sev models.Severity, cat models.Category, span models.Span, fn, format string, args ...any) {
	c.issues = append(c.issues, models.Issue{
		ID:       fmt.Sprintf("%s-%d", c.typ, len(c.issues)+1),
		Type:     c.typ,
		Severity: sev,
		Category: cat,
		Location: models.NewLocation(span, c.source),
		Message:  fmt.Sprintf(format, args...),
		Function: fn,
	})
}

func (c *collector) result() []models.Issue {
	if c.issues == nil {
		return []models.Issue{}
	}
	return c.issues
}

// enclosing returns the name of the function containing n, or "" at module
// level.
func enclosing(tree *syntax.Tree, n *syntax.Node) string {
	if tree == nil || n == nil {
		return ""
	}
	if fn := tree.EnclosingFunction(n); fn != nil {
		return syntax.FunctionName(fn)
	}
	return ""
}

func graphFunction(g *cfg.Graph) string {
	if g.TopLevel {
		return ""
	}
	return g.Name
}

// operands returns the two operands of a binary node.
func operands(n *syntax.Node) (left, right *syntax.Node, ok bool) {
	var kids []*syntax.Node
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindComment {
			kids = append(kids, c)
		}
	}
	if len(kids) != 2 {
		return nil, nil, false
	}
	return kids[0], kids[1], true
}

// inspect is a nil-safe syntax.Walk over the whole tree.
func inspect(tree *syntax.Tree, fn func(*syntax.Node) bool) {
	if tree == nil || tree.Root() == nil {
		return
	}
	syntax.Walk(tree.Root(), fn)
}
