package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Parser wraps tree-sitter and converts its output into normalized trees.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses source with the given grammar. Malformed input never fails:
// it yields a partial tree plus diagnostics. An error is returned only when
// ctx ends before parsing completes.
func (p *Parser) Parse(ctx context.Context, source []byte, g *Grammar) (*syntax.Tree, []syntax.Diagnostic, error) {
	p.parser.SetLanguage(g.Language)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", g.Name, ctxErr)
		}
		return nil, []syntax.Diagnostic{failure(err.Error())}, nil
	}
	if tree == nil {
		return nil, []syntax.Diagnostic{failure("parser produced no tree")}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, []syntax.Diagnostic{failure("parser produced no tree")}, nil
	}

	c := &converter{g: g, src: source, ann: newAnnotator()}
	nodes := c.convert(root, "")
	var top *syntax.Node
	switch len(nodes) {
	case 1:
		top = nodes[0]
	default:
		top = syntax.NewNode(syntax.NodeSpec{Kind: syntax.KindProgram, Type: root.Type(), Span: SpanOf(root), Children: nodes})
	}

	var diags []syntax.Diagnostic
	if root.HasError() || root.Type() == "ERROR" {
		diags = Diagnostics(root, source)
	}
	return syntax.NewTree(top, g.Name, source), diags, nil
}

func failure(msg string) syntax.Diagnostic {
	return syntax.Diagnostic{
		Span:    models.Span{Start: models.Position{Line: 1, Column: 1}, End: models.Position{Line: 1, Column: 1}},
		Message: "could not parse source: " + msg,
		Code:    syntax.DiagParseFailure,
	}
}

// Diagnostics reports the outermost ERROR nodes and every MISSING node
// under root, in source order.
func Diagnostics(root *sitter.Node, source []byte) []syntax.Diagnostic {
	var diags []syntax.Diagnostic
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch {
		case n.Type() == "ERROR":
			diags = append(diags, syntax.Diagnostic{
				Span:    SpanOf(n),
				Message: unexpectedMessage(GetNodeText(n, source)),
				Code:    syntax.DiagUnexpected,
			})
			return
		case n.IsMissing():
			diags = append(diags, syntax.Diagnostic{
				Span:    SpanOf(n),
				Message: fmt.Sprintf("missing %q", n.Type()),
				Code:    syntax.DiagMissing,
			})
			return
		}
		if !n.HasError() {
			return
		}
		for i := range int(n.ChildCount()) {
			if ch := n.Child(i); ch != nil {
				visit(ch)
			}
		}
	}
	visit(root)
	return diags
}

func unexpectedMessage(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if text == "" {
		return "unexpected end of input"
	}
	if len(text) > 20 {
		text = models.TruncateBytes(text, 20) + "..."
	}
	return fmt.Sprintf("unexpected %q", text)
}

// PositionOf converts a tree-sitter point into a 1-based position.
func PositionOf(p sitter.Point, offset uint32) models.Position {
	return models.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1, Offset: int(offset)}
}

// SpanOf returns the source span of a grammar node.
func SpanOf(n *sitter.Node) models.Span {
	return models.Span{
		Start: PositionOf(n.StartPoint(), n.StartByte()),
		End:   PositionOf(n.EndPoint(), n.EndByte()),
	}
}

// NodeVisitor is a function that visits grammar nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the grammar tree calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// NamedChildren returns the named children of n.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := range int(n.NamedChildCount()) {
		if ch := n.NamedChild(i); ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

// ChildrenByField returns every child of n stored under the grammar field.
func ChildrenByField(n *sitter.Node, field string) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := range int(n.ChildCount()) {
		if n.FieldNameForChild(i) == field {
			if ch := n.Child(i); ch != nil {
				out = append(out, ch)
			}
		}
	}
	return out
}
