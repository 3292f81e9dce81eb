package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/parser"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// declare records a binding on an identifier-like node.
func declare(a *parser.Annotator, n *sitter.Node, kind, hoist string) {
	if n == nil {
		return
	}
	a.Bind(n, kind)
	if hoist != "" {
		a.Set(n, syntax.AttrHoist, hoist)
	}
}

// declareOuter records a function or class name, which belongs to the scope
// enclosing the construct it names.
func declareOuter(a *parser.Annotator, n *sitter.Node, kind, hoist string) {
	declare(a, n, kind, hoist)
	a.Flag(n, syntax.AttrOuter)
}

func field(n *sitter.Node, name string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

func typeLabel(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(parser.GetNodeText(n, source), ":"))
}

func parentType(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if p := n.Parent(); p != nil {
		return p.Type()
	}
	return ""
}

// eachIdentifier applies fn to every node of the given identifier types
// inside n, without entering nested scopes listed in stop.
func eachIdentifier(n *sitter.Node, idents, stop map[string]bool, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	if idents[n.Type()] {
		fn(n)
		return
	}
	if stop[n.Type()] {
		return
	}
	for _, ch := range parser.NamedChildren(n) {
		eachIdentifier(ch, idents, stop, fn)
	}
}

func nullLiteral(n *sitter.Node, g *parser.Grammar) bool {
	return n != nil && g.Literals[n.Type()] == syntax.LiteralNull
}
