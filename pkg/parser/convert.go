package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

var punctuation = Set("(", ")", "[", "]", "{", "}", ",", ";", ":", ".")

type converter struct {
	g   *Grammar
	src []byte
	ann *Annotator
}

// convert turns one grammar node into normalized nodes. Transparent nodes
// expand into their children, so the result may hold several nodes.
func (c *converter) convert(n *sitter.Node, field string) []*syntax.Node {
	typ := n.Type()
	if n.IsMissing() {
		return []*syntax.Node{syntax.NewNode(syntax.NodeSpec{
			Kind:  syntax.KindMissing,
			Type:  typ,
			Field: field,
			Span:  SpanOf(n),
		})}
	}

	if h := c.g.Hooks[typ]; h != nil {
		h(c.ann, n, c.src)
	}
	key := keyOf(n)
	if f, ok := c.ann.fields[key]; ok {
		field = f
	}

	if c.g.Transparent[typ] {
		return c.children(n, field)
	}

	spec := syntax.NodeSpec{
		Kind:  c.g.KindOf(typ),
		Type:  typ,
		Field: field,
		Span:  SpanOf(n),
		Attrs: make(map[string]string),
	}
	if typ == "ERROR" {
		spec.Kind = syntax.KindError
	}
	for k, v := range c.ann.attrs[key] {
		spec.Attrs[k] = v
	}
	if class, ok := c.g.Literals[typ]; ok {
		spec.Attrs[syntax.AttrLiteral] = class
		spec.Text = GetNodeText(n, c.src)
		return []*syntax.Node{syntax.NewNode(spec)}
	}
	if scope, ok := c.g.Scopes[typ]; ok {
		spec.Attrs[syntax.AttrScope] = scope
	}

	spec.Children = c.children(n, "")
	if len(spec.Children) == 0 && (n.IsNamed() || spec.Kind == syntax.KindError) {
		spec.Text = GetNodeText(n, c.src)
	}
	switch spec.Kind {
	case syntax.KindBinary, syntax.KindUnary, syntax.KindAssignment:
		if _, ok := spec.Attrs[syntax.AttrOperator]; !ok {
			spec.Attrs[syntax.AttrOperator] = c.operator(n)
		}
	}
	return []*syntax.Node{syntax.NewNode(spec)}
}

func (c *converter) children(n *sitter.Node, inherit string) []*syntax.Node {
	var out []*syntax.Node
	positional := c.g.Positional[n.Type()]
	renames := c.g.Fields[n.Type()]
	named := 0
	for i := range int(n.ChildCount()) {
		ch := n.Child(i)
		if ch == nil || (!ch.IsNamed() && !ch.IsMissing() && ch.Type() != "ERROR") {
			continue
		}
		field := n.FieldNameForChild(i)
		if v, ok := renames[field]; ok {
			field = v
		}
		if c.g.KindOf(ch.Type()) != syntax.KindComment {
			if field == "" && named < len(positional) {
				field = positional[named]
			}
			named++
		}
		if field == "" {
			field = inherit
		}
		out = append(out, c.convert(ch, field)...)
	}
	return out
}

// operator returns the operator token of an expression node.
func (c *converter) operator(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return GetNodeText(op, c.src)
	}
	for i := range int(n.ChildCount()) {
		ch := n.Child(i)
		if ch == nil || ch.IsNamed() {
			continue
		}
		tok := GetNodeText(ch, c.src)
		if tok != "" && !punctuation[tok] {
			return tok
		}
	}
	return ""
}
