package syntax

import (
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// Node is one element of a normalized syntax tree. Nodes are immutable once
// their tree has been built; accessors hand out copies where mutation would
// otherwise leak.
type Node struct {
	id       int
	kind     Kind
	typ      string
	field    string
	span     models.Span
	text     string
	attrs    map[string]string
	children []*Node
}

// NodeSpec carries the values used to construct a Node.
type NodeSpec struct {
	Kind     Kind
	Type     string
	Field    string
	Span     models.Span
	Text     string
	Attrs    map[string]string
	Children []*Node
}

// NewNode constructs a node. Attrs and Children are copied.
func NewNode(s NodeSpec) *Node {
	n := &Node{
		id:    -1,
		kind:  s.Kind,
		typ:   s.Type,
		field: s.Field,
		span:  s.Span,
		text:  s.Text,
	}
	if len(s.Attrs) > 0 {
		n.attrs = make(map[string]string, len(s.Attrs))
		for k, v := range s.Attrs {
			n.attrs[k] = v
		}
	}
	if len(s.Children) > 0 {
		n.children = append([]*Node(nil), s.Children...)
	}
	return n
}

// ID is the preorder index of the node in its tree, or -1 before the tree
// is assembled.
func (n *Node) ID() int { return n.id }

// Kind returns the normalized kind.
func (n *Node) Kind() Kind { return n.kind }

// Type returns the grammar's node type.
func (n *Node) Type() string { return n.typ }

// Field returns the role this node plays in its parent, or "".
func (n *Node) Field() string { return n.field }

// Span returns the source range of the node.
func (n *Node) Span() models.Span { return n.span }

// Text returns leaf text for identifiers, literals and other leaves.
func (n *Node) Text() string { return n.text }

// Attrs returns the node's attributes.
func (n *Node) Attrs() Attrs { return Attrs{m: n.attrs} }

// Attr is shorthand for Attrs().String(key).
func (n *Node) Attr(key string) string { return n.attrs[key] }

// Flag is shorthand for Attrs().Bool(key).
func (n *Node) Flag(key string) bool { return n.attrs[key] == "true" }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ChildByField returns the first child playing the given role.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.children {
		if c.field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child playing the given role.
func (n *Node) ChildrenByField(field string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.field == field {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenOfKind returns the children with the given kind.
func (n *Node) ChildrenOfKind(k Kind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Name returns the declared or function name: the name attribute when set,
// otherwise the text of the "name" child, otherwise the node text.
func (n *Node) Name() string {
	if v, ok := n.attrs[AttrName]; ok {
		return v
	}
	if c := n.ChildByField("name"); c != nil {
		return c.text
	}
	return n.text
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Walk visits n and its descendants in preorder. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c, fn)
	}
}

// Find returns every node under n (inclusive) matching pred, in preorder.
func Find(n *Node, pred func(*Node) bool) []*Node {
	var out []*Node
	Walk(n, func(x *Node) bool {
		if pred(x) {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Identifiers returns the identifier nodes under n without descending into
// nested functions.
func Identifiers(n *Node) []*Node {
	var out []*Node
	Walk(n, func(x *Node) bool {
		if x != n && x.kind == KindFunction {
			return false
		}
		if x.kind == KindIdentifier {
			out = append(out, x)
		}
		return true
	})
	return out
}
