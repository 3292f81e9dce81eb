package syntax

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// Tree is an assembled syntax tree. It owns its nodes and the source they
// were parsed from.
type Tree struct {
	root     *Node
	language string
	source   []byte
	nodes    []*Node
	parents  []int
}

// NewTree assembles root into a tree, assigning preorder IDs and building
// the parent index. Nodes must not be shared between trees.
func NewTree(root *Node, language string, source []byte) *Tree {
	t := &Tree{
		root:     root,
		language: language,
		source:   append([]byte(nil), source...),
	}
	if root == nil {
		return t
	}
	var index func(n *Node, parent int)
	index = func(n *Node, parent int) {
		n.id = len(t.nodes)
		t.nodes = append(t.nodes, n)
		t.parents = append(t.parents, parent)
		for _, c := range n.children {
			index(c, n.id)
		}
	}
	index(root, -1)
	return t
}

// Root returns the root node, or nil for a tree with no root.
func (t *Tree) Root() *Node { return t.root }

// Language returns the language the tree was parsed as.
func (t *Tree) Language() string { return t.language }

// Source returns the source bytes. Callers must not modify them.
func (t *Tree) Source() []byte { return t.source }

// Empty reports whether the tree has no statements.
func (t *Tree) Empty() bool {
	return t.root == nil || len(t.root.children) == 0
}

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Node returns the node with the given ID or nil.
func (t *Tree) Node(id int) *Node {
	if id < 0 || id >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Parent returns the parent of n, or nil for the root.
func (t *Tree) Parent(n *Node) *Node {
	if n == nil || n.id < 0 || n.id >= len(t.parents) {
		return nil
	}
	return t.Node(t.parents[n.id])
}

// Ancestors returns the ancestors of n from nearest to root.
func (t *Tree) Ancestors(n *Node) []*Node {
	var out []*Node
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		out = append(out, p)
	}
	return out
}

// EnclosingFunction returns the nearest function ancestor of n, or nil when
// n is at module level.
func (t *Tree) EnclosingFunction(n *Node) *Node {
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		if p.kind == KindFunction {
			return p
		}
	}
	return nil
}

// Text returns the source slice covered by n.
func (t *Tree) Text(n *Node) string {
	s, e := n.span.Start.Offset, n.span.End.Offset
	if s < 0 || e > len(t.source) || s > e {
		return ""
	}
	return string(t.source[s:e])
}

// Location builds an issue location for n.
func (t *Tree) Location(n *Node) models.Location {
	return models.NewLocation(n.span, t.source)
}

// AnonymousFunction names functions that declare no name.
const AnonymousFunction = "<anonymous>"

// FunctionName returns the display name of a function node.
func FunctionName(fn *Node) string {
	if name := fn.Name(); name != "" {
		return name
	}
	return AnonymousFunction
}

// Functions returns every function node in preorder.
func (t *Tree) Functions() []*Node {
	if t.root == nil {
		return nil
	}
	return Find(t.root, func(n *Node) bool { return n.kind == KindFunction })
}

type nodeJSON struct {
	ID       int         `json:"id"`
	Kind     Kind        `json:"kind"`
	Type     string      `json:"type"`
	Field    string      `json:"field,omitempty"`
	Span     models.Span `json:"span"`
	Text     string      `json:"text,omitempty"`
	Attrs    []attrJSON  `json:"attrs,omitempty"`
	Children []*Node     `json:"children,omitempty"`
}

type attrJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MarshalJSON encodes the node with attributes in key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:       n.id,
		Kind:     n.kind,
		Type:     n.typ,
		Field:    n.field,
		Span:     n.span,
		Text:     n.text,
		Children: n.children,
	}
	if len(n.attrs) > 0 {
		keys := make([]string, 0, len(n.attrs))
		for k := range n.attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Attrs = append(out.Attrs, attrJSON{Key: k, Value: n.attrs[k]})
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalJSON encodes the tree without its source.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Language  string `json:"language"`
		NodeCount int    `json:"node_count"`
		Root      *Node  `json:"root"`
	}{t.language, len(t.nodes), t.root})
}
