package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Hook annotates a grammar node before it is converted. Hooks run in
// preorder, so a hook may annotate any descendant of n.
type Hook func(a *Annotator, n *sitter.Node, source []byte)

// Grammar describes how one tree-sitter grammar maps onto the normalized
// syntax tree.
type Grammar struct {
	Name     string
	Language *sitter.Language

	// Kinds maps grammar node types to normalized kinds. Unlisted named
	// nodes become syntax.KindOther.
	Kinds map[string]syntax.Kind
	// Transparent node types are replaced by their children.
	Transparent map[string]bool
	// Scopes maps scope-introducing node types to a scope kind.
	Scopes map[string]string
	// Literals maps literal node types to a literal class.
	Literals map[string]string
	// Fields renames grammar field names per node type.
	Fields map[string]map[string]string
	// Positional names the named children of node types whose grammar
	// declares no fields.
	Positional map[string][]string
	// Hooks attach bindings and flags per node type.
	Hooks map[string]Hook

	// Builtins are names resolved by the runtime rather than by declarations.
	Builtins map[string]bool
	// Idiomatic are short names conventional enough to be exempt from the
	// identifier length check.
	Idiomatic map[string]bool
	// SwitchFallthrough is set when switch cases fall into the next case
	// unless they end in a jump.
	SwitchFallthrough bool
}

// KindOf returns the normalized kind for a grammar node type.
func (g *Grammar) KindOf(typ string) syntax.Kind {
	if k, ok := g.Kinds[typ]; ok {
		return k
	}
	if _, ok := g.Literals[typ]; ok {
		return syntax.KindLiteral
	}
	return syntax.KindOther
}

// Set builds a lookup set from names.
func Set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// Annotator collects attributes and field overrides for grammar nodes that
// have not been converted yet.
type Annotator struct {
	attrs  map[nodeKey]map[string]string
	fields map[nodeKey]string
}

func newAnnotator() *Annotator {
	return &Annotator{
		attrs:  make(map[nodeKey]map[string]string),
		fields: make(map[nodeKey]string),
	}
}

// Set records an attribute for n.
func (a *Annotator) Set(n *sitter.Node, key, value string) {
	if n == nil {
		return
	}
	k := keyOf(n)
	m := a.attrs[k]
	if m == nil {
		m = make(map[string]string)
		a.attrs[k] = m
	}
	m[key] = value
}

// Flag records a boolean attribute for n.
func (a *Annotator) Flag(n *sitter.Node, key string) {
	a.Set(n, key, "true")
}

// Get returns a previously recorded attribute.
func (a *Annotator) Get(n *sitter.Node, key string) string {
	if n == nil {
		return ""
	}
	return a.attrs[keyOf(n)][key]
}

// Bind marks n as declaring a symbol of the given kind. An existing binding
// is kept so that enclosing constructs can refine the kind first.
func (a *Annotator) Bind(n *sitter.Node, kind string) {
	if n == nil || a.Get(n, syntax.AttrBinding) != "" {
		return
	}
	a.Set(n, syntax.AttrBinding, kind)
}

// SetField overrides the field name n will carry in the converted tree.
func (a *Annotator) SetField(n *sitter.Node, field string) {
	if n == nil {
		return
	}
	a.fields[keyOf(n)] = field
}
