// Package symbols resolves declarations and uses into a scoped symbol table.
package symbols

import (
	"fmt"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Options configures symbol resolution.
type Options struct {
	// Builtins are names that resolve without a declaration.
	Builtins map[string]bool
}

type builder struct {
	tree  *syntax.Tree
	opts  Options
	table *Table

	stack    []int            // open scope indexes, innermost last
	names    []map[string]int // per scope: name -> symbol index
	funcCtx  []int            // per scope: nearest function or module scope
	declared map[int]int      // declaring node ID -> symbol index
	redecl   map[int]int      // repeated declaration node ID -> symbol index
}

// Build walks tree once and returns its symbol table. Entering a scope first
// registers the declarations that scope owns, so every use binds to the
// innermost visible declaration even when the declaration comes later in
// the source. A non-nil error is always an *analyzer.InvariantError.
func Build(tree *syntax.Tree, opts Options) (table *Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = analyzer.Invariantf(analyzer.StageSymbols, "panic: %v", r)
		}
	}()

	b := &builder{
		tree:     tree,
		opts:     opts,
		table:    &Table{index: make(map[ScopeID]int)},
		declared: make(map[int]int),
		redecl:   make(map[int]int),
	}
	if root := tree.Root(); root != nil {
		b.visit(root)
	}
	if err := b.table.Validate(); err != nil {
		return nil, err
	}
	return b.table, nil
}

func (b *builder) visit(n *syntax.Node) {
	kind := n.Attr(syntax.AttrScope)
	if kind == "" && n == b.tree.Root() {
		kind = syntax.ScopeModule
	}
	if kind != "" {
		b.push(n, kind)
		b.prescan(n)
		defer b.pop()
	}

	b.use(n)
	for i := range n.ChildCount() {
		b.visit(n.Child(i))
	}
}

func (b *builder) push(n *syntax.Node, kind string) {
	idx := len(b.table.Scopes)
	sc := Scope{
		ID:     ScopeID(fmt.Sprintf("s%d", idx)),
		Kind:   kind,
		Span:   n.Span(),
		NodeID: n.ID(),
	}
	ctx := idx
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1]
		sc.Parent = b.table.Scopes[parent].ID
		if kind != syntax.ScopeFunction && kind != syntax.ScopeModule {
			ctx = b.funcCtx[parent]
		}
	}
	b.table.Scopes = append(b.table.Scopes, sc)
	b.table.index[sc.ID] = idx
	b.names = append(b.names, make(map[string]int))
	b.funcCtx = append(b.funcCtx, ctx)
	b.stack = append(b.stack, idx)
}

func (b *builder) pop() {
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *builder) top() int {
	return b.stack[len(b.stack)-1]
}

// prescan registers every declaration owned by scope node s.
func (b *builder) prescan(s *syntax.Node) {
	scope := b.top()
	var walk func(n *syntax.Node)
	walk = func(n *syntax.Node) {
		for i := range n.ChildCount() {
			c := n.Child(i)
			if c.Attr(syntax.AttrBinding) != "" && b.owner(c) == s {
				b.declare(scope, c)
			}
			switch c.Attr(syntax.AttrScope) {
			case syntax.ScopeFunction, syntax.ScopeClass, syntax.ScopeModule:
				// Nested functions and classes keep their bodies; only a
				// name bound outward can belong to s.
				for j := range c.ChildCount() {
					g := c.Child(j)
					if g.Attr(syntax.AttrBinding) != "" && b.owner(g) == s {
						b.declare(scope, g)
					}
				}
				continue
			}
			walk(c)
		}
	}
	walk(s)
}

// owner returns the scope node a binding belongs to.
func (b *builder) owner(n *syntax.Node) *syntax.Node {
	start := b.tree.Parent(n)
	if n.Flag(syntax.AttrOuter) && start != nil && start.Attr(syntax.AttrScope) != "" {
		start = b.tree.Parent(start)
	}
	hoist := n.Attr(syntax.AttrHoist) == syntax.HoistFunction
	for p := start; p != nil; p = b.tree.Parent(p) {
		kind := p.Attr(syntax.AttrScope)
		if kind == "" && p == b.tree.Root() {
			kind = syntax.ScopeModule
		}
		if kind == "" {
			continue
		}
		if hoist && kind != syntax.ScopeFunction && kind != syntax.ScopeModule {
			continue
		}
		return p
	}
	return b.tree.Root()
}

func (b *builder) declare(scope int, n *syntax.Node) {
	if _, done := b.declared[n.ID()]; done {
		return
	}
	if _, done := b.redecl[n.ID()]; done {
		return
	}
	name := n.Name()
	if name == "" || name == "_" {
		return
	}
	if existing, ok := b.names[scope][name]; ok {
		b.redecl[n.ID()] = existing
		return
	}
	idx := len(b.table.Symbols)
	b.table.Symbols = append(b.table.Symbols, Symbol{
		ID:           idx,
		Name:         name,
		Kind:         n.Attr(syntax.AttrBinding),
		DeclaredType: n.Attr(syntax.AttrDeclType),
		Scope:        b.table.Scopes[scope].ID,
		Declaration:  n.Span(),
		NodeID:       n.ID(),
		Hoisted:      n.Attr(syntax.AttrHoist) != "",
		NullInit:     n.Flag(syntax.AttrNullInit),
	})
	b.table.Scopes[scope].Symbols = append(b.table.Scopes[scope].Symbols, idx)
	b.names[scope][name] = idx
	b.declared[n.ID()] = idx
}

func (b *builder) use(n *syntax.Node) {
	if _, ok := b.declared[n.ID()]; ok {
		return
	}
	ref := Reference{
		Name:     n.Name(),
		Span:     n.Span(),
		Scope:    b.table.Scopes[b.top()].ID,
		Write:    n.Flag(syntax.AttrWrite),
		Receiver: n.Flag(syntax.AttrReceiver),
		NodeID:   n.ID(),
	}
	if idx, ok := b.redecl[n.ID()]; ok {
		ref.Write = true
		b.addRef(idx, ref)
		return
	}
	if n.Kind() != syntax.KindIdentifier || n.Attr(syntax.AttrBinding) != "" || n.Flag(syntax.AttrNoRef) {
		return
	}
	if ref.Name == "" || ref.Name == "_" {
		return
	}

	for i := len(b.stack) - 1; i >= 0; i-- {
		sc := b.stack[i]
		if i != len(b.stack)-1 && b.table.Scopes[sc].Kind == syntax.ScopeClass {
			continue
		}
		if idx, ok := b.names[sc][ref.Name]; ok {
			b.addRef(idx, ref)
			b.checkForward(idx, ref)
			return
		}
	}
	if b.opts.Builtins[ref.Name] {
		return
	}
	b.table.Unresolved = append(b.table.Unresolved, ref)
}

func (b *builder) addRef(idx int, ref Reference) {
	sym := &b.table.Symbols[idx]
	sym.References = append(sym.References, ref)
}

func (b *builder) checkForward(idx int, ref Reference) {
	sym := b.table.Symbols[idx]
	if sym.Hoisted || ref.Span.Start.Offset >= sym.Declaration.Start.Offset {
		return
	}
	declScope := b.table.index[sym.Scope]
	if b.funcCtx[declScope] != b.funcCtx[b.top()] {
		return
	}
	b.table.Forward = append(b.table.Forward, ForwardUse{Symbol: idx, Reference: ref})
}

// Validate checks that every reference lies in its symbol's declaring scope
// or one nested inside it.
func (t *Table) Validate() error {
	for _, sym := range t.Symbols {
		for _, ref := range sym.References {
			if !t.IsDescendant(ref.Scope, sym.Scope) {
				return analyzer.Invariantf(analyzer.StageSymbols,
					"reference to %q at %d:%d in scope %s escapes declaring scope %s",
					sym.Name, ref.Span.Start.Line, ref.Span.Start.Column, ref.Scope, sym.Scope)
			}
		}
	}
	return nil
}
