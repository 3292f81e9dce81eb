package cfg

import (
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// pending is an edge waiting for its target: control leaves from with label.
type pending struct {
	from  int
	label Label
}

// target collects the jumps aimed at an enclosing loop, switch or labeled
// statement. A labeled plain statement only receives breaks naming it.
type target struct {
	loop      bool
	block     bool
	label     string
	breaks    []pending
	continues []pending
}

type builder struct {
	g       *Graph
	opts    Options
	exit    int
	targets []*target
	// label names the loop or switch about to be pushed.
	label string
}

func newBuilder(fn *syntax.Node, opts Options) *builder {
	g := &Graph{
		Span:       fn.Span(),
		FunctionID: fn.ID(),
		Entry:      0,
		Exits:      []int{},
	}
	b := &builder{g: g, opts: opts, exit: -1}
	b.add(NodeEntry, fn)
	return b
}

func (b *builder) add(kind NodeKind, n *syntax.Node) int {
	id := len(b.g.Nodes)
	node := Node{ID: id, Kind: kind, SyntaxID: -1, syntax: n}
	if n != nil {
		node.SyntaxID = n.ID()
		node.Span = n.Span()
	}
	b.g.Nodes = append(b.g.Nodes, node)
	return id
}

func (b *builder) link(from []pending, to int) {
	for _, p := range from {
		b.g.Edges = append(b.g.Edges, Edge{From: p.from, To: to, Label: p.label})
	}
}

// exitNode creates the exit node on first use.
func (b *builder) exitNode() int {
	if b.exit < 0 {
		b.exit = b.add(NodeExit, nil)
		b.g.Nodes[b.exit].Span = b.g.Span
		b.g.Exits = append(b.g.Exits, b.exit)
	}
	return b.exit
}

func (b *builder) finish(out []pending) *Graph {
	if len(out) > 0 {
		b.link(out, b.exitNode())
	}
	return b.g
}

// join merges several open paths into one synthetic node. A single path
// passes through unchanged.
func (b *builder) join(paths []pending, n *syntax.Node) []pending {
	if len(paths) < 2 {
		return paths
	}
	id := b.add(NodeJoin, n)
	b.link(paths, id)
	return []pending{{from: id}}
}

func relabel(paths []pending, label Label) []pending {
	out := make([]pending, len(paths))
	for i, p := range paths {
		if p.label == LabelNone {
			p.label = label
		}
		out[i] = p
	}
	return out
}

func statements(n *syntax.Node) []*syntax.Node {
	if n == nil {
		return nil
	}
	if k := n.Kind(); k != syntax.KindBlock && k != syntax.KindProgram {
		return []*syntax.Node{n}
	}
	var out []*syntax.Node
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindComment {
			out = append(out, c)
		}
	}
	return out
}

func (b *builder) seq(stmts []*syntax.Node, in []pending) []pending {
	for _, s := range stmts {
		in = b.stmt(s, in)
	}
	return in
}

// body builds n as a nested statement or block; a nil body passes control
// straight through.
func (b *builder) body(n *syntax.Node, in []pending) []pending {
	if n == nil {
		return in
	}
	return b.seq(statements(n), in)
}

func (b *builder) stmt(n *syntax.Node, in []pending) []pending {
	switch n.Kind() {
	case syntax.KindComment:
		return in
	case syntax.KindBlock:
		return b.seq(statements(n), in)
	case syntax.KindIf:
		return b.ifStmt(n, in)
	case syntax.KindLoop:
		return b.loop(n, in)
	case syntax.KindSwitch:
		return b.switchStmt(n, in)
	case syntax.KindTry:
		return b.try(n, in)
	case syntax.KindCompound:
		return b.compound(n, in)
	case syntax.KindReturn, syntax.KindThrow:
		id := b.add(NodeStatement, n)
		b.link(in, id)
		label := LabelReturn
		if n.Kind() == syntax.KindThrow {
			label = LabelThrow
		}
		b.link([]pending{{from: id, label: label}}, b.exitNode())
		return nil
	case syntax.KindBreak:
		id := b.add(NodeStatement, n)
		b.link(in, id)
		if t := b.jumpTarget(false, labelOf(n)); t != nil {
			t.breaks = append(t.breaks, pending{from: id, label: LabelBreak})
		}
		return nil
	case syntax.KindContinue:
		id := b.add(NodeStatement, n)
		b.link(in, id)
		if t := b.jumpTarget(true, labelOf(n)); t != nil {
			t.continues = append(t.continues, pending{from: id, label: LabelLoopContinue})
		}
		return nil
	case syntax.KindFunction:
		if hoistedDeclaration(n) {
			return in
		}
	}
	id := b.add(NodeStatement, n)
	b.link(in, id)
	return []pending{{from: id}}
}

// hoistedDeclaration reports a function declaration that is bound before
// its enclosing body runs, so its position in the statement list is not a
// point control passes through.
func hoistedDeclaration(n *syntax.Node) bool {
	name := n.ChildByField("name")
	return name != nil && name.Attr(syntax.AttrHoist) == syntax.HoistScope
}

// jumpTarget finds the construct a break or continue leaves. An unlabeled
// jump takes the innermost loop (continue) or loop or switch (break); a
// labeled one takes the construct carrying that label.
func (b *builder) jumpTarget(loop bool, label string) *target {
	for i := len(b.targets) - 1; i >= 0; i-- {
		t := b.targets[i]
		if label != "" {
			if t.label == label && (!loop || t.loop) {
				return t
			}
			continue
		}
		if !t.block && (!loop || t.loop) {
			return t
		}
	}
	return nil
}

func (b *builder) push(loop bool) *target {
	t := &target{loop: loop, label: b.label}
	b.label = ""
	b.targets = append(b.targets, t)
	return t
}

// labelOf returns the label named by a labeled statement or a jump, or "".
func labelOf(n *syntax.Node) string {
	for _, c := range n.Children() {
		if c.Field() == "label" || c.Type() == "label_name" || c.Type() == "statement_identifier" {
			return c.Text()
		}
	}
	return ""
}

func (b *builder) pop() {
	b.targets = b.targets[:len(b.targets)-1]
}

// initializer threads an "if x := f(); ..." style initializer.
func (b *builder) initializer(n *syntax.Node, in []pending) []pending {
	init := n.ChildByField("initializer")
	if init == nil {
		return in
	}
	id := b.add(NodeStatement, init)
	b.link(in, id)
	return []pending{{from: id}}
}

func (b *builder) ifStmt(n *syntax.Node, in []pending) []pending {
	in = b.initializer(n, in)
	cond := b.add(NodeCondition, n)
	b.link(in, cond)

	outs := b.body(n.ChildByField("consequence"), []pending{{from: cond, label: LabelTrue}})
	rest := []pending{{from: cond, label: LabelFalse}}

	for _, alt := range n.ChildrenByField("alternative") {
		switch alt.Kind() {
		case syntax.KindElseIf:
			c := b.add(NodeCondition, alt)
			b.link(rest, c)
			outs = append(outs, b.body(alt.ChildByField("consequence"), []pending{{from: c, label: LabelTrue}})...)
			rest = []pending{{from: c, label: LabelFalse}}
		case syntax.KindIf:
			outs = append(outs, b.ifStmt(alt, rest)...)
			rest = nil
		case syntax.KindElse:
			outs = append(outs, b.body(elseBody(alt), rest)...)
			rest = nil
		default:
			outs = append(outs, b.stmt(alt, rest)...)
			rest = nil
		}
	}
	outs = append(outs, rest...)
	return b.join(outs, n)
}

func elseBody(n *syntax.Node) *syntax.Node {
	if body := n.ChildByField("body"); body != nil {
		return body
	}
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindComment {
			return c
		}
	}
	return nil
}

// loopCondition returns the loop's controlling expression, or nil when the
// loop has none ("for (;;)", "for {}").
func loopCondition(n *syntax.Node) *syntax.Node {
	c := n.ChildByField("condition")
	if c == nil {
		return nil
	}
	if c.Kind() == syntax.KindStatement {
		for _, ch := range c.Children() {
			if ch.Kind() != syntax.KindComment {
				return ch
			}
		}
		return nil
	}
	return c
}

func (b *builder) loop(n *syntax.Node, in []pending) []pending {
	in = b.initializer(n, in)
	header := b.add(NodeLoopHeader, n)
	b.link(in, header)

	t := b.push(true)
	out := b.body(n.ChildByField("body"), []pending{{from: header, label: LabelLoopEnter}})
	back := append(out, t.continues...)
	if update := loopUpdate(n); update != nil {
		id := b.add(NodeStatement, update)
		b.link(back, id)
		back = []pending{{from: id}}
	}
	b.link(relabel(back, LabelLoopContinue), header)
	b.pop()

	var exits []pending
	if loopExits(n) {
		exits = []pending{{from: header, label: LabelLoopExit}}
	} else {
		b.g.noExit = append(b.g.noExit, header)
	}
	if alt := n.ChildByField("alternative"); alt != nil {
		exits = b.body(elseBody(alt), exits)
	}
	exits = append(exits, t.breaks...)
	return b.join(exits, n)
}

func loopUpdate(n *syntax.Node) *syntax.Node {
	if u := n.ChildByField("update"); u != nil {
		return u
	}
	return n.ChildByField("increment")
}

// loopExits reports whether the loop header can fall out of the loop on its
// own: for-each loops always can, condition loops unless the condition is
// absent or constant true.
func loopExits(n *syntax.Node) bool {
	if n.Attr(syntax.AttrLoopKind) == syntax.LoopForEach {
		return true
	}
	cond := loopCondition(n)
	if cond == nil {
		return false
	}
	v, ok := syntax.Truth(cond)
	return !ok || !v
}

func (b *builder) switchStmt(n *syntax.Node, in []pending) []pending {
	in = b.initializer(n, in)
	cond := b.add(NodeCondition, n)
	b.link(in, cond)

	t := b.push(false)
	var outs, fall []pending
	hasDefault := false
	for _, c := range n.ChildrenOfKind(syntax.KindCase) {
		label := LabelCase
		if c.Flag(syntax.AttrDefault) {
			label = LabelDefault
			hasDefault = true
		}
		body := caseBody(c)
		out := b.seq(body, append([]pending{{from: cond, label: label}}, fall...))
		if b.opts.SwitchFallthrough || endsInFallthrough(body) {
			fall = out
			continue
		}
		outs = append(outs, out...)
		fall = nil
	}
	b.pop()

	outs = append(outs, fall...)
	if !hasDefault {
		outs = append(outs, pending{from: cond, label: LabelDefault})
	}
	outs = append(outs, t.breaks...)
	return b.join(outs, n)
}

func caseBody(c *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, ch := range c.Children() {
		if ch.Kind() == syntax.KindComment {
			continue
		}
		if f := ch.Field(); f == "" || f == "body" {
			out = append(out, ch)
		}
	}
	return out
}

func endsInFallthrough(body []*syntax.Node) bool {
	return len(body) > 0 && body[len(body)-1].Flag(syntax.AttrFallthrough)
}

// clauseBody returns the statements of a catch, finally or try clause.
func clauseBody(n *syntax.Node) *syntax.Node {
	if body := n.ChildByField("body"); body != nil {
		return body
	}
	var last *syntax.Node
	for _, c := range n.Children() {
		if c.Kind() == syntax.KindBlock {
			last = c
		}
	}
	return last
}

func (b *builder) try(n *syntax.Node, in []pending) []pending {
	id := b.add(NodeStatement, n)
	b.link(in, id)

	outs := b.body(clauseBody(n), []pending{{from: id}})
	for _, c := range n.ChildrenOfKind(syntax.KindElse) {
		outs = b.body(elseBody(c), outs)
	}
	for _, c := range n.ChildrenOfKind(syntax.KindCatch) {
		h := b.add(NodeStatement, c)
		b.link([]pending{{from: id, label: LabelException}}, h)
		outs = append(outs, b.body(clauseBody(c), []pending{{from: h}})...)
	}

	finals := n.ChildrenOfKind(syntax.KindFinally)
	if len(finals) == 0 {
		return b.join(outs, n)
	}
	// finally runs on the exceptional path too; when nothing completes
	// normally it rethrows or returns, so nothing falls out of it.
	normal := len(outs) > 0
	in = append(outs, pending{from: id, label: LabelException})
	for _, f := range finals {
		in = b.body(clauseBody(f), in)
	}
	if !normal {
		return nil
	}
	return b.join(in, n)
}

func (b *builder) compound(n *syntax.Node, in []pending) []pending {
	id := b.add(NodeStatement, n)
	b.link(in, id)
	in = []pending{{from: id}}

	body := compoundBody(n)
	if body == nil {
		return in
	}
	name := labelOf(n)
	if name == "" {
		return b.stmt(body, in)
	}
	switch body.Kind() {
	case syntax.KindLoop, syntax.KindSwitch:
		b.label = name
		return b.stmt(body, in)
	}
	t := &target{block: true, label: name}
	b.targets = append(b.targets, t)
	out := b.stmt(body, in)
	b.pop()
	return b.join(append(out, t.breaks...), n)
}

// compoundBody returns the statement a labeled or with statement wraps.
func compoundBody(n *syntax.Node) *syntax.Node {
	if body := n.ChildByField("body"); body != nil {
		return body
	}
	var last *syntax.Node
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindComment && c.Field() != "label" && c.Type() != "label_name" {
			last = c
		}
	}
	if last == nil || last.Kind() == syntax.KindIdentifier {
		return nil
	}
	return last
}
