// Package cfg builds per-function control-flow graphs over normalized
// syntax trees and computes reachability and loop structure on them.
package cfg

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// ModuleName names the graph of top-level statements.
const ModuleName = "<module>"

// NodeKind classifies a CFG node.
type NodeKind string

const (
	NodeEntry      NodeKind = "entry"
	NodeExit       NodeKind = "exit"
	NodeStatement  NodeKind = "statement"
	NodeCondition  NodeKind = "condition"
	NodeLoopHeader NodeKind = "loop-header"
	NodeJoin       NodeKind = "join"
)

// Synthetic reports whether the node stands for no statement of its own.
func (k NodeKind) Synthetic() bool {
	return k == NodeEntry || k == NodeExit || k == NodeJoin
}

// Label names the reason control moves along an edge.
type Label string

const (
	LabelNone         Label = ""
	LabelTrue         Label = "true"
	LabelFalse        Label = "false"
	LabelLoopEnter    Label = "loop-enter"
	LabelLoopExit     Label = "loop-exit"
	LabelLoopContinue Label = "loop-continue"
	LabelBreak        Label = "break"
	LabelReturn       Label = "return"
	LabelThrow        Label = "throw"
	LabelCase         Label = "case"
	LabelDefault      Label = "default"
	LabelException    Label = "exception"
)

// Node is one vertex of a control-flow graph.
type Node struct {
	ID          int         `json:"id"`
	Kind        NodeKind    `json:"kind"`
	SyntaxID    int         `json:"syntax_id"`
	Span        models.Span `json:"span"`
	Unreachable bool        `json:"unreachable,omitempty"`

	syntax *syntax.Node
}

// Syntax returns the syntax node the CFG node was built from.
func (n *Node) Syntax() *syntax.Node { return n.syntax }

// Edge is a directed, labeled control transfer.
type Edge struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Label Label `json:"label,omitempty"`
}

// Graph is the control-flow graph of one function, or of the module's
// top-level statements when TopLevel is set.
type Graph struct {
	Name          string      `json:"name"`
	Span          models.Span `json:"span"`
	TopLevel      bool        `json:"top_level,omitempty"`
	FunctionID    int         `json:"function_id"`
	Entry         int         `json:"entry"`
	Exits         []int       `json:"exits"`
	Nodes         []Node      `json:"nodes"`
	Edges         []Edge      `json:"edges"`
	InfiniteLoops []int       `json:"infinite_loops,omitempty"`

	succ      [][]int
	pred      [][]int
	reachable *roaring.Bitmap
	noExit    []int // loop headers built without an exit edge
}

// Node returns the node with the given ID.
func (g *Graph) Node(id int) *Node {
	if id < 0 || id >= len(g.Nodes) {
		return nil
	}
	return &g.Nodes[id]
}

// Successors returns the targets of id's outgoing edges, in edge order.
func (g *Graph) Successors(id int) []int {
	if id < 0 || id >= len(g.succ) {
		return nil
	}
	return append([]int(nil), g.succ[id]...)
}

// Predecessors returns the sources of id's incoming edges, in edge order.
func (g *Graph) Predecessors(id int) []int {
	if id < 0 || id >= len(g.pred) {
		return nil
	}
	return append([]int(nil), g.pred[id]...)
}

// Reachable reports whether id can be reached from the entry node.
func (g *Graph) Reachable(id int) bool {
	if g.reachable == nil || id < 0 {
		return false
	}
	return g.reachable.Contains(uint32(id))
}

// ReachableCount returns the number of nodes reachable from entry.
func (g *Graph) ReachableCount() int {
	if g.reachable == nil {
		return 0
	}
	return int(g.reachable.GetCardinality())
}

// ReachableEdges returns the number of edges between reachable nodes.
func (g *Graph) ReachableEdges() int {
	n := 0
	for _, e := range g.Edges {
		if g.Reachable(e.From) && g.Reachable(e.To) {
			n++
		}
	}
	return n
}

// UnreachableRegions returns the head node of every maximal unreachable
// region, ordered by ID. A head is an unreachable statement node with no
// unreachable predecessor; a dead cycle with no such node is represented by
// its lowest ID.
func (g *Graph) UnreachableRegions() []int {
	covered := roaring.New()
	var heads []int

	claim := func(head int) {
		stack := []int{head}
		covered.Add(uint32(head))
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, s := range g.succ[id] {
				if !g.Nodes[s].Unreachable || covered.Contains(uint32(s)) {
					continue
				}
				covered.Add(uint32(s))
				stack = append(stack, s)
			}
		}
	}

	for i := range g.Nodes {
		if !g.Nodes[i].Unreachable {
			continue
		}
		dead := false
		for _, p := range g.pred[i] {
			if g.Nodes[p].Unreachable {
				dead = true
				break
			}
		}
		if !dead {
			heads = append(heads, i)
			claim(i)
		}
	}
	for i := range g.Nodes {
		if g.Nodes[i].Unreachable && !covered.Contains(uint32(i)) {
			heads = append(heads, i)
			claim(i)
		}
	}

	out := heads[:0]
	for _, h := range heads {
		if !g.Nodes[h].Kind.Synthetic() {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return out
}
