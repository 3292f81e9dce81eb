package cfg

import (
	"context"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Options configures graph construction.
type Options struct {
	// SwitchFallthrough makes every switch case fall into the next one
	// unless it ends in a jump.
	SwitchFallthrough bool
	// Workers bounds parallel per-function builds. Zero means GOMAXPROCS.
	Workers int
}

// Build returns the module graph followed by one graph per function in
// source order. A non-nil error is an *analyzer.InvariantError or the
// context's error.
func Build(ctx context.Context, tree *syntax.Tree, opts Options) ([]*Graph, error) {
	root := tree.Root()
	if root == nil {
		return nil, nil
	}
	fns := tree.Functions()
	graphs := make([]*Graph, len(fns)+1)
	errs := make([]error, len(fns)+1)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := pool.New().WithMaxGoroutines(workers)
	for i := range graphs {
		p.Go(func() {
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}
			if i == 0 {
				graphs[i], errs[i] = safeBuild(func() *Graph { return buildModule(root, opts) })
				return
			}
			fn := fns[i-1]
			graphs[i], errs[i] = safeBuild(func() *Graph { return BuildFunction(fn, opts) })
		})
	}
	p.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return graphs, nil
}

func safeBuild(build func() *Graph) (g *Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = analyzer.Invariantf(analyzer.StageCFG, "panic: %v", r)
		}
	}()
	g = build()
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// BuildFunction builds the graph of a single function node.
func BuildFunction(fn *syntax.Node, opts Options) *Graph {
	b := newBuilder(fn, opts)
	b.g.Name = syntax.FunctionName(fn)
	in := []pending{{from: b.g.Entry}}

	var out []pending
	switch body := fn.ChildByField("body"); {
	case body == nil:
		out = in
	case body.Kind() == syntax.KindBlock:
		out = b.seq(statements(body), in)
	default:
		// expression-bodied arrow or lambda
		id := b.add(NodeStatement, body)
		b.link(in, id)
		out = []pending{{from: id}}
	}
	g := b.finish(out)
	g.analyze()
	return g
}

func buildModule(root *syntax.Node, opts Options) *Graph {
	b := newBuilder(root, opts)
	b.g.Name = ModuleName
	b.g.TopLevel = true
	g := b.finish(b.seq(statements(root), []pending{{from: b.g.Entry}}))
	g.analyze()
	return g
}

// analyze fills adjacency, reachability and the infinite-loop list.
func (g *Graph) analyze() {
	g.succ = make([][]int, len(g.Nodes))
	g.pred = make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		g.succ[e.From] = append(g.succ[e.From], e.To)
		g.pred[e.To] = append(g.pred[e.To], e.From)
	}

	dg := simple.NewDirectedGraph()
	for i := range g.Nodes {
		dg.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges {
		// simple graphs reject self edges; they never change reachability
		if e.From != e.To {
			dg.SetEdge(simple.Edge{F: simple.Node(e.From), T: simple.Node(e.To)})
		}
	}

	g.reachable = roaring.New()
	g.reachable.Add(uint32(g.Entry))
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) { g.reachable.Add(uint32(n.ID())) },
	}
	bf.Walk(dg, dg.Node(int64(g.Entry)), nil)

	for i := range g.Nodes {
		g.Nodes[i].Unreachable = !g.reachable.Contains(uint32(i))
	}
	g.InfiniteLoops = g.infiniteLoops()
}

// infiniteLoops returns the reachable loop headers that have no exit edge
// and whose strongly connected component, within the reachable subgraph,
// has no edge leaving it.
func (g *Graph) infiniteLoops() []int {
	if len(g.noExit) == 0 {
		return nil
	}
	live := simple.NewDirectedGraph()
	g.reachable.Iterate(func(x uint32) bool {
		live.AddNode(simple.Node(int64(x)))
		return true
	})
	for _, e := range g.Edges {
		if e.From != e.To && g.Reachable(e.From) && g.Reachable(e.To) {
			live.SetEdge(simple.Edge{F: simple.Node(e.From), T: simple.Node(e.To)})
		}
	}

	component := make(map[int]int)
	for ci, scc := range topo.TarjanSCC(live) {
		for _, n := range scc {
			component[int(n.ID())] = ci
		}
	}

	var out []int
	for _, h := range g.noExit {
		if !g.Reachable(h) {
			continue
		}
		ci := component[h]
		escapes := false
		for _, e := range g.Edges {
			if !g.Reachable(e.From) || component[e.From] != ci {
				continue
			}
			if component[e.To] != ci {
				escapes = true
				break
			}
		}
		if !escapes {
			out = append(out, h)
		}
	}
	return out
}

func (g *Graph) validate() error {
	if len(g.Nodes) == 0 || g.Nodes[g.Entry].Kind != NodeEntry {
		return analyzer.Invariantf(analyzer.StageCFG, "graph %q has no entry node", g.Name)
	}
	for _, e := range g.Edges {
		if e.From < 0 || e.From >= len(g.Nodes) || e.To < 0 || e.To >= len(g.Nodes) {
			return analyzer.Invariantf(analyzer.StageCFG, "graph %q has dangling edge %d->%d", g.Name, e.From, e.To)
		}
		if e.To == g.Entry {
			return analyzer.Invariantf(analyzer.StageCFG, "graph %q has an edge into entry", g.Name)
		}
	}
	for _, x := range g.Exits {
		if len(g.succ[x]) > 0 {
			return analyzer.Invariantf(analyzer.StageCFG, "graph %q exit %d has successors", g.Name, x)
		}
	}
	return nil
}
