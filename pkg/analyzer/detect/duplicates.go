package detect

import (
	"slices"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Clone is a run of statements that repeats an earlier run in the same
// file exactly, up to comments and layout.
type Clone struct {
	Original   models.Span `json:"original"`
	Copy       models.Span `json:"copy"`
	Statements int         `json:"statements"`

	first *syntax.Node // first statement of the copy
}

// window is minLen consecutive statements of one block.
type window struct {
	seq   int
	start int
}

// FindClones returns the maximal duplicated statement runs of at least
// minLen statements, reported at the later copy and ordered by its position.
// A run nested inside an already reported copy is not reported again.
func FindClones(tree *syntax.Tree, minLen int) []Clone {
	if tree == nil || tree.Root() == nil || minLen < 1 {
		return nil
	}

	// Phase 1: collect statement sequences in preorder
	var seqs [][]*syntax.Node
	syntax.Walk(tree.Root(), func(n *syntax.Node) bool {
		if k := n.Kind(); k == syntax.KindBlock || k == syntax.KindProgram {
			var stmts []*syntax.Node
			for _, c := range n.Children() {
				if c.Kind() != syntax.KindComment {
					stmts = append(stmts, c)
				}
			}
			if len(stmts) >= minLen {
				seqs = append(seqs, stmts)
			}
		}
		return true
	})

	// Phase 2: bucket windows by structural hash
	buckets := make(map[uint64][]window)
	var order []window
	for si, seq := range seqs {
		for i := 0; i+minLen <= len(seq); i++ {
			w := window{seq: si, start: i}
			h := syntax.HashSequence(seq[i : i+minLen])
			buckets[h] = append(buckets[h], w)
			order = append(order, w)
		}
	}
	// Blocks were visited in preorder; a bucket scan needs source order.
	for _, ws := range buckets {
		slices.SortFunc(ws, func(x, y window) int {
			return seqs[x.seq][x.start].Span().Start.Offset - seqs[y.seq][y.start].Span().Start.Offset
		})
	}

	// Phase 3: match each window against the earliest equal window before it
	var clones []Clone
	var covered []models.Span
	for _, w := range order {
		b := seqs[w.seq]
		if insideAny(b[w.start].Span(), covered) {
			continue
		}
		h := syntax.HashSequence(b[w.start : w.start+minLen])
		for _, e := range buckets[h] {
			a := seqs[e.seq]
			if !a[e.start].Span().Start.Before(b[w.start].Span().Start) {
				break
			}
			if !disjoint(e, w, minLen) || !syntax.EqualSequence(a[e.start:e.start+minLen], b[w.start:w.start+minLen]) {
				continue
			}
			// only the leftmost window of a longer match reports it
			if e.start > 0 && w.start > 0 && disjoint(window{e.seq, e.start - 1}, window{w.seq, w.start - 1}, minLen+1) &&
				syntax.Equal(a[e.start-1], b[w.start-1]) {
				break
			}
			n := minLen
			for e.start+n < len(a) && w.start+n < len(b) &&
				(e.seq != w.seq || e.start+n < w.start) &&
				syntax.Equal(a[e.start+n], b[w.start+n]) {
				n++
			}
			c := Clone{
				Original:   spanOf(a[e.start : e.start+n]),
				Copy:       spanOf(b[w.start : w.start+n]),
				Statements: n,
				first:      b[w.start],
			}
			clones = append(clones, c)
			covered = append(covered, c.Copy)
			break
		}
	}
	return clones
}

// disjoint reports whether two windows of length n do not overlap.
func disjoint(a, b window, n int) bool {
	if a.seq != b.seq {
		return true
	}
	return a.start+n <= b.start || b.start+n <= a.start
}

func spanOf(stmts []*syntax.Node) models.Span {
	return models.Span{Start: stmts[0].Span().Start, End: stmts[len(stmts)-1].Span().End}
}

func insideAny(s models.Span, spans []models.Span) bool {
	for _, c := range spans {
		if c.Contains(s) {
			return true
		}
	}
	return false
}
