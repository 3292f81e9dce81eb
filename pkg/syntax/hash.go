package syntax

import (
	"github.com/cespare/xxhash/v2"
)

// Hash returns a structural fingerprint of the subtree rooted at n. Two
// subtrees with equal kinds, grammar types, leaf text and operators hash
// equally regardless of where they appear. Comments are ignored.
func Hash(n *Node) uint64 {
	d := xxhash.New()
	writeNode(d, n)
	return d.Sum64()
}

// HashSequence fingerprints an ordered run of sibling subtrees.
func HashSequence(nodes []*Node) uint64 {
	d := xxhash.New()
	for _, n := range nodes {
		_, _ = d.Write([]byte{'['})
		writeNode(d, n)
		_, _ = d.Write([]byte{']'})
	}
	return d.Sum64()
}

func writeNode(d *xxhash.Digest, n *Node) {
	if n == nil {
		_, _ = d.Write([]byte{0xff})
		return
	}
	_, _ = d.WriteString(n.typ)
	_, _ = d.Write([]byte{0, byte(n.kind)})
	_, _ = d.WriteString(n.text)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(n.attrs[AttrOperator])
	for _, c := range n.children {
		if c.kind == KindComment {
			continue
		}
		_, _ = d.Write([]byte{'('})
		writeNode(d, c)
		_, _ = d.Write([]byte{')'})
	}
}

// Equal reports whether a and b are structurally identical under the same
// rules Hash uses.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || a.typ != b.typ || a.text != b.text ||
		a.attrs[AttrOperator] != b.attrs[AttrOperator] {
		return false
	}
	ac, bc := significant(a.children), significant(b.children)
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// EqualSequence compares two runs of siblings pairwise.
func EqualSequence(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func significant(nodes []*Node) []*Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n.kind != KindComment {
			out = append(out, n)
		}
	}
	return out
}

// Size counts the non-comment nodes in the subtree.
func Size(n *Node) int {
	if n == nil || n.kind == KindComment {
		return 0
	}
	total := 1
	for _, c := range n.children {
		total += Size(c)
	}
	return total
}
