package symbols

import (
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// ScopeID is a synthetic scope identifier, unique within one table.
type ScopeID string

// Reference is one use of a name.
type Reference struct {
	Name     string      `json:"name"`
	Span     models.Span `json:"span"`
	Scope    ScopeID     `json:"scope"`
	Write    bool        `json:"write,omitempty"`
	Receiver bool        `json:"receiver,omitempty"`
	NodeID   int         `json:"node_id"`
}

// Symbol is a declared name and every place it is used.
type Symbol struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Kind         string      `json:"kind"`
	DeclaredType string      `json:"declared_type,omitempty"`
	Scope        ScopeID     `json:"scope"`
	Declaration  models.Span `json:"declaration"`
	NodeID       int         `json:"node_id"`
	Hoisted      bool        `json:"hoisted,omitempty"`
	NullInit     bool        `json:"null_init,omitempty"`
	References   []Reference `json:"references,omitempty"`
}

// Reassigned reports whether any reference writes the symbol.
func (s *Symbol) Reassigned() bool {
	for _, r := range s.References {
		if r.Write {
			return true
		}
	}
	return false
}

// Scope is a lexical region. The root scope has an empty Parent.
type Scope struct {
	ID      ScopeID     `json:"id"`
	Kind    string      `json:"kind"`
	Parent  ScopeID     `json:"parent,omitempty"`
	Span    models.Span `json:"span"`
	NodeID  int         `json:"node_id"`
	Symbols []int       `json:"symbols,omitempty"`
}

// ForwardUse is a reference that precedes a non-hoisted declaration within
// the same function.
type ForwardUse struct {
	Symbol    int       `json:"symbol"`
	Reference Reference `json:"reference"`
}

// Table is the result of symbol resolution for one tree. A Table is never
// modified after Build returns it.
type Table struct {
	Scopes     []Scope      `json:"scopes"`
	Symbols    []Symbol     `json:"symbols"`
	Unresolved []Reference  `json:"unresolved,omitempty"`
	Forward    []ForwardUse `json:"forward,omitempty"`

	index map[ScopeID]int
}

// Scope returns the scope with the given ID.
func (t *Table) Scope(id ScopeID) (Scope, bool) {
	i, ok := t.index[id]
	if !ok {
		return Scope{}, false
	}
	return t.Scopes[i], true
}

// Lookup resolves name from the given scope outward, returning the symbol
// that a use in that scope would bind to.
func (t *Table) Lookup(from ScopeID, name string) (*Symbol, bool) {
	for id := from; id != ""; {
		sc, ok := t.Scope(id)
		if !ok {
			return nil, false
		}
		for _, si := range sc.Symbols {
			if t.Symbols[si].Name == name {
				return &t.Symbols[si], true
			}
		}
		id = sc.Parent
	}
	return nil, false
}

// IsDescendant reports whether scope a is b or nested inside b.
func (t *Table) IsDescendant(a, b ScopeID) bool {
	for id := a; id != ""; {
		if id == b {
			return true
		}
		sc, ok := t.Scope(id)
		if !ok {
			return false
		}
		id = sc.Parent
	}
	return false
}

// SymbolAt returns the symbol declared by the syntax node with the given ID.
func (t *Table) SymbolAt(nodeID int) (*Symbol, bool) {
	for i := range t.Symbols {
		if t.Symbols[i].NodeID == nodeID {
			return &t.Symbols[i], true
		}
	}
	return nil, false
}

// ByScope groups symbol indexes by the scope that declares them.
func (t *Table) ByScope() map[ScopeID][]int {
	out := make(map[ScopeID][]int, len(t.Scopes))
	for _, sc := range t.Scopes {
		out[sc.ID] = append([]int(nil), sc.Symbols...)
	}
	return out
}
