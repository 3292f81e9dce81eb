package syntax

import "strconv"

// Attribute keys shared by every grammar.
const (
	// AttrBinding marks a node that declares a symbol; the value is the
	// symbol kind.
	AttrBinding = "binding"
	// AttrName overrides the node text as the declared or function name.
	AttrName = "name"
	// AttrDeclType is the declared type label of a binding.
	AttrDeclType = "declType"
	// AttrHoist is "function" when the binding belongs to the nearest
	// function scope, or "scope" when it is visible throughout its scope.
	AttrHoist = "hoist"
	// AttrOuter places the binding in the scope enclosing its scope node,
	// as with function and class names.
	AttrOuter       = "outer"
	AttrWrite       = "write"
	AttrReceiver    = "receiver"
	AttrNoRef       = "noref"
	AttrNullInit    = "nullInit"
	AttrLiteral     = "literal"
	AttrOperator    = "operator"
	AttrLoopKind    = "loopKind"
	AttrScope       = "scope"
	AttrDefault     = "default"
	AttrFallthrough = "fallthrough"
)

// Binding kinds.
const (
	BindVariable  = "variable"
	BindConstant  = "constant"
	BindParameter = "parameter"
	BindFunction  = "function"
	BindClass     = "class"
	BindImport    = "import"
	BindLoopVar   = "loop-variable"
	BindCatchVar  = "catch-parameter"
)

// Hoist modes.
const (
	HoistFunction = "function"
	HoistScope    = "scope"
)

// Scope kinds.
const (
	ScopeModule   = "module"
	ScopeFunction = "function"
	ScopeClass    = "class"
	ScopeBlock    = "block"
)

// Literal classes.
const (
	LiteralBool   = "bool"
	LiteralNumber = "number"
	LiteralString = "string"
	LiteralNull   = "null"
)

// Loop kinds.
const (
	LoopFor     = "for"
	LoopForEach = "foreach"
	LoopWhile   = "while"
	LoopDo      = "do"
)

// Attrs is a read-only view of a node's attribute map with typed accessors.
type Attrs struct {
	m map[string]string
}

// String returns the attribute value or "".
func (a Attrs) String(key string) string {
	return a.m[key]
}

// Has reports whether the attribute is set.
func (a Attrs) Has(key string) bool {
	_, ok := a.m[key]
	return ok
}

// Bool reports whether the attribute is set to "true".
func (a Attrs) Bool(key string) bool {
	return a.m[key] == "true"
}

// Int parses the attribute as an integer, returning 0 when absent or invalid.
func (a Attrs) Int(key string) int {
	v, err := strconv.Atoi(a.m[key])
	if err != nil {
		return 0
	}
	return v
}

// Len returns the number of attributes.
func (a Attrs) Len() int { return len(a.m) }

// Map returns a copy of the underlying map.
func (a Attrs) Map() map[string]string {
	if len(a.m) == 0 {
		return nil
	}
	out := make(map[string]string, len(a.m))
	for k, v := range a.m {
		out[k] = v
	}
	return out
}
