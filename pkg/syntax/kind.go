package syntax

import "fmt"

// Kind is the language-neutral category of a syntax node.
type Kind uint8

const (
	KindOther Kind = iota
	KindProgram
	KindFunction
	KindClass
	KindBlock
	KindIf
	KindElse
	KindElseIf
	KindLoop
	KindSwitch
	KindCase
	KindReturn
	KindBreak
	KindContinue
	KindThrow
	KindTry
	KindCatch
	KindFinally
	KindCompound
	KindStatement
	KindIdentifier
	KindLiteral
	KindCall
	KindIndex
	KindMember
	KindBinary
	KindUnary
	KindAssignment
	KindTernary
	KindComment
	KindError
	KindMissing
)

var kindNames = [...]string{
	KindOther:      "other",
	KindProgram:    "program",
	KindFunction:   "function",
	KindClass:      "class",
	KindBlock:      "block",
	KindIf:         "if",
	KindElse:       "else",
	KindElseIf:     "elseif",
	KindLoop:       "loop",
	KindSwitch:     "switch",
	KindCase:       "case",
	KindReturn:     "return",
	KindBreak:      "break",
	KindContinue:   "continue",
	KindThrow:      "throw",
	KindTry:        "try",
	KindCatch:      "catch",
	KindFinally:    "finally",
	KindCompound:   "compound",
	KindStatement:  "statement",
	KindIdentifier: "identifier",
	KindLiteral:    "literal",
	KindCall:       "call",
	KindIndex:      "index",
	KindMember:     "member",
	KindBinary:     "binary",
	KindUnary:      "unary",
	KindAssignment: "assignment",
	KindTernary:    "ternary",
	KindComment:    "comment",
	KindError:      "error",
	KindMissing:    "missing",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name so serialized trees stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown node kind %q", b)
	}
	*k = v
	return nil
}

// ParseKind looks up a kind by name.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindOther, false
}

// IsBranch reports whether the kind is a branching construct that
// contributes to cognitive complexity and nesting depth.
func (k Kind) IsBranch() bool {
	switch k {
	case KindIf, KindLoop, KindSwitch, KindCatch, KindTernary:
		return true
	}
	return false
}

// IsJump reports whether control leaves the current sequence unconditionally.
func (k Kind) IsJump() bool {
	switch k {
	case KindReturn, KindBreak, KindContinue, KindThrow:
		return true
	}
	return false
}
