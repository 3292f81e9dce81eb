package syntax

import (
	"strconv"
	"strings"
)

// Truth evaluates the constant truthiness of an expression. ok is false
// when the value depends on anything other than literals.
func Truth(n *Node) (value, ok bool) {
	if n == nil {
		return false, false
	}
	switch n.kind {
	case KindLiteral:
		return literalTruth(n)
	case KindUnary:
		if !IsNotOp(n.attrs[AttrOperator]) || len(n.children) != 1 {
			return false, false
		}
		v, ok := Truth(n.children[0])
		return !v, ok
	case KindBinary:
		return binaryTruth(n)
	}
	return false, false
}

func literalTruth(n *Node) (bool, bool) {
	switch n.attrs[AttrLiteral] {
	case LiteralBool:
		return strings.EqualFold(n.text, "true"), true
	case LiteralNull:
		return false, true
	case LiteralNumber:
		f, ok := Number(n)
		return f != 0, ok
	case LiteralString:
		if strings.Contains(n.text, "${") || strings.HasPrefix(strings.ToLower(n.text), "f") {
			return false, false
		}
		return len(unquote(n.text)) > 0, true
	}
	return false, false
}

func binaryTruth(n *Node) (bool, bool) {
	if len(n.children) != 2 {
		return false, false
	}
	op := n.attrs[AttrOperator]
	left, right := n.children[0], n.children[1]
	switch {
	case IsAndOp(op):
		lv, lok := Truth(left)
		if lok && !lv {
			return false, true
		}
		rv, rok := Truth(right)
		if lok && rok {
			return rv, true
		}
		return false, false
	case IsOrOp(op):
		lv, lok := Truth(left)
		if lok && lv {
			return true, true
		}
		rv, rok := Truth(right)
		if lok && rok {
			return rv, true
		}
		return false, false
	}
	a, aok := Number(left)
	b, bok := Number(right)
	if !aok || !bok {
		return false, false
	}
	switch op {
	case "==", "===":
		return a == b, true
	case "!=", "!==":
		return a != b, true
	case "<":
		return a < b, true
	case "<=":
		return a <= b, true
	case ">":
		return a > b, true
	case ">=":
		return a >= b, true
	}
	return false, false
}

// Number parses a numeric literal.
func Number(n *Node) (float64, bool) {
	if n == nil || n.kind != KindLiteral || n.attrs[AttrLiteral] != LiteralNumber {
		return 0, false
	}
	s := strings.ReplaceAll(n.text, "_", "")
	s = strings.TrimSuffix(s, "n")
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	return 0, false
}

// IsZero reports whether n is a numeric literal equal to zero.
func IsZero(n *Node) bool {
	v, ok := Number(n)
	return ok && v == 0
}

// IsNull reports whether n is a null-like literal.
func IsNull(n *Node) bool {
	return n != nil && n.kind == KindLiteral && n.attrs[AttrLiteral] == LiteralNull
}

func unquote(s string) string {
	s = strings.TrimLeft(s, "rRbBuU")
	for _, q := range []string{`"""`, `'''`, `"`, `'`, "`"} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

// IsAndOp reports whether op is a logical conjunction.
func IsAndOp(op string) bool { return op == "&&" || op == "and" }

// IsOrOp reports whether op is a logical disjunction.
func IsOrOp(op string) bool { return op == "||" || op == "or" }

// IsLogicalOp reports whether op is a short-circuit boolean operator.
func IsLogicalOp(op string) bool { return IsAndOp(op) || IsOrOp(op) || op == "??" }

// IsNotOp reports whether op is logical negation.
func IsNotOp(op string) bool { return op == "!" || op == "not" }

// IsComparisonOp reports whether op compares its operands.
func IsComparisonOp(op string) bool {
	switch op {
	case "==", "===", "!=", "!==", "<", "<=", ">", ">=", "is", "is not":
		return true
	}
	return false
}

// IsDivisionOp reports whether op divides by its right operand.
func IsDivisionOp(op string) bool {
	switch op {
	case "/", "%", "//", "/=", "%=", "//=":
		return true
	}
	return false
}
