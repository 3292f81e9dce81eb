package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/parser"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

func init() {
	register(&treeSitterAnalyzer{
		grammar:    pythonGrammar(),
		features:   []Feature{FeatureFunctionScope, FeatureLoopElse, FeatureExceptions},
		extensions: []string{".py", ".pyw", ".pyi"},
	}, "py", "python3")
}

var pyIdentifiers = parser.Set("identifier")

var pyBuiltins = parser.Set(
	"print", "input", "len", "range", "enumerate", "zip", "map", "filter",
	"sorted", "reversed", "sum", "min", "max", "abs", "any", "all", "round",
	"pow", "divmod", "int", "float", "str", "bool", "bytes", "bytearray",
	"list", "dict", "set", "frozenset", "tuple", "object", "type", "super",
	"isinstance", "issubclass", "callable", "getattr", "setattr", "hasattr",
	"delattr", "id", "hash", "iter", "next", "repr", "format", "chr", "ord",
	"hex", "oct", "bin", "open", "vars", "dir", "globals", "locals", "slice",
	"property", "staticmethod", "classmethod", "exec", "eval", "compile",
	"help", "exit", "quit", "breakpoint", "memoryview", "complex", "ascii",
	"NotImplemented", "Ellipsis", "__name__", "__file__", "__doc__",
	"Exception", "BaseException", "ValueError", "TypeError", "KeyError",
	"IndexError", "AttributeError", "RuntimeError", "NameError",
	"ZeroDivisionError", "StopIteration", "NotImplementedError",
	"AssertionError", "ImportError", "ModuleNotFoundError", "OSError",
	"IOError", "FileNotFoundError", "PermissionError", "ArithmeticError",
	"LookupError", "OverflowError", "RecursionError", "KeyboardInterrupt",
	"UnicodeError", "UnicodeDecodeError", "TimeoutError", "Warning",
	"DeprecationWarning", "UserWarning",
)

func pythonGrammar() *parser.Grammar {
	g := &parser.Grammar{
		Name:     "python",
		Language: python.GetLanguage(),
		Kinds: map[string]syntax.Kind{
			"module":                  syntax.KindProgram,
			"function_definition":     syntax.KindFunction,
			"lambda":                  syntax.KindFunction,
			"class_definition":        syntax.KindClass,
			"block":                   syntax.KindBlock,
			"if_statement":            syntax.KindIf,
			"elif_clause":             syntax.KindElseIf,
			"else_clause":             syntax.KindElse,
			"for_statement":           syntax.KindLoop,
			"while_statement":         syntax.KindLoop,
			"try_statement":           syntax.KindTry,
			"except_clause":           syntax.KindCatch,
			"except_group_clause":     syntax.KindCatch,
			"finally_clause":          syntax.KindFinally,
			"with_statement":          syntax.KindCompound,
			"return_statement":        syntax.KindReturn,
			"break_statement":         syntax.KindBreak,
			"continue_statement":      syntax.KindContinue,
			"raise_statement":         syntax.KindThrow,
			"expression_statement":    syntax.KindStatement,
			"pass_statement":          syntax.KindStatement,
			"assert_statement":        syntax.KindStatement,
			"delete_statement":        syntax.KindStatement,
			"import_statement":        syntax.KindStatement,
			"import_from_statement":   syntax.KindStatement,
			"future_import_statement": syntax.KindStatement,
			"global_statement":        syntax.KindStatement,
			"nonlocal_statement":      syntax.KindStatement,
			"decorated_definition":    syntax.KindStatement,
			"match_statement":         syntax.KindStatement,
			"identifier":              syntax.KindIdentifier,
			"call":                    syntax.KindCall,
			"subscript":               syntax.KindIndex,
			"attribute":               syntax.KindMember,
			"binary_operator":         syntax.KindBinary,
			"boolean_operator":        syntax.KindBinary,
			"comparison_operator":     syntax.KindBinary,
			"not_operator":            syntax.KindUnary,
			"unary_operator":          syntax.KindUnary,
			"assignment":              syntax.KindAssignment,
			"augmented_assignment":    syntax.KindAssignment,
			"named_expression":        syntax.KindAssignment,
			"conditional_expression":  syntax.KindTernary,
			"comment":                 syntax.KindComment,
		},
		Transparent: parser.Set("parenthesized_expression"),
		Scopes: map[string]string{
			"module":                   syntax.ScopeModule,
			"function_definition":      syntax.ScopeFunction,
			"lambda":                   syntax.ScopeFunction,
			"class_definition":         syntax.ScopeClass,
			"list_comprehension":       syntax.ScopeBlock,
			"dictionary_comprehension": syntax.ScopeBlock,
			"set_comprehension":        syntax.ScopeBlock,
			"generator_expression":     syntax.ScopeBlock,
		},
		Literals: map[string]string{
			"integer":             syntax.LiteralNumber,
			"float":               syntax.LiteralNumber,
			"string":              syntax.LiteralString,
			"concatenated_string": syntax.LiteralString,
			"true":                syntax.LiteralBool,
			"false":               syntax.LiteralBool,
			"none":                syntax.LiteralNull,
		},
		Fields: map[string]map[string]string{
			"subscript": {"value": "object", "subscript": "index"},
			"attribute": {"attribute": "property"},
		},
		Positional: map[string][]string{
			"conditional_expression": {"consequence", "condition", "alternative"},
		},
		Builtins:  pyBuiltins,
		Idiomatic: parser.Set("_", "i", "j", "k", "n", "x", "y"),
	}

	g.Hooks = map[string]parser.Hook{
		"function_definition": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			declareOuter(a, field(n, "name"), syntax.BindFunction, "")
		},
		"class_definition": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			declareOuter(a, field(n, "name"), syntax.BindClass, "")
		},
		"parameters": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			for _, p := range parser.NamedChildren(n) {
				pyBindParameter(a, p, source)
			}
		},
		"lambda_parameters": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			for _, p := range parser.NamedChildren(n) {
				pyBindParameter(a, p, source)
			}
		},
		"assignment": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			left := field(n, "left")
			pyBindTarget(a, left, syntax.BindVariable, "")
			if left == nil || left.Type() != "identifier" {
				return
			}
			if t := field(n, "type"); t != nil {
				a.Set(left, syntax.AttrDeclType, typeLabel(t, source))
			}
			right := field(n, "right")
			if nullLiteral(right, g) {
				a.Flag(left, syntax.AttrNullInit)
			}
			if right != nil && right.Type() == "lambda" {
				a.Set(right, syntax.AttrName, parser.GetNodeText(left, source))
			}
		},
		"augmented_assignment": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			if left := field(n, "left"); left != nil && left.Type() == "identifier" {
				a.Flag(left, syntax.AttrWrite)
			}
		},
		"named_expression": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			declare(a, field(n, "name"), syntax.BindVariable, "")
		},
		"for_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			a.Set(n, syntax.AttrLoopKind, syntax.LoopForEach)
			pyBindTarget(a, field(n, "left"), syntax.BindLoopVar, "")
		},
		"while_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			a.Set(n, syntax.AttrLoopKind, syntax.LoopWhile)
		},
		"for_in_clause": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			pyBindTarget(a, field(n, "left"), syntax.BindLoopVar, syntax.HoistScope)
		},
		"as_pattern": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			kind := syntax.BindVariable
			if t := parentType(n); t == "except_clause" || t == "except_group_clause" {
				kind = syntax.BindCatchVar
			}
			eachIdentifier(field(n, "alias"), pyIdentifiers, nil, func(id *sitter.Node) {
				declare(a, id, kind, "")
			})
		},
		"with_item": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			pyBindTarget(a, field(n, "alias"), syntax.BindVariable, "")
		},
		"except_clause":       pyExceptClause,
		"except_group_clause": pyExceptClause,
		"import_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			for _, name := range parser.ChildrenByField(n, "name") {
				pyImportName(a, name, true)
			}
		},
		"import_from_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			eachIdentifier(field(n, "module_name"), pyIdentifiers, nil, func(id *sitter.Node) {
				a.Flag(id, syntax.AttrNoRef)
			})
			for _, name := range parser.ChildrenByField(n, "name") {
				pyImportName(a, name, false)
			}
		},
		"attribute": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			if obj := field(n, "object"); obj != nil && obj.Type() == "identifier" {
				a.Flag(obj, syntax.AttrReceiver)
			}
			a.Flag(field(n, "attribute"), syntax.AttrNoRef)
		},
		"keyword_argument": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			a.Flag(field(n, "name"), syntax.AttrNoRef)
		},
		"global_statement":   pyNoRefAll,
		"nonlocal_statement": pyNoRefAll,
	}
	return g
}

func pyBindParameter(a *parser.Annotator, p *sitter.Node, source []byte) {
	switch p.Type() {
	case "identifier":
		declare(a, p, syntax.BindParameter, "")
	case "default_parameter":
		declare(a, field(p, "name"), syntax.BindParameter, "")
	case "typed_default_parameter":
		name := field(p, "name")
		declare(a, name, syntax.BindParameter, "")
		if t := field(p, "type"); t != nil && name != nil {
			a.Set(name, syntax.AttrDeclType, typeLabel(t, source))
		}
	case "typed_parameter":
		for _, ch := range parser.NamedChildren(p) {
			if ch.Type() == "type" {
				continue
			}
			target := ch
			if ch.Type() != "identifier" {
				target = firstIdentifier(ch)
			}
			declare(a, target, syntax.BindParameter, "")
			if t := field(p, "type"); t != nil && target != nil {
				a.Set(target, syntax.AttrDeclType, typeLabel(t, source))
			}
			return
		}
	case "list_splat_pattern", "dictionary_splat_pattern":
		declare(a, firstIdentifier(p), syntax.BindParameter, "")
	}
}

// pyBindTarget declares the names an assignment or loop target binds.
func pyBindTarget(a *parser.Annotator, n *sitter.Node, kind, hoist string) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		declare(a, n, kind, hoist)
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list",
		"expression_list", "list_splat_pattern", "parenthesized_expression":
		for _, ch := range parser.NamedChildren(n) {
			pyBindTarget(a, ch, kind, hoist)
		}
	}
}

func pyExceptClause(a *parser.Annotator, n *sitter.Node, _ []byte) {
	afterAs := false
	for i := range int(n.ChildCount()) {
		ch := n.Child(i)
		if ch == nil {
			continue
		}
		if !ch.IsNamed() {
			afterAs = ch.Type() == "as"
			continue
		}
		if afterAs && ch.Type() == "identifier" {
			declare(a, ch, syntax.BindCatchVar, "")
		}
		afterAs = false
	}
}

// pyImportName binds the local name introduced by an import. For plain
// imports the first dotted segment is bound; for from-imports the last.
func pyImportName(a *parser.Annotator, n *sitter.Node, first bool) {
	switch n.Type() {
	case "aliased_import":
		eachIdentifier(field(n, "name"), pyIdentifiers, nil, func(id *sitter.Node) {
			a.Flag(id, syntax.AttrNoRef)
		})
		declare(a, field(n, "alias"), syntax.BindImport, "")
	case "dotted_name":
		ids := parser.NamedChildren(n)
		if len(ids) == 0 {
			return
		}
		bound := ids[len(ids)-1]
		if first {
			bound = ids[0]
		}
		for _, id := range ids {
			if id != bound {
				a.Flag(id, syntax.AttrNoRef)
			}
		}
		declare(a, bound, syntax.BindImport, "")
	}
}

func pyNoRefAll(a *parser.Annotator, n *sitter.Node, _ []byte) {
	eachIdentifier(n, pyIdentifiers, nil, func(id *sitter.Node) {
		a.Flag(id, syntax.AttrNoRef)
	})
}

func firstIdentifier(n *sitter.Node) *sitter.Node {
	var found *sitter.Node
	eachIdentifier(n, pyIdentifiers, nil, func(id *sitter.Node) {
		if found == nil {
			found = id
		}
	})
	return found
}
