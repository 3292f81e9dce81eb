package lang

import (
	"path"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/parser"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

func init() {
	register(&treeSitterAnalyzer{
		grammar:    goGrammar(),
		features:   []Feature{FeatureBlockScope, FeatureHoisting, FeatureStaticTypes},
		extensions: []string{".go"},
	}, "golang")
}

var goIdentifiers = parser.Set("identifier")

var goBuiltins = parser.Set(
	"append", "cap", "clear", "close", "complex", "copy", "delete", "imag",
	"len", "make", "max", "min", "new", "panic", "print", "println", "real",
	"recover", "bool", "byte", "rune", "string", "error", "any", "comparable",
	"int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16",
	"uint32", "uint64", "uintptr", "float32", "float64", "complex64",
	"complex128", "true", "false", "nil", "iota",
)

var (
	majorVersion  = regexp.MustCompile(`^v[0-9]+$`)
	gopkgInSuffix = regexp.MustCompile(`\.v[0-9]+$`)
)

func goGrammar() *parser.Grammar {
	g := &parser.Grammar{
		Name:     "go",
		Language: golang.GetLanguage(),
		Kinds: map[string]syntax.Kind{
			"source_file":                 syntax.KindProgram,
			"function_declaration":        syntax.KindFunction,
			"method_declaration":          syntax.KindFunction,
			"func_literal":                syntax.KindFunction,
			"block":                       syntax.KindBlock,
			"if_statement":                syntax.KindIf,
			"for_statement":               syntax.KindLoop,
			"expression_switch_statement": syntax.KindSwitch,
			"type_switch_statement":       syntax.KindSwitch,
			"select_statement":            syntax.KindSwitch,
			"expression_case":             syntax.KindCase,
			"type_case":                   syntax.KindCase,
			"communication_case":          syntax.KindCase,
			"default_case":                syntax.KindCase,
			"return_statement":            syntax.KindReturn,
			"break_statement":             syntax.KindBreak,
			"continue_statement":          syntax.KindContinue,
			"labeled_statement":           syntax.KindCompound,
			"expression_statement":        syntax.KindStatement,
			"short_var_declaration":       syntax.KindStatement,
			"var_declaration":             syntax.KindStatement,
			"const_declaration":           syntax.KindStatement,
			"type_declaration":            syntax.KindStatement,
			"import_declaration":          syntax.KindStatement,
			"package_clause":              syntax.KindStatement,
			"assignment_statement":        syntax.KindStatement,
			"inc_statement":               syntax.KindStatement,
			"dec_statement":               syntax.KindStatement,
			"send_statement":              syntax.KindStatement,
			"go_statement":                syntax.KindStatement,
			"defer_statement":             syntax.KindStatement,
			"goto_statement":              syntax.KindStatement,
			"fallthrough_statement":       syntax.KindStatement,
			"empty_statement":             syntax.KindStatement,
			"identifier":                  syntax.KindIdentifier,
			"call_expression":             syntax.KindCall,
			"index_expression":            syntax.KindIndex,
			"selector_expression":         syntax.KindMember,
			"binary_expression":           syntax.KindBinary,
			"unary_expression":            syntax.KindUnary,
			"comment":                     syntax.KindComment,
		},
		Transparent: parser.Set("parenthesized_expression", "statement_list", "for_clause", "range_clause"),
		Scopes: map[string]string{
			"source_file":                 syntax.ScopeModule,
			"function_declaration":        syntax.ScopeFunction,
			"method_declaration":          syntax.ScopeFunction,
			"func_literal":                syntax.ScopeFunction,
			"block":                       syntax.ScopeBlock,
			"if_statement":                syntax.ScopeBlock,
			"for_statement":               syntax.ScopeBlock,
			"expression_switch_statement": syntax.ScopeBlock,
			"type_switch_statement":       syntax.ScopeBlock,
			"select_statement":            syntax.ScopeBlock,
			"expression_case":             syntax.ScopeBlock,
			"type_case":                   syntax.ScopeBlock,
			"communication_case":          syntax.ScopeBlock,
			"default_case":                syntax.ScopeBlock,
		},
		Literals: map[string]string{
			"int_literal":                syntax.LiteralNumber,
			"float_literal":              syntax.LiteralNumber,
			"imaginary_literal":          syntax.LiteralNumber,
			"rune_literal":               syntax.LiteralNumber,
			"interpreted_string_literal": syntax.LiteralString,
			"raw_string_literal":         syntax.LiteralString,
			"true":                       syntax.LiteralBool,
			"false":                      syntax.LiteralBool,
			"nil":                        syntax.LiteralNull,
		},
		Fields: map[string]map[string]string{
			"expression_switch_statement": {"value": "condition"},
			"type_switch_statement":       {"value": "condition"},
			"index_expression":            {"operand": "object"},
			"selector_expression":         {"operand": "object", "field": "property"},
		},
		Builtins: goBuiltins,
		Idiomatic: parser.Set(
			"_", "b", "c", "e", "f", "i", "j", "k", "m", "n", "p", "r", "s",
			"t", "v", "w", "x", "y",
		),
	}

	params := func(a *parser.Annotator, n *sitter.Node, source []byte) {
		t := field(n, "type")
		for _, name := range parser.ChildrenByField(n, "name") {
			declare(a, name, syntax.BindParameter, "")
			if t != nil {
				a.Set(name, syntax.AttrDeclType, typeLabel(t, source))
			}
		}
	}
	spec := func(kind string) parser.Hook {
		return func(a *parser.Annotator, n *sitter.Node, source []byte) {
			hoist := ""
			if goTopLevel(n) {
				hoist = syntax.HoistScope
			}
			t := field(n, "type")
			values := parser.NamedChildren(field(n, "value"))
			for i, name := range parser.ChildrenByField(n, "name") {
				declare(a, name, kind, hoist)
				if t != nil {
					a.Set(name, syntax.AttrDeclType, typeLabel(t, source))
				}
				if i < len(values) && nullLiteral(values[i], g) {
					a.Flag(name, syntax.AttrNullInit)
				}
			}
		}
	}
	writes := func(a *parser.Annotator, list *sitter.Node) {
		targets := []*sitter.Node{list}
		if list != nil && list.Type() == "expression_list" {
			targets = parser.NamedChildren(list)
		}
		for _, t := range targets {
			if t != nil && t.Type() == "identifier" {
				a.Flag(t, syntax.AttrWrite)
			}
		}
	}

	g.Hooks = map[string]parser.Hook{
		"function_declaration": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			declareOuter(a, field(n, "name"), syntax.BindFunction, syntax.HoistScope)
		},
		"parameter_declaration":          params,
		"variadic_parameter_declaration": params,
		"type_parameter_declaration":     params,
		"var_spec":                       spec(syntax.BindVariable),
		"const_spec":                     spec(syntax.BindConstant),
		"short_var_declaration": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			kind := syntax.BindVariable
			if parentType(n) == "for_clause" {
				kind = syntax.BindLoopVar
			}
			left := parser.NamedChildren(field(n, "left"))
			right := parser.NamedChildren(field(n, "right"))
			for i, id := range left {
				if id.Type() != "identifier" {
					continue
				}
				declare(a, id, kind, "")
				if len(left) == len(right) {
					if nullLiteral(right[i], g) {
						a.Flag(id, syntax.AttrNullInit)
					}
					if right[i].Type() == "func_literal" {
						a.Set(right[i], syntax.AttrName, parser.GetNodeText(id, source))
					}
				}
			}
		},
		"assignment_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			writes(a, field(n, "left"))
		},
		"inc_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			writes(a, n.NamedChild(0))
		},
		"dec_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			writes(a, n.NamedChild(0))
		},
		"range_clause": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			left := field(n, "left")
			if !hasToken(n, ":=") {
				writes(a, left)
				return
			}
			for _, id := range parser.NamedChildren(left) {
				if id.Type() == "identifier" {
					declare(a, id, syntax.BindLoopVar, "")
				}
			}
		},
		"for_statement": goForStatement,
		"selector_expression": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			if op := field(n, "operand"); op != nil && op.Type() == "identifier" {
				a.Flag(op, syntax.AttrReceiver)
			}
		},
		"import_spec": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			if name := field(n, "name"); name != nil {
				if name.Type() == "package_identifier" {
					declare(a, name, syntax.BindImport, syntax.HoistScope)
				}
				return
			}
			p := field(n, "path")
			if p == nil {
				return
			}
			declare(a, p, syntax.BindImport, syntax.HoistScope)
			a.Set(p, syntax.AttrName, goPackageName(parser.GetNodeText(p, source)))
		},
		"type_switch_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			for _, id := range parser.ChildrenByField(n, "alias") {
				eachIdentifier(id, goIdentifiers, nil, func(x *sitter.Node) {
					declare(a, x, syntax.BindVariable, "")
				})
			}
		},
		"keyed_element": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			key := n.NamedChild(0)
			if key != nil && key.Type() == "literal_element" {
				key = key.NamedChild(0)
			}
			if key != nil && key.Type() == "identifier" {
				a.Flag(key, syntax.AttrNoRef)
			}
		},
		"fallthrough_statement": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			a.Flag(n, syntax.AttrFallthrough)
		},
		"default_case": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			a.Flag(n, syntax.AttrDefault)
		},
	}
	return g
}

// goForStatement classifies the loop and names the bare condition of a
// "for cond {}" loop, which the grammar leaves without a field.
func goForStatement(a *parser.Annotator, n *sitter.Node, _ []byte) {
	kind := syntax.LoopWhile
	for _, ch := range parser.NamedChildren(n) {
		switch ch.Type() {
		case "range_clause":
			kind = syntax.LoopForEach
		case "for_clause":
			kind = syntax.LoopFor
		case "block", "comment":
		default:
			a.SetField(ch, "condition")
		}
	}
	a.Set(n, syntax.AttrLoopKind, kind)
}

func goTopLevel(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "source_file":
			return true
		case "block", "function_declaration", "method_declaration", "func_literal":
			return false
		}
	}
	return false
}

func goPackageName(importPath string) string {
	importPath = strings.Trim(importPath, "\"`")
	segments := strings.Split(importPath, "/")
	name := path.Base(importPath)
	if majorVersion.MatchString(name) && len(segments) > 1 {
		name = segments[len(segments)-2]
	}
	name = gopkgInSuffix.ReplaceAllString(name, "")
	name = strings.TrimPrefix(name, "go-")
	return strings.NewReplacer("-", "_", ".", "_").Replace(name)
}

func hasToken(n *sitter.Node, tok string) bool {
	for i := range int(n.ChildCount()) {
		if ch := n.Child(i); ch != nil && !ch.IsNamed() && ch.Type() == tok {
			return true
		}
	}
	return false
}
