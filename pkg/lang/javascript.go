package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/parser"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

func init() {
	register(&treeSitterAnalyzer{
		grammar: javascriptGrammar("javascript", javascript.GetLanguage()),
		features: []Feature{
			FeatureBlockScope, FeatureFunctionScope, FeatureHoisting,
			FeatureSwitchFallthrough, FeatureExceptions,
		},
		extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
	}, "js", "node", "ecmascript")
}

var jsFunctionTypes = []string{
	"function_declaration", "function_expression", "function",
	"generator_function_declaration", "generator_function",
	"arrow_function", "method_definition",
}

var jsIdentifiers = parser.Set("identifier", "shorthand_property_identifier_pattern")

var jsBuiltins = parser.Set(
	"console", "Math", "JSON", "Object", "Array", "String", "Number", "Boolean",
	"Date", "RegExp", "Error", "TypeError", "RangeError", "SyntaxError",
	"ReferenceError", "Promise", "Map", "Set", "WeakMap", "WeakSet", "Symbol",
	"BigInt", "Intl", "Reflect", "Proxy", "parseInt", "parseFloat", "isNaN",
	"isFinite", "NaN", "Infinity", "undefined", "globalThis", "window",
	"document", "navigator", "localStorage", "require", "module", "exports",
	"process", "Buffer", "__dirname", "__filename", "setTimeout", "setInterval",
	"clearTimeout", "clearInterval", "queueMicrotask", "structuredClone",
	"fetch", "alert", "prompt", "confirm", "arguments",
	"encodeURIComponent", "decodeURIComponent", "encodeURI", "decodeURI",
)

// javascriptGrammar builds the rules shared by JavaScript and TypeScript.
func javascriptGrammar(name string, language *sitter.Language) *parser.Grammar {
	g := &parser.Grammar{
		Name:     name,
		Language: language,
		Kinds: map[string]syntax.Kind{
			"program":                               syntax.KindProgram,
			"class_declaration":                     syntax.KindClass,
			"class":                                 syntax.KindClass,
			"statement_block":                       syntax.KindBlock,
			"class_body":                            syntax.KindBlock,
			"if_statement":                          syntax.KindIf,
			"else_clause":                           syntax.KindElse,
			"for_statement":                         syntax.KindLoop,
			"for_in_statement":                      syntax.KindLoop,
			"while_statement":                       syntax.KindLoop,
			"do_statement":                          syntax.KindLoop,
			"switch_statement":                      syntax.KindSwitch,
			"switch_case":                           syntax.KindCase,
			"switch_default":                        syntax.KindCase,
			"return_statement":                      syntax.KindReturn,
			"break_statement":                       syntax.KindBreak,
			"continue_statement":                    syntax.KindContinue,
			"throw_statement":                       syntax.KindThrow,
			"try_statement":                         syntax.KindTry,
			"catch_clause":                          syntax.KindCatch,
			"finally_clause":                        syntax.KindFinally,
			"with_statement":                        syntax.KindCompound,
			"labeled_statement":                     syntax.KindCompound,
			"expression_statement":                  syntax.KindStatement,
			"lexical_declaration":                   syntax.KindStatement,
			"variable_declaration":                  syntax.KindStatement,
			"empty_statement":                       syntax.KindStatement,
			"debugger_statement":                    syntax.KindStatement,
			"import_statement":                      syntax.KindStatement,
			"export_statement":                      syntax.KindStatement,
			"identifier":                            syntax.KindIdentifier,
			"shorthand_property_identifier":         syntax.KindIdentifier,
			"shorthand_property_identifier_pattern": syntax.KindIdentifier,
			"call_expression":                       syntax.KindCall,
			"new_expression":                        syntax.KindCall,
			"subscript_expression":                  syntax.KindIndex,
			"member_expression":                     syntax.KindMember,
			"binary_expression":                     syntax.KindBinary,
			"unary_expression":                      syntax.KindUnary,
			"update_expression":                     syntax.KindUnary,
			"assignment_expression":                 syntax.KindAssignment,
			"augmented_assignment_expression":       syntax.KindAssignment,
			"ternary_expression":                    syntax.KindTernary,
			"comment":                               syntax.KindComment,
		},
		Transparent: parser.Set("parenthesized_expression", "switch_body"),
		Scopes: map[string]string{
			"program":          syntax.ScopeModule,
			"statement_block":  syntax.ScopeBlock,
			"for_statement":    syntax.ScopeBlock,
			"for_in_statement": syntax.ScopeBlock,
			"catch_clause":     syntax.ScopeBlock,
			"switch_statement": syntax.ScopeBlock,
		},
		Literals: map[string]string{
			"number":          syntax.LiteralNumber,
			"string":          syntax.LiteralString,
			"template_string": syntax.LiteralString,
			"regex":           syntax.LiteralString,
			"true":            syntax.LiteralBool,
			"false":           syntax.LiteralBool,
			"null":            syntax.LiteralNull,
			"undefined":       syntax.LiteralNull,
		},
		Fields: map[string]map[string]string{
			"switch_statement": {"value": "condition"},
			"arrow_function":   {"parameter": "parameters"},
		},
		Builtins:          jsBuiltins,
		Idiomatic:         parser.Set("_", "$", "i", "j", "k", "x", "y"),
		SwitchFallthrough: true,
	}
	for _, t := range jsFunctionTypes {
		g.Kinds[t] = syntax.KindFunction
		g.Scopes[t] = syntax.ScopeFunction
	}

	bindPattern := func(a *parser.Annotator, n *sitter.Node, kind, hoist string, source []byte) {
		jsBindPattern(a, n, kind, hoist, source)
	}
	declarator := func(a *parser.Annotator, d *sitter.Node, kind, hoist string, source []byte) {
		name := field(d, "name")
		bindPattern(a, name, kind, hoist, source)
		if name == nil || !jsIdentifiers[name.Type()] {
			return
		}
		if t := field(d, "type"); t != nil {
			a.Set(name, syntax.AttrDeclType, typeLabel(t, source))
		}
		value := field(d, "value")
		if nullLiteral(value, g) {
			a.Flag(name, syntax.AttrNullInit)
		}
		if isJSFunction(value) {
			a.Set(value, syntax.AttrName, parser.GetNodeText(name, source))
		}
	}
	loopVar := func(n *sitter.Node, kind string) string {
		switch parentType(n) {
		case "for_statement", "for_in_statement":
			return syntax.BindLoopVar
		}
		return kind
	}

	namedFunction := func(a *parser.Annotator, n *sitter.Node, _ []byte) {
		declareOuter(a, field(n, "name"), syntax.BindFunction, syntax.HoistScope)
	}
	namedClass := func(a *parser.Annotator, n *sitter.Node, _ []byte) {
		declareOuter(a, field(n, "name"), syntax.BindClass, "")
	}
	setLoop := func(kind string) parser.Hook {
		return func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			a.Set(n, syntax.AttrLoopKind, kind)
		}
	}

	g.Hooks = map[string]parser.Hook{
		"function_declaration":           namedFunction,
		"generator_function_declaration": namedFunction,
		"class_declaration":              namedClass,
		"function_expression": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			declare(a, field(n, "name"), syntax.BindFunction, syntax.HoistScope)
		},
		"function": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			declare(a, field(n, "name"), syntax.BindFunction, syntax.HoistScope)
		},
		"class": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			declare(a, field(n, "name"), syntax.BindClass, "")
		},
		"formal_parameters": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			for _, p := range parser.NamedChildren(n) {
				bindPattern(a, p, syntax.BindParameter, "", source)
			}
		},
		"arrow_function": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			if p := field(n, "parameter"); p != nil {
				bindPattern(a, p, syntax.BindParameter, "", source)
			}
		},
		"variable_declaration": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			kind := loopVar(n, syntax.BindVariable)
			for _, d := range parser.NamedChildren(n) {
				if d.Type() == "variable_declarator" {
					declarator(a, d, kind, syntax.HoistFunction, source)
				}
			}
		},
		"lexical_declaration": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			kind := syntax.BindVariable
			if n.ChildCount() > 0 && parser.GetNodeText(n.Child(0), source) == "const" {
				kind = syntax.BindConstant
			}
			kind = loopVar(n, kind)
			for _, d := range parser.NamedChildren(n) {
				if d.Type() == "variable_declarator" {
					declarator(a, d, kind, "", source)
				}
			}
		},
		"for_statement":   setLoop(syntax.LoopFor),
		"while_statement": setLoop(syntax.LoopWhile),
		"do_statement":    setLoop(syntax.LoopDo),
		"for_in_statement": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			a.Set(n, syntax.AttrLoopKind, syntax.LoopForEach)
			left := field(n, "left")
			kind := field(n, "kind")
			if kind == nil {
				jsWritePattern(a, left)
				return
			}
			hoist := ""
			if parser.GetNodeText(kind, source) == "var" {
				hoist = syntax.HoistFunction
			}
			bindPattern(a, left, syntax.BindLoopVar, hoist, source)
		},
		"catch_clause": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			bindPattern(a, field(n, "parameter"), syntax.BindCatchVar, "", source)
		},
		"assignment_expression": func(a *parser.Annotator, n *sitter.Node, source []byte) {
			left := field(n, "left")
			jsWritePattern(a, left)
			if right := field(n, "right"); isJSFunction(right) && left != nil {
				a.Set(right, syntax.AttrName, parser.GetNodeText(left, source))
			}
		},
		"augmented_assignment_expression": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			jsWritePattern(a, field(n, "left"))
		},
		"update_expression": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			jsWritePattern(a, field(n, "argument"))
		},
		"member_expression": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			if obj := field(n, "object"); obj != nil && obj.Type() == "identifier" {
				a.Flag(obj, syntax.AttrReceiver)
			}
		},
		"import_clause": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			for _, ch := range parser.NamedChildren(n) {
				if ch.Type() == "identifier" {
					declare(a, ch, syntax.BindImport, syntax.HoistScope)
				}
			}
		},
		"namespace_import": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			for _, ch := range parser.NamedChildren(n) {
				if ch.Type() == "identifier" {
					declare(a, ch, syntax.BindImport, syntax.HoistScope)
				}
			}
		},
		"import_specifier": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			name, alias := field(n, "name"), field(n, "alias")
			if alias != nil {
				a.Flag(name, syntax.AttrNoRef)
				declare(a, alias, syntax.BindImport, syntax.HoistScope)
				return
			}
			declare(a, name, syntax.BindImport, syntax.HoistScope)
		},
		"export_specifier": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			a.Flag(field(n, "alias"), syntax.AttrNoRef)
		},
		"switch_default": func(a *parser.Annotator, n *sitter.Node, _ []byte) {
			a.Flag(n, syntax.AttrDefault)
		},
	}
	return g
}

func isJSFunction(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "function_expression", "function", "arrow_function", "generator_function":
		return true
	}
	return false
}

// jsBindPattern declares every name bound by a parameter or destructuring
// pattern.
func jsBindPattern(a *parser.Annotator, n *sitter.Node, kind, hoist string, source []byte) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		declare(a, n, kind, hoist)
	case "assignment_pattern", "object_assignment_pattern":
		jsBindPattern(a, field(n, "left"), kind, hoist, source)
	case "pair_pattern":
		jsBindPattern(a, field(n, "value"), kind, hoist, source)
	case "required_parameter", "optional_parameter":
		pattern := field(n, "pattern")
		jsBindPattern(a, pattern, kind, hoist, source)
		if t := field(n, "type"); t != nil && pattern != nil {
			a.Set(pattern, syntax.AttrDeclType, typeLabel(t, source))
		}
	case "rest_pattern", "object_pattern", "array_pattern":
		for _, ch := range parser.NamedChildren(n) {
			jsBindPattern(a, ch, kind, hoist, source)
		}
	}
}

// jsWritePattern flags every identifier an assignment target writes.
func jsWritePattern(a *parser.Annotator, n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		a.Flag(n, syntax.AttrWrite)
	case "assignment_pattern", "object_assignment_pattern":
		jsWritePattern(a, field(n, "left"))
	case "pair_pattern":
		jsWritePattern(a, field(n, "value"))
	case "rest_pattern", "object_pattern", "array_pattern", "parenthesized_expression":
		for _, ch := range parser.NamedChildren(n) {
			jsWritePattern(a, ch)
		}
	}
}
