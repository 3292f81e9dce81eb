package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/parser"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

func init() {
	register(&treeSitterAnalyzer{
		grammar: typescriptGrammar(),
		features: []Feature{
			FeatureBlockScope, FeatureFunctionScope, FeatureHoisting,
			FeatureSwitchFallthrough, FeatureExceptions, FeatureStaticTypes,
		},
		extensions: []string{".ts", ".mts", ".cts"},
	}, "ts")
}

func typescriptGrammar() *parser.Grammar {
	g := javascriptGrammar("typescript", typescript.GetLanguage())

	g.Kinds["abstract_class_declaration"] = syntax.KindClass
	for _, t := range []string{
		"interface_declaration", "type_alias_declaration", "enum_declaration",
		"ambient_declaration", "abstract_method_signature", "function_signature",
	} {
		g.Kinds[t] = syntax.KindStatement
	}
	g.Transparent["non_null_expression"] = true
	for _, t := range []string{
		"function_signature", "method_signature", "abstract_method_signature",
		"call_signature", "construct_signature", "function_type", "constructor_type",
	} {
		g.Scopes[t] = syntax.ScopeFunction
	}

	g.Hooks["abstract_class_declaration"] = g.Hooks["class_declaration"]
	g.Hooks["enum_declaration"] = func(a *parser.Annotator, n *sitter.Node, _ []byte) {
		declareOuter(a, field(n, "name"), syntax.BindConstant, syntax.HoistScope)
	}
	g.Hooks["function_signature"] = func(a *parser.Annotator, n *sitter.Node, _ []byte) {
		declareOuter(a, field(n, "name"), syntax.BindFunction, syntax.HoistScope)
	}
	return g
}
