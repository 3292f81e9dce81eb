// Package lang provides the registry of language analyzers. Each analyzer
// wraps a tree-sitter grammar and the rules that normalize its output.
package lang

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/parser"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// ErrUnsupportedLanguage is matched by every UnsupportedLanguageError.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageError reports a language identifier with no analyzer.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Language)
}

// Is makes errors.Is(err, ErrUnsupportedLanguage) hold.
func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// Feature tags a language capability that changes how analysis behaves.
type Feature string

const (
	FeatureBlockScope        Feature = "block-scope"
	FeatureFunctionScope     Feature = "function-scope"
	FeatureHoisting          Feature = "hoisting"
	FeatureSwitchFallthrough Feature = "switch-fallthrough"
	FeatureLoopElse          Feature = "loop-else"
	FeatureExceptions        Feature = "exceptions"
	FeatureStaticTypes       Feature = "static-types"
)

func (f Feature) String() string { return string(f) }

// Analyzer parses one language into a normalized tree.
type Analyzer interface {
	// Name is the canonical language identifier.
	Name() string
	// Parse never fails on malformed input; it returns a partial tree and
	// diagnostics. The error is non-nil only when ctx ends first.
	Parse(ctx context.Context, source []byte) (*syntax.Tree, []syntax.Diagnostic, error)
	// Features lists the declared capability tags in a stable order.
	Features() []Feature
	// Extensions lists the file extensions handled by the analyzer.
	Extensions() []string
	// Grammar exposes the normalization rules used by later stages.
	Grammar() *parser.Grammar
}

// treeSitterAnalyzer is the Analyzer shared by every registered language.
type treeSitterAnalyzer struct {
	grammar    *parser.Grammar
	features   []Feature
	extensions []string
}

func (a *treeSitterAnalyzer) Name() string { return a.grammar.Name }

func (a *treeSitterAnalyzer) Parse(ctx context.Context, source []byte) (*syntax.Tree, []syntax.Diagnostic, error) {
	p := parser.New()
	defer p.Close()
	return p.Parse(ctx, source, a.grammar)
}

func (a *treeSitterAnalyzer) Features() []Feature {
	return append([]Feature(nil), a.features...)
}

func (a *treeSitterAnalyzer) Extensions() []string {
	return append([]string(nil), a.extensions...)
}

func (a *treeSitterAnalyzer) Grammar() *parser.Grammar { return a.grammar }

// HasFeature reports whether an analyzer declares f.
func HasFeature(a Analyzer, f Feature) bool {
	for _, x := range a.Features() {
		if x == f {
			return true
		}
	}
	return false
}

// registry is populated by init() functions in per-language files and is
// read-only afterwards.
var (
	registry = map[string]Analyzer{}
	aliases  = map[string]string{}
)

func register(a Analyzer, alias ...string) {
	registry[a.Name()] = a
	for _, al := range alias {
		aliases[al] = a.Name()
	}
}

// Resolve returns the analyzer for a language identifier or alias.
// Lookup is case-insensitive. Unknown identifiers fail with an
// *UnsupportedLanguageError.
func Resolve(id string) (Analyzer, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	if a, ok := registry[key]; ok {
		return a, nil
	}
	return nil, &UnsupportedLanguageError{Language: id}
}

// ForPath resolves an analyzer from a file extension.
func ForPath(path string) (Analyzer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range Languages() {
		for _, e := range a.Extensions() {
			if e == ext {
				return a, nil
			}
		}
	}
	return nil, &UnsupportedLanguageError{Language: ext}
}

// Languages returns the registered analyzers sorted by name.
func Languages() []Analyzer {
	out := make([]Analyzer, 0, len(registry))
	for _, a := range registry {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns the registered language identifiers in sorted order.
func Names() []string {
	langs := Languages()
	out := make([]string, len(langs))
	for i, a := range langs {
		out[i] = a.Name()
	}
	return out
}
