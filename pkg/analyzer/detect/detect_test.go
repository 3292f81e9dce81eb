package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/cfg"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/complexity"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/symbols"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// newContext runs every stage up to detection over src.
func newContext(t *testing.T, language, src string, th models.Thresholds) *Context {
	t.Helper()
	a, err := lang.Resolve(language)
	require.NoError(t, err)
	g := a.Grammar()

	tree, diags, err := a.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	table, err := symbols.Build(tree, symbols.Options{Builtins: g.Builtins})
	require.NoError(t, err)
	graphs, err := cfg.Build(context.Background(), tree, cfg.Options{SwitchFallthrough: g.SwitchFallthrough})
	require.NoError(t, err)

	return &Context{
		Tree:        tree,
		Source:      []byte(src),
		Diagnostics: diags,
		Symbols:     table,
		Graphs:      graphs,
		Metrics:     complexity.Calculate(tree, graphs, complexity.DefaultWeights()),
		Thresholds:  th,
		Grammar:     g,
	}
}

func run(t *testing.T, d Detector, language, src string) []models.Issue {
	t.Helper()
	return d.Detect(newContext(t, language, src, models.DefaultThresholds()))
}

func categories(issues []models.Issue) []models.Category {
	out := make([]models.Category, 0, len(issues))
	for _, iss := range issues {
		out = append(out, iss.Category)
	}
	return out
}

func ofCategory(issues []models.Issue, cat models.Category) []models.Issue {
	var out []models.Issue
	for _, iss := range issues {
		if iss.Category == cat {
			out = append(out, iss)
		}
	}
	return out
}

func TestAllHasFixedOrder(t *testing.T) {
	var types []models.IssueType
	for _, d := range All() {
		types = append(types, d.Type())
	}
	assert.Equal(t, models.IssueTypes, types)
}

func TestDetectorsTolerateEmptyContext(t *testing.T) {
	for _, d := range All() {
		t.Run(d.Name(), func(t *testing.T) {
			issues := d.Detect(&Context{Thresholds: models.DefaultThresholds()})
			assert.NotNil(t, issues)
			assert.Empty(t, issues)
		})
	}
}

func TestSyntax(t *testing.T) {
	issues := run(t, Syntax{}, "javascript", "let x = ;\n")
	require.NotEmpty(t, issues)
	for _, iss := range issues {
		assert.Equal(t, models.IssueSyntax, iss.Type)
		assert.Equal(t, models.SeverityError, iss.Severity)
		assert.Equal(t, 1, iss.Line())
	}
	assert.Equal(t, "syntax-1", issues[0].ID)

	assert.Empty(t, run(t, Syntax{}, "javascript", "let x = 1;\n"))
}

func TestLogicalUnreachableAfterReturn(t *testing.T) {
	issues := run(t, Logical{}, "javascript", "function f(){ return 1; console.log(1); }")
	require.Len(t, issues, 1)

	iss := issues[0]
	assert.Equal(t, "logical-1", iss.ID)
	assert.Equal(t, models.CategoryUnreachable, iss.Category)
	assert.Equal(t, models.SeverityWarning, iss.Severity)
	assert.Equal(t, 1, iss.Line())
	assert.Equal(t, 25, iss.Column())
	assert.Equal(t, "console.log(1);", iss.Location.Snippet)
	assert.Equal(t, "f", iss.Function)
}

func TestLogicalConditions(t *testing.T) {
	tests := []struct {
		name string
		lang string
		src  string
		want []models.Category
	}{
		{
			name: "constant true",
			lang: "javascript",
			src:  "function f(a) {\n  if (true) { a(); }\n}\n",
			want: []models.Category{models.CategoryConstantCond},
		},
		{
			name: "assignment",
			lang: "javascript",
			src:  "function f(a) {\n  if (a = 1) { return a; }\n  return 0;\n}\n",
			want: []models.Category{models.CategoryAssignInCond},
		},
		{
			name: "identical branches",
			lang: "javascript",
			src:  "function f(a) {\n  if (a > 1) { a++; } else { a++; }\n  return a;\n}\n",
			want: []models.Category{models.CategoryIdentical},
		},
		{
			name: "identical ternary",
			lang: "javascript",
			src:  "function f(a) {\n  return a ? 1 : 1;\n}\n",
			want: []models.Category{models.CategoryIdentical},
		},
		{
			name: "self comparison",
			lang: "python",
			src:  "def f(a):\n    return a == a\n",
			want: []models.Category{models.CategorySelfComparison},
		},
		{
			name: "while false",
			lang: "python",
			src:  "def f():\n    while False:\n        print(1)\n",
			want: []models.Category{models.CategoryConstantCond},
		},
		{
			name: "clean",
			lang: "javascript",
			src:  "function f(a) {\n  if (a > 1) { return a; } else { return 0; }\n}\n",
			want: []models.Category{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := run(t, Logical{}, tt.lang, tt.src)
			assert.ElementsMatch(t, tt.want, categories(issues))
		})
	}
}

func TestLogicalInfiniteLoop(t *testing.T) {
	src := "function spin() {\n  while (true) {\n    tick();\n  }\n}\n"
	issues := run(t, Logical{}, "javascript", src)
	loops := ofCategory(issues, models.CategoryInfiniteLoop)
	require.Len(t, loops, 1)
	assert.Equal(t, 2, loops[0].Line())
	assert.Equal(t, "spin", loops[0].Function)
}

func TestLogicalLabeledBreakLeavesOuterLoop(t *testing.T) {
	src := "function f() {\n  outer: while (true) {\n    while (true) {\n      break outer;\n    }\n  }\n  return 1;\n}\n"
	assert.Empty(t, run(t, Logical{}, "javascript", src))
}

func TestRuntimeRisk(t *testing.T) {
	tests := []struct {
		name string
		lang string
		src  string
		want []models.Category
	}{
		{
			name: "unresolved",
			lang: "javascript",
			src:  "function run() {\n  return missing();\n}\n",
			want: []models.Category{models.CategoryUnresolved},
		},
		{
			name: "use before declaration",
			lang: "python",
			src:  "print(total)\ntotal = 1\n",
			want: []models.Category{models.CategoryUseBeforeDecl},
		},
		{
			name: "null member access",
			lang: "javascript",
			src:  "const user = null;\nconsole.log(user.name);\n",
			want: []models.Category{models.CategoryNullDeref},
		},
		{
			name: "null reassigned",
			lang: "javascript",
			src:  "let user = null;\nuser = {name: 1};\nconsole.log(user.name);\n",
			want: []models.Category{},
		},
		{
			name: "division by zero",
			lang: "python",
			src:  "def ratio(total):\n    return total / 0\n",
			want: []models.Category{models.CategoryDivByZero},
		},
		{
			name: "unguarded index",
			lang: "javascript",
			src:  "function pick(items, pos) {\n  return items[pos];\n}\n",
			want: []models.Category{models.CategoryUnguardedIndex},
		},
		{
			name: "guarded index",
			lang: "javascript",
			src:  "function pick(items, pos) {\n  if (pos < items.length) {\n    return items[pos];\n  }\n  return null;\n}\n",
			want: []models.Category{},
		},
		{
			name: "literal index",
			lang: "python",
			src:  "def head(items):\n    return items[0]\n",
			want: []models.Category{},
		},
		{
			name: "loop variable index",
			lang: "python",
			src:  "def total(items):\n    acc = 0\n    for pos in range(len(items)):\n        acc += items[pos]\n    return acc\n",
			want: []models.Category{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := run(t, RuntimeRisk{}, tt.lang, tt.src)
			assert.ElementsMatch(t, tt.want, categories(issues))
			for _, iss := range issues {
				assert.Equal(t, models.SeverityWarning, iss.Severity)
			}
		})
	}
}

func TestQualityHighComplexity(t *testing.T) {
	src := `function classify(value) {
  let label = "none";
  if (value > 0) {
    if (value > 10) {
      if (value > 100) {
        label = "huge";
      }
    }
  }
  return label;
}
`
	th := models.DefaultThresholds()
	th.MaxCyclomatic = 2
	th.MaxCognitive = 2

	issues := Quality{}.Detect(newContext(t, "javascript", src, th))
	require.Len(t, issues, 1)
	assert.Equal(t, models.CategoryHighComplexity, issues[0].Category)
	assert.Equal(t, models.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "classify", issues[0].Function)
	assert.Equal(t, 1, issues[0].Line())
}

func TestQualityNestingAndLength(t *testing.T) {
	src := `def walk(rows):
    for row in rows:
        if row:
            while row:
                row = row - 1
`
	th := models.DefaultThresholds()
	th.MaxNesting = 2
	th.MaxFunctionLines = 3

	issues := Quality{}.Detect(newContext(t, "python", src, th))
	assert.ElementsMatch(t, []models.Category{models.CategoryDeepNesting, models.CategoryLongFunction}, categories(issues))
}

func TestQualityDuplicateBlock(t *testing.T) {
	src := `function first(data) {
  const total = data.length;
  console.log(total);
  data.push(total);
  return data;
}

function second(data) {
  const total = data.length;
  console.log(total);
  data.push(total);
  return data;
}
`
	issues := run(t, Quality{}, "javascript", src)
	dups := ofCategory(issues, models.CategoryDuplicateBlock)
	require.Len(t, dups, 1)
	assert.Equal(t, 9, dups[0].Line())
	assert.Equal(t, "second", dups[0].Function)
	assert.Contains(t, dups[0].Message, "4 statements")
	assert.Contains(t, dups[0].Message, "lines 2-5")
}

func TestFindClones(t *testing.T) {
	src := `def f(a):
    a.x()
    a.y()
    a.z()
    a.x()
    a.y()
    a.z()
`
	ctx := newContext(t, "python", src, models.DefaultThresholds())

	clones := FindClones(ctx.Tree, 3)
	require.Len(t, clones, 1)
	assert.Equal(t, 3, clones[0].Statements)
	assert.Equal(t, 2, clones[0].Original.Start.Line)
	assert.Equal(t, 5, clones[0].Copy.Start.Line)

	assert.Empty(t, FindClones(ctx.Tree, 4))
	assert.Nil(t, FindClones(nil, 3))
}

func TestFindClonesNestedOriginal(t *testing.T) {
	src := `function f(x) {
  if (x) {
    a();
    b();
    c();
  }
  a();
  b();
  c();
}
`
	ctx := newContext(t, "javascript", src, models.DefaultThresholds())

	clones := FindClones(ctx.Tree, 3)
	require.Len(t, clones, 1)
	assert.Equal(t, 3, clones[0].Statements)
	assert.Equal(t, 3, clones[0].Original.Start.Line)
	assert.Equal(t, 7, clones[0].Copy.Start.Line)

	dups := ofCategory(run(t, Quality{}, "javascript", src), models.CategoryDuplicateBlock)
	require.Len(t, dups, 1)
	assert.Equal(t, 7, dups[0].Line())
}

func TestQualityShortIdentifiers(t *testing.T) {
	src := `def compute(q, items):
    for i in items:
        q = q + i
    try:
        return q
    except ValueError as e:
        return 0
`
	issues := run(t, Quality{}, "python", src)
	short := ofCategory(issues, models.CategoryShortIdent)
	require.Len(t, short, 1)
	assert.Contains(t, short[0].Message, `"q"`)
	assert.Equal(t, models.SeverityInfo, short[0].Severity)
	assert.Equal(t, "quality-1", short[0].ID)
}
