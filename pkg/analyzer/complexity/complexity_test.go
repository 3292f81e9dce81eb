package complexity

import (
	"context"
	"testing"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/cfg"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

func analyze(t *testing.T, language, code string, w Weights) *FileResult {
	t.Helper()
	a, err := lang.Resolve(language)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", language, err)
	}
	tree, _, err := a.Parse(context.Background(), []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	graphs, err := cfg.Build(context.Background(), tree, cfg.Options{SwitchFallthrough: a.Grammar().SwitchFallthrough})
	if err != nil {
		t.Fatalf("cfg.Build failed: %v", err)
	}
	return Calculate(tree, graphs, w)
}

func fn(t *testing.T, fc *FileResult, name string) Metrics {
	t.Helper()
	for _, f := range fc.Functions {
		if f.Name == name {
			return f.Metrics
		}
	}
	t.Fatalf("function %q not found", name)
	return Metrics{}
}

func TestCalculate_Go(t *testing.T) {
	code := `package main

func simple() int {
	return 42
}

func withIf(x int) int {
	if x > 0 {
		return x
	}
	return 0
}

func nested(x, y int) int {
	if x > 0 {
		if y > 0 {
			return x + y
		}
	}
	return 0
}
`
	result := analyze(t, "go", code, DefaultWeights())

	if result.FunctionCount != 3 {
		t.Fatalf("FunctionCount = %d, want 3", result.FunctionCount)
	}
	if len(result.Functions) != 4 {
		t.Fatalf("len(Functions) = %d, want 4 (module + 3)", len(result.Functions))
	}
	if !result.Functions[0].TopLevel {
		t.Error("first entry should be the module")
	}

	tests := []struct {
		name       string
		cyclomatic uint32
		cognitive  uint32
		nesting    int
		lines      int
		params     int
	}{
		{"simple", 1, 0, 0, 3, 0},
		{"withIf", 2, 1, 1, 6, 1},
		{"nested", 3, 3, 2, 8, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fn(t, result, tt.name)
			if m.Cyclomatic != tt.cyclomatic {
				t.Errorf("Cyclomatic = %d, want %d", m.Cyclomatic, tt.cyclomatic)
			}
			if m.Cognitive != tt.cognitive {
				t.Errorf("Cognitive = %d, want %d", m.Cognitive, tt.cognitive)
			}
			if m.MaxNesting != tt.nesting {
				t.Errorf("MaxNesting = %d, want %d", m.MaxNesting, tt.nesting)
			}
			if m.Lines != tt.lines {
				t.Errorf("Lines = %d, want %d", m.Lines, tt.lines)
			}
			if m.Parameters != tt.params {
				t.Errorf("Parameters = %d, want %d", m.Parameters, tt.params)
			}
		})
	}

	if result.MaxCyclomatic != 3 {
		t.Errorf("MaxCyclomatic = %d, want 3", result.MaxCyclomatic)
	}
	if result.AvgCyclomatic != 2 {
		t.Errorf("AvgCyclomatic = %v, want 2", result.AvgCyclomatic)
	}
	if result.TotalCognitive != 4 {
		t.Errorf("TotalCognitive = %d, want 4", result.TotalCognitive)
	}
	if result.TotalLines != 18 {
		t.Errorf("TotalLines = %d, want 18", result.TotalLines)
	}
}

func TestCyclomaticAddsOnePerIf(t *testing.T) {
	base := analyze(t, "javascript", "function f(x) { x = x + 1; return x; }", DefaultWeights())
	more := analyze(t, "javascript", "function f(x) { if (x) { x = x + 1; } return x; }", DefaultWeights())

	b, m := fn(t, base, "f").Cyclomatic, fn(t, more, "f").Cyclomatic
	if b != 1 {
		t.Errorf("branch-free Cyclomatic = %d, want 1", b)
	}
	if m != b+1 {
		t.Errorf("Cyclomatic with one if = %d, want %d", m, b+1)
	}
}

func TestCognitive(t *testing.T) {
	tests := []struct {
		name     string
		language string
		code     string
		want     uint32
		nesting  int
	}{
		{
			name:     "else if chain is flat",
			language: "javascript",
			code: `function f(s) {
  if (s > 90) {
    return "A";
  } else if (s > 80) {
    return "B";
  } else {
    return "C";
  }
}`,
			want:    3,
			nesting: 1,
		},
		{
			name:     "logical sequence counts operator changes",
			language: "javascript",
			code:     "function f(a, b, c, d) { if (a && b && c || d) { return 1; } return 0; }",
			want:     3,
			nesting:  1,
		},
		{
			name:     "nested loops",
			language: "python",
			code: `def f(rows):
    for r in rows:
        for c in r:
            if c:
                break
`,
			want:    7,
			nesting: 3,
		},
		{
			name:     "python elif",
			language: "python",
			code: `def f(x):
    if x > 1:
        return 1
    elif x > 0:
        return 2
    else:
        return 3
`,
			want:    3,
			nesting: 1,
		},
		{
			name:     "nested function raises depth",
			language: "javascript",
			code:     "function f(xs) { return xs.map(function (x) { if (x) { return 1; } return 0; }); }",
			want:     2,
			nesting:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fn(t, analyze(t, tt.language, tt.code, DefaultWeights()), "f")
			if m.Cognitive != tt.want {
				t.Errorf("Cognitive = %d, want %d", m.Cognitive, tt.want)
			}
			if m.MaxNesting != tt.nesting {
				t.Errorf("MaxNesting = %d, want %d", m.MaxNesting, tt.nesting)
			}
		})
	}
}

func TestCognitiveWeights(t *testing.T) {
	w := DefaultWeights()
	w.If = 3
	m := fn(t, analyze(t, "javascript", "function f(x) { if (x) { return 1; } return 0; }", w), "f")
	if m.Cognitive != 3 {
		t.Errorf("Cognitive = %d, want 3", m.Cognitive)
	}
}

func TestLinesSkipCommentsAndBlanks(t *testing.T) {
	code := `function f() {
  // comment

  let a = 1; // trailing
  /* block
     comment */
  return a;
}`
	m := fn(t, analyze(t, "javascript", code, DefaultWeights()), "f")
	if m.Lines != 4 {
		t.Errorf("Lines = %d, want 4", m.Lines)
	}
}

func TestParameters(t *testing.T) {
	tests := []struct {
		language string
		code     string
		want     int
	}{
		{"javascript", "function f(a, b = 1, ...rest) {}", 3},
		{"javascript", "const f = x => x;", 1},
		{"go", "package p\n\nfunc f(a, b int, c string) {}\n", 3},
		{"python", "def f(self, x, *args, **kw):\n    pass\n", 4},
	}
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			m := fn(t, analyze(t, tt.language, tt.code, DefaultWeights()), "f")
			if m.Parameters != tt.want {
				t.Errorf("Parameters = %d, want %d", m.Parameters, tt.want)
			}
		})
	}
}

func TestCalculate_EmptyTree(t *testing.T) {
	result := Calculate(nil, nil, DefaultWeights())
	if result.FunctionCount != 0 || len(result.Functions) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}

	result = Calculate(syntax.NewTree(nil, "go", nil), nil, DefaultWeights())
	if len(result.Functions) != 0 {
		t.Errorf("expected no functions, got %d", len(result.Functions))
	}
}

func TestExceedsComplexity(t *testing.T) {
	th := models.DefaultThresholds()
	tests := []struct {
		name string
		m    Metrics
		want bool
	}{
		{"within", Metrics{Cyclomatic: 10, Cognitive: 15}, false},
		{"cyclomatic", Metrics{Cyclomatic: 11, Cognitive: 1}, true},
		{"cognitive", Metrics{Cyclomatic: 1, Cognitive: 16}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.ExceedsComplexity(th); got != tt.want {
				t.Errorf("ExceedsComplexity() = %v, want %v", got, tt.want)
			}
		})
	}
}
