package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSnippet(t *testing.T) {
	src := []byte("let a = 1;\nlet b = 2;\n")
	tests := []struct {
		name string
		span Span
		want string
	}{
		{"single line", Span{Start: Position{Offset: 0}, End: Position{Offset: 10}}, "let a = 1;"},
		{"multi line", Span{Start: Position{Offset: 0}, End: Position{Offset: 21}}, "let a = 1;..."},
		{"end past source", Span{Start: Position{Offset: 11}, End: Position{Offset: 99}}, "let b = 2;..."},
		{"start past source", Span{Start: Position{Offset: 99}, End: Position{Offset: 100}}, ""},
		{"empty", Span{Start: Position{Offset: 4}, End: Position{Offset: 4}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(src, tt.span); got != tt.want {
				t.Errorf("Snippet() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnippetTruncatesLongLines(t *testing.T) {
	src := []byte(strings.Repeat("x", 300))
	got := Snippet(src, Span{End: Position{Offset: 300}})
	if len(got) != MaxSnippetBytes+3 {
		t.Errorf("len(Snippet) = %d, want %d", len(got), MaxSnippetBytes+3)
	}
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes, so MaxSnippetBytes lands inside a rune.
	src := []byte("x" + strings.Repeat("é", 100))
	got := Snippet(src, Span{End: Position{Offset: len(src)}})
	if !utf8.ValidString(got) {
		t.Fatalf("Snippet() = %q is not valid UTF-8", got)
	}
	want := "x" + strings.Repeat("é", 59) + "..."
	if got != want {
		t.Errorf("Snippet() = %q, want %q", got, want)
	}
}

func TestTruncateBytes(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
		{"日本語", 4, "日"},
		{"日本語", 6, "日本"},
		{"日", 1, ""},
	}
	for _, tt := range tests {
		if got := TruncateBytes(tt.s, tt.n); got != tt.want {
			t.Errorf("TruncateBytes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestSpanContains(t *testing.T) {
	outer := Span{Start: Position{Offset: 0}, End: Position{Offset: 50}}
	inner := Span{Start: Position{Offset: 10}, End: Position{Offset: 20}}
	if !outer.Contains(inner) {
		t.Error("outer should contain inner")
	}
	if inner.Contains(outer) {
		t.Error("inner should not contain outer")
	}
}

func TestPositionBefore(t *testing.T) {
	a := Position{Line: 1, Column: 5}
	b := Position{Line: 2, Column: 1}
	c := Position{Line: 2, Column: 3}
	if !a.Before(b) || !b.Before(c) || c.Before(b) {
		t.Error("Position.Before ordering is wrong")
	}
}
