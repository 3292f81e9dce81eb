package models

import (
	"strings"
	"unicode/utf8"
)

// MaxSnippetBytes caps the source excerpt attached to a Location.
const MaxSnippetBytes = 120

// Position is a point in a source file. Line and Column are 1-based,
// Offset is the 0-based byte offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Before reports whether p sorts before o by line, then column.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Span is a half-open range of source text.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether o lies inside s.
func (s Span) Contains(o Span) bool {
	return s.Start.Offset <= o.Start.Offset && o.End.Offset <= s.End.Offset
}

// Lines returns the number of source lines the span touches.
func (s Span) Lines() int {
	if s.End.Line < s.Start.Line {
		return 0
	}
	return s.End.Line - s.Start.Line + 1
}

// Location is a span plus the source text it covers.
type Location struct {
	Span    Span   `json:"span"`
	Snippet string `json:"snippet"`
}

// NewLocation builds a Location, slicing the snippet out of source.
// Multi-line snippets keep their first line followed by an ellipsis.
func NewLocation(span Span, source []byte) Location {
	return Location{Span: span, Snippet: Snippet(source, span)}
}

// Snippet extracts the excerpt of source covered by span.
func Snippet(source []byte, span Span) string {
	start, end := span.Start.Offset, span.End.Offset
	if start < 0 || start > len(source) {
		return ""
	}
	if end > len(source) {
		end = len(source)
	}
	if end < start {
		end = start
	}

	text := string(source[start:end])
	truncated := false
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimRight(text[:i], " \t\r")
		truncated = true
	}
	if len(text) > MaxSnippetBytes {
		text = TruncateBytes(text, MaxSnippetBytes)
		truncated = true
	}
	if truncated {
		text += "..."
	}
	return text
}

// TruncateBytes shortens s to at most n bytes without splitting a UTF-8
// sequence.
func TruncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
