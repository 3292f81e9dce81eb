package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
	FormatHTML     Format = "html"
)

// Formats lists the accepted format names in help order.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatTOON, FormatHTML}

// FormatNames returns Formats joined for flag usage text.
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	case "toon":
		return FormatTOON
	case "html":
		return FormatHTML
	default:
		return FormatText
	}
}

// Renderable defines data that can render itself in multiple formats.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	// RenderData returns the underlying data for JSON and TOON serialization.
	RenderData() any
}

// HTMLRenderable is implemented by data that has a standalone HTML view.
// Other data falls back to JSON when HTML is requested.
type HTMLRenderable interface {
	RenderHTML(w io.Writer) error
}

// Formatter writes reports and tables in one format to stdout or a file.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	colored bool
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithWriter sets the destination used when no output file is given.
func WithWriter(w io.Writer) FormatterOption {
	return func(f *Formatter) {
		if w != nil {
			f.writer = w
		}
	}
}

// WithColor enables ANSI colors for text output. It has no effect when
// writing to a file.
func WithColor(colored bool) FormatterOption {
	return func(f *Formatter) {
		f.colored = colored
	}
}

// NewFormatter creates a formatter. A non-empty path is created (or
// truncated) and takes precedence over WithWriter.
func NewFormatter(format Format, path string, opts ...FormatterOption) (*Formatter, error) {
	f := &Formatter{format: format, writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	if path == "" {
		return f, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	f.writer = file
	f.file = file
	f.colored = false
	return f, nil
}

// Close closes the output file, if any.
func (f *Formatter) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

// ToFile reports whether output goes to a file.
func (f *Formatter) ToFile() bool {
	return f.file != nil
}

// Output writes data in the configured format.
func (f *Formatter) Output(data any) error {
	r, ok := data.(Renderable)
	if !ok {
		return f.outputRaw(data)
	}
	switch f.format {
	case FormatJSON:
		return writeJSON(f.writer, r.RenderData())
	case FormatTOON:
		return writeTOON(f.writer, r.RenderData())
	case FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	case FormatHTML:
		if h, ok := r.(HTMLRenderable); ok {
			return h.RenderHTML(f.writer)
		}
		return writeJSON(f.writer, r.RenderData())
	default:
		return r.RenderText(f.writer, f.colored)
	}
}

func (f *Formatter) outputRaw(data any) error {
	switch f.format {
	case FormatTOON:
		return writeTOON(f.writer, data)
	case FormatMarkdown:
		fmt.Fprintln(f.writer, "```json")
		if err := writeJSON(f.writer, data); err != nil {
			return err
		}
		_, err := fmt.Fprintln(f.writer, "```")
		return err
	default:
		return writeJSON(f.writer, data)
	}
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// writeTOON writes data in Token-Oriented Object Notation.
func writeTOON(w io.Writer, data any) error {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// Warning prints a one-line warning to the formatter's writer.
func (f *Formatter) Warning(format string, args ...any) {
	f.message(color.FgYellow, "WARNING", format, args...)
}

// Error prints a one-line error to the formatter's writer.
func (f *Formatter) Error(format string, args ...any) {
	f.message(color.FgRed, "ERROR", format, args...)
}

func (f *Formatter) message(attr color.Attribute, prefix, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if f.colored {
		color.New(attr).Fprintln(f.writer, msg)
		return
	}
	fmt.Fprintf(f.writer, "%s: %s\n", prefix, msg)
}

// SeverityColor returns a colored string based on severity level.
func SeverityColor(severity, text string) string {
	switch strings.ToLower(severity) {
	case "error":
		return color.RedString(text)
	case "warning":
		return color.YellowString(text)
	case "info":
		return color.CyanString(text)
	default:
		return text
	}
}

// Table is a Renderable table with headers, rows, and optional footer.
// Data, when set, replaces the rows in JSON and TOON output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	Data    any
}

// NewTable creates a table that wraps structured data for serialization.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows, Footer: footer, Data: data}
}

func (t *Table) RenderData() any {
	if t.Data != nil {
		return t.Data
	}
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		out = append(out, m)
	}
	return out
}

var plainTable = []tablewriter.Option{
	tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.On},
		},
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		Footer: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
	}),
	tablewriter.WithRendition(tw.Rendition{
		Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
		Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
	}),
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	if t.Title != "" {
		title := t.Title
		if colored {
			title = color.New(color.Bold).Sprint(t.Title)
		}
		fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", len(t.Title)))
	}

	table := tablewriter.NewTable(w, plainTable...)
	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		footer := make([]any, len(t.Footer))
		for i, cell := range t.Footer {
			footer[i] = cell
		}
		table.Footer(footer...)
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	writeMarkdownRow(w, t.Headers)
	seps := make([]string, len(t.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range t.Rows {
		writeMarkdownRow(w, row)
	}
	if len(t.Footer) > 0 {
		writeMarkdownRow(w, t.Footer)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeMarkdownRow(w io.Writer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
}
