package report

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

//go:embed template.html
var templateFS embed.FS

// RenderData contains all data needed to render the report.
type RenderData struct {
	Report     *Report
	Severities []models.Severity
	Types      []models.IssueType
	Files      []FileReport // files with at least one issue or an error
	Clean      int          // analyzed files without issues
}

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a new renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"severityClass": func(s models.Severity) string {
			switch s {
			case models.SeverityError:
				return "danger"
			case models.SeverityWarning:
				return "warning"
			default:
				return "info"
			}
		},
		"lower": strings.ToLower,
		"title": cases.Title(language.English).String,
		"label": func(v any) string {
			s, _ := v.(interface{ String() string })
			if s == nil {
				return ""
			}
			return cases.Title(language.English).String(strings.ReplaceAll(s.String(), "-", " "))
		},
		"truncatePath": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			parts := strings.Split(s, "/")
			filename := parts[len(parts)-1]
			if len(parts) <= 2 || len(filename) >= n-3 {
				return "..." + s[len(s)-n+3:]
			}
			remaining := max(n-len(filename)-4, 0)
			prefix := strings.Join(parts[:len(parts)-1], "/")
			if len(prefix) > remaining {
				prefix = prefix[len(prefix)-remaining:]
			}
			return ".../" + prefix + "/" + filename
		},
		"percent": func(a, b int) float64 {
			if b == 0 {
				return 0
			}
			return float64(a) / float64(b) * 100
		},
		"json": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
		"num": func(n any) string {
			switch v := n.(type) {
			case int:
				return printer.Sprintf("%d", v)
			case uint32:
				return printer.Sprintf("%d", v)
			case float64:
				return printer.Sprintf("%.1f", v)
			default:
				return "0"
			}
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the report as a standalone HTML page.
func (r *Renderer) Render(rep *Report, w io.Writer) error {
	return r.tmpl.Execute(w, newRenderData(rep))
}

func newRenderData(rep *Report) *RenderData {
	data := &RenderData{
		Report:     rep,
		Severities: models.Severities,
		Types:      models.IssueTypes,
	}
	for _, f := range rep.Files {
		if len(f.Issues) > 0 || f.Error != "" {
			data.Files = append(data.Files, f)
		} else {
			data.Clean++
		}
	}
	return data
}
