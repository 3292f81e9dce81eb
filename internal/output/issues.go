package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/report"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// IssueReport renders an analysis report in every output format.
type IssueReport struct {
	Report *report.Report
}

// NewIssueReport wraps r for the formatter.
func NewIssueReport(r *report.Report) *IssueReport {
	return &IssueReport{Report: r}
}

func (ir *IssueReport) RenderData() any {
	return ir.Report
}

func (ir *IssueReport) RenderText(w io.Writer, colored bool) error {
	for _, f := range ir.Report.Files {
		if f.Error == "" && len(f.Issues) == 0 && !f.Degraded {
			continue
		}
		if err := fileTable(f, colored).RenderText(w, colored); err != nil {
			return err
		}
		if f.Error != "" {
			msg := "skipped: " + f.Error
			if colored {
				msg = color.RedString(msg)
			}
			fmt.Fprintln(w, msg)
			fmt.Fprintln(w)
		}
	}

	line := ir.summaryLine()
	if colored {
		if worst := ir.worst(); worst != "" {
			line = SeverityColor(string(worst), line)
		} else {
			line = color.GreenString(line)
		}
	}
	fmt.Fprintln(w, line)
	return nil
}

func (ir *IssueReport) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# %s report\n\n", title(ir.Report.Metadata.Tool))
	fmt.Fprintf(w, "%s\n\n", ir.summaryLine())

	for _, f := range ir.Report.Files {
		if f.Error == "" && len(f.Issues) == 0 && !f.Degraded {
			continue
		}
		if f.Error != "" {
			fmt.Fprintf(w, "## %s\n\nSkipped: %s\n\n", f.Path, f.Error)
			continue
		}
		t := fileTable(f, false)
		for _, row := range t.Rows {
			row[4] = "`" + strings.ReplaceAll(row[4], "|", `\|`) + "`"
			row[3] = strings.ReplaceAll(row[3], "|", `\|`)
		}
		if err := t.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

// RenderHTML writes the report as a standalone HTML page.
func (ir *IssueReport) RenderHTML(w io.Writer) error {
	r, err := report.NewRenderer()
	if err != nil {
		return err
	}
	return r.Render(ir.Report, w)
}

func fileTable(f report.FileReport, colored bool) *Table {
	heading := f.Path
	if f.Language != "" {
		heading += " (" + f.Language + ")"
	}
	if f.Degraded {
		heading += " [partial: " + strings.Join(f.DegradedReasons, "; ") + "]"
	}

	rows := make([][]string, 0, len(f.Issues))
	for _, iss := range f.Issues {
		sev := string(iss.Severity)
		if colored {
			sev = SeverityColor(sev, sev)
		}
		msg := iss.Message
		if iss.Function != "" {
			msg += " (in " + iss.Function + ")"
		}
		rows = append(rows, []string{
			strconv.Itoa(iss.Line()) + ":" + strconv.Itoa(iss.Column()),
			sev,
			string(iss.Category),
			msg,
			iss.Location.Snippet,
		})
	}
	return NewTable(heading, []string{"Line", "Severity", "Category", "Message", "Code"}, rows, nil, f)
}

func (ir *IssueReport) summaryLine() string {
	r := ir.Report
	s := r.Summary
	line := fmt.Sprintf("%d issues (%d errors, %d warnings, %d info) in %d files",
		s.Total,
		s.BySeverity[models.SeverityError],
		s.BySeverity[models.SeverityWarning],
		s.BySeverity[models.SeverityInfo],
		r.FilesAnalyzed)
	if r.FilesFailed > 0 {
		line += fmt.Sprintf(", %d skipped", r.FilesFailed)
	}
	if r.FilesDegraded > 0 {
		line += fmt.Sprintf(", %d partial", r.FilesDegraded)
	}
	return line
}

// worst returns the most serious severity present, or "" for a clean report.
func (ir *IssueReport) worst() models.Severity {
	for _, sv := range models.Severities {
		if ir.Report.Summary.BySeverity[sv] > 0 {
			return sv
		}
	}
	return ""
}

func title(s string) string {
	if s == "" {
		return "Analysis"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
