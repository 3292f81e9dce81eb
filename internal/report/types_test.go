package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analysis"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

func issue(sev models.Severity, typ models.IssueType) models.Issue {
	return models.Issue{ID: string(typ) + "-1", Type: typ, Severity: sev, Category: models.CategoryUnreachable}
}

func sampleFiles() []FileReport {
	return []FileReport{
		{
			Path:    "b.py",
			Issues:  []models.Issue{issue(models.SeverityInfo, models.IssueQuality)},
			Summary: models.Summarize([]models.Issue{issue(models.SeverityInfo, models.IssueQuality)}),
		},
		{
			Path:     "a.js",
			Issues:   []models.Issue{issue(models.SeverityWarning, models.IssueLogical), issue(models.SeverityError, models.IssueSyntax)},
			Degraded: true,
		},
		Failed("c.rs", errors.New("unsupported language")),
	}
}

func TestFromResult(t *testing.T) {
	res, err := analysis.Analyze(context.Background(), []byte("function f(){ return 1; g(); }"), "javascript", analysis.DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	fr := FromResult("src/f.js", res)
	if fr.Path != "src/f.js" || fr.Language != "javascript" {
		t.Errorf("FromResult() = %+v, want path and language copied", fr)
	}
	if fr.Digest != res.SourceDigest {
		t.Errorf("Digest = %q, want %q", fr.Digest, res.SourceDigest)
	}
	if len(fr.Issues) != len(res.Issues) || fr.Summary.Total != len(res.Issues) {
		t.Errorf("Issues = %d, Summary.Total = %d, want %d", len(fr.Issues), fr.Summary.Total, len(res.Issues))
	}
	if fr.Metrics == nil || fr.Metrics.Functions != 1 {
		t.Errorf("Metrics = %+v, want one function", fr.Metrics)
	}
}

func TestFailed(t *testing.T) {
	fr := Failed("x.rb", errors.New("unsupported language"))
	if fr.Error != "unsupported language" {
		t.Errorf("Error = %q", fr.Error)
	}
	if fr.Issues == nil {
		t.Error("Issues should be empty, not nil")
	}
}

func TestNew(t *testing.T) {
	r := New(Metadata{Tool: "mentor", GeneratedAt: time.Now()}, sampleFiles())

	want := []string{"a.js", "b.py", "c.rs"}
	for i, f := range r.Files {
		if f.Path != want[i] {
			t.Errorf("Files[%d] = %s, want %s", i, f.Path, want[i])
		}
	}
	if r.FilesAnalyzed != 2 || r.FilesDegraded != 1 || r.FilesFailed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", r.FilesAnalyzed, r.FilesDegraded, r.FilesFailed)
	}
	if r.Summary.Total != 3 {
		t.Errorf("Summary.Total = %d, want 3", r.Summary.Total)
	}
	if r.Summary.BySeverity[models.SeverityError] != 1 {
		t.Errorf("BySeverity[error] = %d, want 1", r.Summary.BySeverity[models.SeverityError])
	}
}

func TestFails(t *testing.T) {
	r := New(Metadata{}, sampleFiles())

	tests := []struct {
		level models.Severity
		want  bool
	}{
		{models.SeverityError, true},
		{models.SeverityWarning, true},
		{models.SeverityInfo, true},
	}
	for _, tt := range tests {
		if got := r.Fails(tt.level); got != tt.want {
			t.Errorf("Fails(%s) = %v, want %v", tt.level, got, tt.want)
		}
	}

	clean := New(Metadata{}, []FileReport{{Path: "a.py", Issues: []models.Issue{issue(models.SeverityInfo, models.IssueQuality)}}})
	if clean.Fails(models.SeverityWarning) {
		t.Error("Fails(warning) should be false when only info issues exist")
	}
}

func TestFilter(t *testing.T) {
	r := New(Metadata{}, sampleFiles()).Filter(models.SeverityWarning)

	if r.Summary.Total != 2 {
		t.Errorf("Summary.Total = %d, want 2", r.Summary.Total)
	}
	for _, f := range r.Files {
		for _, iss := range f.Issues {
			if iss.Severity == models.SeverityInfo {
				t.Errorf("%s kept an info issue", f.Path)
			}
		}
	}
	if r.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", r.FilesFailed)
	}
}
