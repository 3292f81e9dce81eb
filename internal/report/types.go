package report

import (
	"sort"
	"time"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analysis"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
)

// Metadata contains report generation metadata.
type Metadata struct {
	Tool        string            `json:"tool"`
	Version     string            `json:"version"`
	GeneratedAt time.Time         `json:"generated_at"`
	Paths       []string          `json:"paths"`
	Thresholds  models.Thresholds `json:"thresholds"`
}

// FileMetrics is the per-file complexity digest shown next to the issues.
type FileMetrics struct {
	Functions     int     `json:"functions"`
	Lines         int     `json:"lines"`
	AvgCyclomatic float64 `json:"avg_cyclomatic"`
	AvgCognitive  float64 `json:"avg_cognitive"`
	MaxCyclomatic uint32  `json:"max_cyclomatic"`
	MaxCognitive  uint32  `json:"max_cognitive"`
}

// FileReport is the outcome of analyzing one file. Error is set when the
// file could not be read or its language is unsupported; Issues is then
// empty.
type FileReport struct {
	Path            string         `json:"path"`
	Language        string         `json:"language,omitempty"`
	Digest          string         `json:"digest,omitempty"`
	Issues          []models.Issue `json:"issues"`
	Summary         models.Summary `json:"summary"`
	Metrics         *FileMetrics   `json:"metrics,omitempty"`
	Degraded        bool           `json:"degraded,omitempty"`
	DegradedReasons []string       `json:"degraded_reasons,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// FromResult converts an analysis result into a file report.
func FromResult(path string, res *analysis.Result) FileReport {
	fr := FileReport{
		Path:            path,
		Language:        res.Language,
		Digest:          res.SourceDigest,
		Issues:          res.Issues,
		Summary:         res.Summary,
		Degraded:        res.Degraded,
		DegradedReasons: res.DegradedReasons,
	}
	if fr.Issues == nil {
		fr.Issues = []models.Issue{}
	}
	if m := res.Metrics; m != nil {
		fr.Metrics = &FileMetrics{
			Functions:     m.FunctionCount,
			Lines:         m.TotalLines,
			AvgCyclomatic: m.AvgCyclomatic,
			AvgCognitive:  m.AvgCognitive,
			MaxCyclomatic: m.MaxCyclomatic,
			MaxCognitive:  m.MaxCognitive,
		}
	}
	return fr
}

// Failed records a file that produced no analysis.
func Failed(path string, err error) FileReport {
	return FileReport{
		Path:    path,
		Issues:  []models.Issue{},
		Summary: models.Summarize(nil),
		Error:   err.Error(),
	}
}

// Report aggregates the file reports of one run.
type Report struct {
	Metadata      Metadata       `json:"metadata"`
	Files         []FileReport   `json:"files"`
	Summary       models.Summary `json:"summary"`
	FilesAnalyzed int            `json:"files_analyzed"`
	FilesDegraded int            `json:"files_degraded"`
	FilesFailed   int            `json:"files_failed"`
}

// New builds a report with files sorted by path and totals computed over
// every issue.
func New(meta Metadata, files []FileReport) *Report {
	sorted := make([]FileReport, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	r := &Report{Metadata: meta, Files: sorted}
	var all []models.Issue
	for _, f := range sorted {
		switch {
		case f.Error != "":
			r.FilesFailed++
			continue
		case f.Degraded:
			r.FilesDegraded++
		}
		r.FilesAnalyzed++
		all = append(all, f.Issues...)
	}
	r.Summary = models.Summarize(all)
	return r
}

// Fails reports whether any issue is at least as severe as level.
func (r *Report) Fails(level models.Severity) bool {
	for _, f := range r.Files {
		for _, iss := range f.Issues {
			if iss.Severity.AtLeast(level) {
				return true
			}
		}
	}
	return false
}

// Filter returns a copy of the report keeping only issues at least as severe
// as level. Totals are recomputed.
func (r *Report) Filter(level models.Severity) *Report {
	files := make([]FileReport, len(r.Files))
	for i, f := range r.Files {
		kept := make([]models.Issue, 0, len(f.Issues))
		for _, iss := range f.Issues {
			if iss.Severity.AtLeast(level) {
				kept = append(kept, iss)
			}
		}
		f.Issues = kept
		if f.Error == "" {
			f.Summary = models.Summarize(kept)
		}
		files[i] = f
	}
	return New(r.Metadata, files)
}
