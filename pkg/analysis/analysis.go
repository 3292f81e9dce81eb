// Package analysis runs the whole pipeline over one source file: parsing,
// symbol resolution, control-flow graphs, metrics, detection and
// prioritization. A failing stage degrades the result instead of failing
// the call; only an unknown language is an error.
package analysis

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/zeebo/blake3"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/cfg"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/complexity"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/detect"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/prioritize"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analyzer/symbols"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/models"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/syntax"
)

// Degraded reasons that are not tied to a failing stage.
const (
	ReasonTimeout  = "timeout"
	ReasonCanceled = "canceled"
)

// Options configures one analysis call.
type Options struct {
	Thresholds models.Thresholds
	Weights    complexity.Weights
	// Timeout bounds the call in addition to any context deadline. Zero
	// means no extra bound.
	Timeout time.Duration
	// CFGWorkers caps the goroutines building function graphs. Zero uses
	// GOMAXPROCS.
	CFGWorkers int
}

// DefaultOptions returns the default thresholds and weights with no timeout.
func DefaultOptions() Options {
	return Options{
		Thresholds: models.DefaultThresholds(),
		Weights:    complexity.DefaultWeights(),
	}
}

// Result is everything one call produced. Artifacts of a stage that failed
// are empty and the failure is listed in DegradedReasons.
type Result struct {
	Language        string                 `json:"language"`
	SourceDigest    string                 `json:"source_digest"`
	Tree            *syntax.Tree           `json:"tree,omitempty"`
	Diagnostics     []syntax.Diagnostic    `json:"diagnostics"`
	Symbols         *symbols.Table         `json:"symbols,omitempty"`
	Graphs          []*cfg.Graph           `json:"graphs"`
	Metrics         *complexity.FileResult `json:"metrics,omitempty"`
	Issues          []models.Issue         `json:"issues"`
	Summary         models.Summary         `json:"summary"`
	Degraded        bool                   `json:"degraded"`
	DegradedReasons []string               `json:"degraded_reasons,omitempty"`
}

func (r *Result) degrade(reason string) {
	for _, have := range r.DegradedReasons {
		if have == reason {
			return
		}
	}
	r.Degraded = true
	r.DegradedReasons = append(r.DegradedReasons, reason)
}

// Digest returns the hex BLAKE3 hash of source.
func Digest(source []byte) string {
	sum := blake3.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Analyzer runs analyses. The zero value is not usable; call New.
type Analyzer struct {
	logger    *slog.Logger
	resolve   func(string) (lang.Analyzer, error)
	detectors []detect.Detector
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for stage timings and degradations.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithResolver replaces the language registry lookup.
func WithResolver(fn func(string) (lang.Analyzer, error)) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.resolve = fn
		}
	}
}

// WithDetectors replaces the detector set. Findings are merged in the order
// given.
func WithDetectors(ds ...detect.Detector) Option {
	return func(a *Analyzer) {
		a.detectors = ds
	}
}

// New creates an Analyzer backed by the language registry and every
// detector. Logging is discarded unless WithLogger is given.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:    slog.New(slog.DiscardHandler),
		resolve:   lang.Resolve,
		detectors: detect.All(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAnalyzer = New()

// Analyze runs the default Analyzer.
func Analyze(ctx context.Context, source []byte, languageID string, opts Options) (*Result, error) {
	return defaultAnalyzer.Analyze(ctx, source, languageID, opts)
}

// Analyze runs the pipeline over source. The returned error is non-nil only
// when languageID has no analyzer; every other failure is reported through
// Result.Degraded.
func (a *Analyzer) Analyze(ctx context.Context, source []byte, languageID string, opts Options) (*Result, error) {
	la, err := a.resolve(languageID)
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	res := &Result{
		Language:     la.Name(),
		SourceDigest: Digest(source),
		Diagnostics:  []syntax.Diagnostic{},
		Graphs:       []*cfg.Graph{},
		Issues:       []models.Issue{},
	}
	log := a.logger.With("language", res.Language, "digest", res.SourceDigest[:12])
	g := la.Grammar()

	run := &pipeline{a: a, res: res, log: log}
	run.stages(ctx, la, source, opts)

	dctx := &detect.Context{
		Tree:        res.Tree,
		Source:      source,
		Diagnostics: res.Diagnostics,
		Symbols:     res.Symbols,
		Graphs:      res.Graphs,
		Metrics:     res.Metrics,
		Thresholds:  opts.Thresholds,
		Grammar:     g,
	}
	issues := run.detect(ctx, dctx)

	res.Issues = prioritize.Prioritize(issues)
	res.Summary = models.Summarize(res.Issues)
	log.Debug("analysis complete",
		"issues", len(res.Issues),
		"degraded", res.Degraded,
		"elapsed", time.Since(start))
	return res, nil
}

// pipeline carries the state of one Analyze call.
type pipeline struct {
	a   *Analyzer
	res *Result
	log *slog.Logger
}

// expired records a timeout or cancellation and reports whether ctx is done.
func (p *pipeline) expired(ctx context.Context) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	p.interrupted(err)
	return true
}

func (p *pipeline) interrupted(err error) {
	reason := ReasonTimeout
	if errors.Is(err, context.Canceled) {
		reason = ReasonCanceled
	}
	p.res.degrade(reason)
	p.log.Warn("analysis interrupted", "reason", reason)
}

// fail degrades the result for a stage whose output was discarded.
func (p *pipeline) fail(stage analyzer.Stage, err error) {
	p.res.degrade(fmt.Sprintf("%s: %v", stage, err))
	p.log.Warn("stage failed", "stage", stage, "error", err)
}

// stages builds every artifact in order. No stage starts after ctx expires.
func (p *pipeline) stages(ctx context.Context, la lang.Analyzer, source []byte, opts Options) {
	res := p.res
	g := la.Grammar()

	// Phase 1: parse
	if p.expired(ctx) {
		return
	}
	tree, diags, err := parse(ctx, la, source)
	if err != nil {
		if ctx.Err() != nil {
			p.interrupted(ctx.Err())
		} else {
			p.fail(analyzer.StageParse, err)
		}
		return
	}
	res.Tree = tree
	if diags != nil {
		res.Diagnostics = diags
	}
	if tree == nil {
		return
	}
	p.log.Debug("stage complete", "stage", analyzer.StageParse,
		"nodes", tree.NodeCount(), "diagnostics", len(res.Diagnostics))

	// Phase 2: symbols
	if p.expired(ctx) {
		return
	}
	table, err := symbols.Build(tree, symbols.Options{Builtins: g.Builtins})
	if err != nil {
		p.fail(analyzer.StageSymbols, err)
	} else {
		res.Symbols = table
		p.log.Debug("stage complete", "stage", analyzer.StageSymbols,
			"scopes", len(table.Scopes), "symbols", len(table.Symbols))
	}

	// Phase 3: control flow
	if p.expired(ctx) {
		return
	}
	graphs, err := cfg.Build(ctx, tree, cfg.Options{
		SwitchFallthrough: g.SwitchFallthrough,
		Workers:           opts.CFGWorkers,
	})
	switch {
	case err != nil && ctx.Err() != nil:
		p.interrupted(ctx.Err())
		return
	case err != nil:
		p.fail(analyzer.StageCFG, err)
	default:
		res.Graphs = graphs
		p.log.Debug("stage complete", "stage", analyzer.StageCFG, "graphs", len(graphs))
	}

	// Phase 4: metrics
	if p.expired(ctx) {
		return
	}
	metrics, err := measure(tree, res.Graphs, opts.Weights)
	if err != nil {
		p.fail(analyzer.StageMetrics, err)
		return
	}
	res.Metrics = metrics
	p.log.Debug("stage complete", "stage", analyzer.StageMetrics, "functions", metrics.FunctionCount)
}

func parse(ctx context.Context, la lang.Analyzer, source []byte) (tree *syntax.Tree, diags []syntax.Diagnostic, err error) {
	defer func() {
		if r := recover(); r != nil {
			tree, diags = nil, nil
			err = analyzer.Invariantf(analyzer.StageParse, "panic: %v", r)
		}
	}()
	return la.Parse(ctx, source)
}

func measure(tree *syntax.Tree, graphs []*cfg.Graph, w complexity.Weights) (res *complexity.FileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = analyzer.Invariantf(analyzer.StageMetrics, "panic: %v", r)
		}
	}()
	return complexity.Calculate(tree, graphs, w), nil
}

// detect runs every detector on its own goroutine and merges their findings
// in detector order. Detectors that fail or finish after ctx expires
// contribute nothing.
func (p *pipeline) detect(ctx context.Context, dctx *detect.Context) []models.Issue {
	ds := p.a.detectors
	if len(ds) == 0 {
		return nil
	}
	if p.expired(ctx) {
		return nil
	}

	found := make([][]models.Issue, len(ds))
	errs := make([]error, len(ds))
	wp := pool.New().WithMaxGoroutines(len(ds))
	for i, d := range ds {
		wp.Go(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			issues, err := runDetector(d, dctx)
			if ctxErr := ctx.Err(); ctxErr != nil {
				errs[i] = ctxErr
				return
			}
			found[i], errs[i] = issues, err
		})
	}
	wp.Wait()

	var merged []models.Issue
	for i, d := range ds {
		switch err := errs[i]; {
		case err == nil:
			merged = append(merged, found[i]...)
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			p.interrupted(err)
		default:
			p.res.degrade(err.Error())
			p.log.Warn("detector failed", "detector", d.Name(), "error", err)
		}
	}
	return numbered(merged)
}

func runDetector(d detect.Detector, dctx *detect.Context) (issues []models.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
			err = &analyzer.DetectorError{Detector: d.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return d.Detect(dctx), nil
}

// numbered reassigns IDs per issue type in merge order so they stay unique
// when several detectors share a type.
func numbered(issues []models.Issue) []models.Issue {
	counts := make(map[models.IssueType]int)
	out := make([]models.Issue, len(issues))
	for i, iss := range issues {
		counts[iss.Type]++
		iss.ID = fmt.Sprintf("%s-%d", iss.Type, counts[iss.Type])
		out[i] = iss
	}
	return out
}
