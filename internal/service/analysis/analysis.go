// Package analysis runs the single-file pipeline over sets of files,
// applying the project config, the result cache and per-file parallelism.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/cache"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/fileproc"
	"github.com/MohammedMohsini/AI-Coding-Mentor/internal/report"
	core "github.com/MohammedMohsini/AI-Coding-Mentor/pkg/analysis"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/config"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
)

// ErrFileTooLarge is reported for files above analysis.max_file_size.
var ErrFileTooLarge = errors.New("file exceeds max_file_size")

// Service orchestrates code analysis operations.
type Service struct {
	config   *config.Config
	cache    *cache.Cache
	logger   *slog.Logger
	analyzer *core.Analyzer
	version  string
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithCache sets the report cache. Without it nothing is cached.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the logger passed down to the pipeline.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version recorded in report metadata.
func WithVersion(v string) Option {
	return func(s *Service) {
		s.version = v
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache, _ = cache.New("", 0, false)
	}
	s.analyzer = core.New(core.WithLogger(s.logger))
	return s
}

// Config returns the configuration the service analyzes with.
func (s *Service) Config() *config.Config {
	return s.config
}

// FilesOptions configures AnalyzeFiles.
type FilesOptions struct {
	// Paths are the user arguments recorded in the report metadata.
	Paths      []string
	OnProgress fileproc.ProgressFunc
}

// AnalyzeFiles analyzes files in parallel. Files that cannot be analyzed
// are listed in the report with their error; only an invalid config or a
// canceled context fails the call.
func (s *Service) AnalyzeFiles(ctx context.Context, files []string, opts FilesOptions) (*report.Report, error) {
	aopts, err := s.config.AnalysisOptions()
	if err != nil {
		return nil, err
	}
	optsKey := cache.OptionsKey(aopts)

	start := time.Now()
	reports, errs := fileproc.ForEachFile(ctx, files, fileproc.Options{
		Workers:    s.config.Analysis.Parallelism,
		OnProgress: opts.OnProgress,
	}, func(ctx context.Context, path string) (report.FileReport, error) {
		return s.analyzeFile(ctx, path, aopts, optsKey)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs != nil {
		for _, pe := range errs.Errors {
			reports = append(reports, report.Failed(pe.Path, pe.Err))
		}
	}

	rep := report.New(report.Metadata{
		Tool:        "mentor",
		Version:     s.version,
		GeneratedAt: time.Now().UTC(),
		Paths:       opts.Paths,
		Thresholds:  aopts.Thresholds,
	}, reports)
	s.logger.Debug("files analyzed",
		"files", len(files),
		"issues", rep.Summary.Total,
		"failed", rep.FilesFailed,
		"elapsed", time.Since(start))
	return rep, nil
}

// AnalyzeFile analyzes one file. Read and language errors are returned
// rather than folded into the report.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (report.FileReport, error) {
	aopts, err := s.config.AnalysisOptions()
	if err != nil {
		return report.FileReport{}, err
	}
	return s.analyzeFile(ctx, path, aopts, cache.OptionsKey(aopts))
}

func (s *Service) analyzeFile(ctx context.Context, path string, aopts core.Options, optsKey string) (report.FileReport, error) {
	la, err := lang.ForPath(path)
	if err != nil {
		return report.FileReport{}, err
	}
	if limit := s.config.Analysis.MaxFileSize; limit > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return report.FileReport{}, err
		}
		if info.Size() > limit {
			return report.FileReport{}, fmt.Errorf("%w (%d > %d bytes)", ErrFileTooLarge, info.Size(), limit)
		}
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return report.FileReport{}, err
	}

	if fr, ok := s.cache.Report(path, source, optsKey); ok {
		s.logger.Debug("cache hit", "path", path)
		return fr, nil
	}

	res, err := s.analyzer.Analyze(ctx, source, la.Name(), aopts)
	if err != nil {
		return report.FileReport{}, err
	}
	fr := report.FromResult(path, res)
	if err := s.cache.StoreReport(path, source, optsKey, fr); err != nil {
		s.logger.Warn("cache write failed", "path", path, "error", err)
	}
	return fr, nil
}

// Forget drops the cached report for path, used when a file is removed.
func (s *Service) Forget(path string) {
	aopts, err := s.config.AnalysisOptions()
	if err != nil {
		return
	}
	if err := s.cache.Invalidate(path, cache.OptionsKey(aopts)); err != nil {
		s.logger.Debug("cache invalidate failed", "path", path, "error", err)
	}
}

// Options returns the per-file analysis options derived from the config.
func (s *Service) Options() (core.Options, error) {
	return s.config.AnalysisOptions()
}

// AnalyzeSource analyzes an in-memory buffer without touching the cache.
func (s *Service) AnalyzeSource(ctx context.Context, source []byte, language string, opts core.Options) (*core.Result, error) {
	return s.analyzer.Analyze(ctx, source, language, opts)
}
