package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/config"
	"github.com/MohammedMohsini/AI-Coding-Mentor/pkg/lang"
)

// Scanner finds source files that a registered language analyzer accepts.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns builds the matcher from config patterns and, when
// enabled, every .gitignore file below the repository root.
func (s *Scanner) loadExcludePatterns(root string) {
	s.matchers = s.matchers[:0]
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil {
				patterns = append(patterns, rebase(gitPatterns, gitRoot, root)...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// rebase keeps gitignore patterns usable when the scan root is below the
// repository root. Patterns are matched against paths relative to root, so
// anything read from above it is re-read relative to the scan root instead.
func rebase(patterns []gitignore.Pattern, gitRoot, root string) []gitignore.Pattern {
	absRoot, err := filepath.Abs(root)
	if err != nil || filepath.Clean(absRoot) == filepath.Clean(gitRoot) {
		return patterns
	}
	rel, err := filepath.Rel(gitRoot, absRoot)
	if err != nil || strings.HasPrefix(rel, "..") {
		return patterns
	}
	prefix := strings.Split(rel, string(filepath.Separator))
	out := make([]gitignore.Pattern, len(patterns))
	for i, p := range patterns {
		out[i] = prefixed{p: p, prefix: prefix}
	}
	return out
}

// prefixed matches a repository-relative pattern against scan-relative paths.
type prefixed struct {
	p      gitignore.Pattern
	prefix []string
}

func (p prefixed) Match(path []string, isDir bool) gitignore.MatchResult {
	full := make([]string, 0, len(p.prefix)+len(path))
	full = append(full, p.prefix...)
	full = append(full, path...)
	return p.p.Match(full, isDir)
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}

	pathParts := strings.Split(path, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// accepts reports whether a file name maps to an enabled language and is not
// excluded by extension.
func (s *Scanner) accepts(path string) bool {
	if slices.Contains(s.config.Exclude.Extensions, filepath.Ext(path)) {
		return false
	}
	a, err := lang.ForPath(path)
	if err != nil {
		return false
	}
	return s.config.LanguageEnabled(a.Name())
}

// ScanDir recursively scans a directory for source files.
// Validates that all paths stay within the root directory to prevent traversal attacks.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(root)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if slices.Contains(s.config.Exclude.Dirs, d.Name()) || s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(relPath, false) {
			return nil
		}
		if s.accepts(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// Expand resolves command-line arguments into a sorted, de-duplicated list
// of source files. Arguments may be files, directories or doublestar globs
// such as "src/**/*.py".
func (s *Scanner) Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(paths ...string) {
		for _, p := range paths {
			p = filepath.Clean(p)
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
		}
	}

	for _, arg := range args {
		if isGlob(arg) {
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				if !s.config.ShouldExclude(m) && s.accepts(m) {
					add(m)
				}
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := s.ScanDir(arg)
			if err != nil {
				return nil, err
			}
			add(found...)
			continue
		}
		if s.accepts(arg) {
			add(arg)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}

// GroupByLanguage groups files by the language that analyzes them.
func (s *Scanner) GroupByLanguage(files []string) map[string][]string {
	groups := make(map[string][]string)
	for _, f := range files {
		if a, err := lang.ForPath(f); err == nil {
			groups[a.Name()] = append(groups[a.Name()], f)
		}
	}
	return groups
}
