package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeAnalyzeSource() string {
	return `Reviews a single snippet or file of source code passed inline and reports syntax, logical, and quality issues with line and column positions.

USE WHEN:
- Reviewing code a learner just wrote before explaining it
- Checking a snippet that does not exist on disk
- Trying stricter or looser thresholds on the same code
- Confirming that a suggested fix removed an issue

INTERPRETING RESULTS:
- type syntax: the parser could not read part of the code (syntax-error, missing-token, parse-failure)
- type logical: likely bugs (unreachable-code, infinite-loop, constant-condition, identical-branches, assignment-in-condition, self-comparison)
- type runtime-risk: code that may fail when run (unresolved-reference, use-before-declaration, unguarded-index, null-deref-risk, division-by-zero)
- type quality: maintainability problems (high-complexity, deep-nesting, long-function, duplicate-block, short-identifier)
- severity error > warning > info; fix errors first
- degraded=true means analysis stopped early (timeout, canceled, or a failed stage) and the issue list may be incomplete
- Issue ids are numbered per type in source order (syntax-1, logical-1, runtime-risk-1, quality-1)

METRICS RETURNED:
- issues: id, type, severity, category, location (line, column, snippet), message, function
- summary: total plus counts by type and by severity
- metrics: function count, lines, average and maximum cyclomatic and cognitive complexity`
}

func describeAnalyzePaths() string {
	return `Analyzes files, directories, or glob patterns on disk and reports issues per file.

USE WHEN:
- Reviewing a whole project or module a learner is working on
- Finding the files that need attention first
- Producing an overview before drilling into single files with analyze_source

INTERPRETING RESULTS:
- Files are sorted by path; files with the most errors deserve attention first
- files_failed counts files that could not be read or whose language is unsupported; their error field says why
- files_degraded counts files whose analysis was cut short
- Directories honor the project's exclude patterns and .gitignore; explicitly named files are always analyzed
- Use min_severity=warning to hide informational findings on large codebases

METRICS RETURNED:
- files: per-file issues, summary, complexity metrics, degraded flag, error
- summary: totals by type and severity across all files
- files_analyzed, files_degraded, files_failed`
}

func describeListLanguages() string {
	return `Lists the languages the analyzer understands, with their file extensions and supported checks.

USE WHEN:
- Deciding which language identifier to pass to analyze_source
- Explaining why a file was skipped as unsupported

INTERPRETING RESULTS:
- name is the identifier accepted by analyze_source
- extensions map files on disk to a language
- features lists language traits the checks account for, such as hoisting, block-scope, or switch-fallthrough

METRICS RETURNED:
- languages: name, extensions, features`
}
