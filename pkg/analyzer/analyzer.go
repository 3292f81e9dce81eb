// Package analyzer holds the types shared by the analysis stages: stage
// names and the errors a builder or detector raises.
package analyzer

import "fmt"

// Stage names one step of the analysis pipeline.
type Stage string

const (
	StageParse    Stage = "parse"
	StageSymbols  Stage = "symbols"
	StageCFG      Stage = "cfg"
	StageMetrics  Stage = "metrics"
	StageDetect   Stage = "detect"
	StagePriority Stage = "prioritize"
)

func (s Stage) String() string { return string(s) }

// InvariantError reports a builder whose output broke one of its own
// guarantees. It signals a bug in the builder, not in the analyzed code.
type InvariantError struct {
	Stage  Stage
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s invariant violated: %s", e.Stage, e.Detail)
}

// Invariantf builds an InvariantError with a formatted detail.
func Invariantf(stage Stage, format string, args ...any) *InvariantError {
	return &InvariantError{Stage: stage, Detail: fmt.Sprintf(format, args...)}
}

// DetectorError reports a detector that failed while producing findings.
// Its findings are dropped; the other detectors are unaffected.
type DetectorError struct {
	Detector string
	Err      error
}

func (e *DetectorError) Error() string {
	return fmt.Sprintf("detector %s failed: %v", e.Detector, e.Err)
}

func (e *DetectorError) Unwrap() error { return e.Err }
