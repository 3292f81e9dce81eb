package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for file processing. A nil bar makes every
// method a no-op, which is what Disabled returns.
type Tracker struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
}

// Disabled returns a tracker that prints nothing.
func Disabled() *Tracker {
	return &Tracker{out: io.Discard}
}

// ForTerminal returns a tracker on stderr when stderr is a terminal, and a
// disabled one otherwise so piped output stays clean. A negative total gives
// a spinner.
func ForTerminal(label string, total int) *Tracker {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return Disabled()
	}
	if total < 0 {
		return NewSpinner(os.Stderr, label)
	}
	return NewTracker(os.Stderr, label, total)
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(w io.Writer, label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, out: w, label: label}
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, out: w, label: label}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t.bar != nil {
		_ = t.bar.Add(1)
	}
}

// OnFile adapts Tick to a per-file progress callback.
func (t *Tracker) OnFile(string) {
	t.Tick()
}

// Current returns the number of ticks so far.
func (t *Tracker) Current() int64 {
	if t.bar == nil {
		return 0
	}
	return t.bar.State().CurrentNum
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	if t.bar == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishSkipped clears the bar and prints a skip message.
func (t *Tracker) FinishSkipped(reason string) {
	t.FinishSuccess()
	if t.bar != nil {
		fmt.Fprintf(t.out, "  %s skipped (%s)\n", t.label, reason)
	}
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	t.FinishSuccess()
	if t.bar != nil {
		fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
	}
}
