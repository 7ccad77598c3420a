package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Options configures the reporter.
type Options struct {
	// TotalGroups is the number of 4-nibble prefix groups in the run.
	TotalGroups int

	// Workers is the number of parallel fetch workers (for display).
	Workers int

	// Output is where all lines and the bar are written.
	// Default: os.Stderr
	Output io.Writer

	// Quiet disables the progress bar. Warnings and errors still print.
	Quiet bool

	// Verbosity gates Logf: a message prints when its level is at most
	// Verbosity.
	Verbosity int
}

// Reporter serializes console output and tracks run counters.
type Reporter struct {
	opts Options

	mu  sync.Mutex // guards bar and output
	bar *progressbar.ProgressBar

	completedGroups atomic.Int64
	totalRecords    atomic.Int64
	startTime       time.Time
}

var (
	warnColor  = color.New(color.FgYellow, color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
)

// NewReporter creates a reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &Reporter{opts: opts}
}

// Start begins the progress display.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	if r.opts.Quiet {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bar = progressbar.NewOptions(r.opts.TotalGroups,
		progressbar.OptionSetWriter(r.opts.Output),
		progressbar.OptionSetDescription(fmt.Sprintf("fetching (%d workers)", r.opts.Workers)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionThrottle(250*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// GroupCompleted records one fully fetched prefix group and its record
// count.
func (r *Reporter) GroupCompleted(records int) {
	r.completedGroups.Add(1)
	r.totalRecords.Add(int64(records))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Add(1)
	}
}

// Groups returns the number of completed groups so far.
func (r *Reporter) Groups() int64 {
	return r.completedGroups.Load()
}

// Records returns the number of records collected so far.
func (r *Reporter) Records() int64 {
	return r.totalRecords.Load()
}

// Logf prints a line when level is at most the configured verbosity.
func (r *Reporter) Logf(level int, format string, args ...any) {
	if level > r.opts.Verbosity {
		return
	}
	r.printLine(func(w io.Writer) {
		fmt.Fprintf(w, format+"\n", args...)
	})
}

// Warnf prints a highlighted warning line regardless of verbosity.
func (r *Reporter) Warnf(format string, args ...any) {
	r.printLine(func(w io.Writer) {
		warnColor.Fprintf(w, "WARNING: "+format+"\n", args...)
	})
}

// Errorf prints a highlighted error line regardless of verbosity.
func (r *Reporter) Errorf(format string, args ...any) {
	r.printLine(func(w io.Writer) {
		errorColor.Fprintf(w, "ERROR: "+format+"\n", args...)
	})
}

// printLine writes one line under the output lock, clearing the bar first
// so the line does not land mid-render.
func (r *Reporter) printLine(write func(io.Writer)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Clear()
	}
	write(r.opts.Output)
}

// Finish closes the bar and prints a summary line.
func (r *Reporter) Finish() {
	r.mu.Lock()
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
	r.mu.Unlock()

	elapsed := time.Since(r.startTime).Round(time.Millisecond)
	r.Logf(1, "collected %s hashes in %s groups (%s)",
		humanize.Comma(r.totalRecords.Load()),
		humanize.Comma(r.completedGroups.Load()),
		elapsed,
	)
}
