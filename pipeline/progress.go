package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker tracks and reports progress of a stage run.
type ProgressTracker struct {
	writer         io.Writer
	stage          string
	total          int
	succeeded      int
	failed         int
	skipped        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
// total: total number of items in the stage
// reportInterval: report progress every N items
func NewProgressTracker(writer io.Writer, stage string, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		stage:          stage,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.succeeded = 0
	p.failed = 0
	p.skipped = 0
	p.lastReported = 0
}

// Succeeded records one successfully processed item.
func (p *ProgressTracker) Succeeded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.succeeded++
	p.maybeReport()
}

// Failed records one failed item.
func (p *ProgressTracker) Failed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
	p.maybeReport()
}

// Skipped records one item skipped without an external call.
func (p *ProgressTracker) Skipped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped++
	p.maybeReport()
}

// Finish prints the final progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer) // Print newline after final progress
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// maybeReport prints progress when a report interval has been crossed.
// Must be called with lock held.
func (p *ProgressTracker) maybeReport() {
	if !p.started {
		return
	}
	current := p.succeeded + p.failed + p.skipped
	if current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = current
	}
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	current := p.succeeded + p.failed + p.skipped
	elapsed := time.Since(p.startTime)
	rate := float64(current) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\r%s: %d/%d (%.1f%%) ok=%d failed=%d skipped=%d - %.1f items/s",
		p.stage, current, p.total, percentage, p.succeeded, p.failed, p.skipped, rate)
}
