package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/solenne/dredge/pkg/scanjob"
)

// Options configures the progress printer.
type Options struct {
	// Source returns the snapshot to render.
	Source func() scanjob.Snapshot

	// Folder is the folder reference being scanned (for display).
	Folder string

	// Interval is the scan's poll cadence (for display).
	Interval time.Duration

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to refresh the display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Printer renders a running scan's snapshots as single-line terminal output,
// refreshing in place. It reads snapshots on its own schedule and never
// blocks the scan.
type Printer struct {
	opts Options

	mu      sync.Mutex
	started bool
	stopped bool
	start   time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewPrinter creates a new progress printer.
func NewPrinter(opts Options) *Printer {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}
	if opts.Source == nil {
		opts.Source = func() scanjob.Snapshot { return scanjob.Snapshot{} }
	}

	return &Printer{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins rendering. Calling Start twice is a no-op.
func (p *Printer) Start() {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.start = time.Now()
	p.mu.Unlock()

	fmt.Fprintf(p.opts.Output, "[dredge] Scanning folder: %s | Poll interval: %s\n",
		p.opts.Folder, p.opts.Interval)

	go p.renderLoop()
}

// Stop ends rendering and prints the final status line. It returns once the
// line is written, and is idempotent.
func (p *Printer) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	p.mu.Unlock()

	if !started {
		return
	}
	close(p.stopCh)
	<-p.doneCh
}

// renderLoop refreshes the display until stopped.
func (p *Printer) renderLoop() {
	ticker := time.NewTicker(p.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			p.printFinal()
			close(p.doneCh)
			return
		case <-ticker.C:
			p.printLine()
		}
	}
}

// printLine renders the current snapshot, overwriting the previous line.
func (p *Printer) printLine() {
	snap := p.opts.Source()

	line := fmt.Sprintf("\r[dredge] Progress: %3d%% | %s", snap.Progress, snap.State)
	if snap.Message != "" {
		line += " | " + snap.Message
	}
	// Trailing spaces clear leftovers from a longer previous line.
	fmt.Fprint(p.opts.Output, line+"    ")
}

// printFinal renders the terminal status and a closing summary.
func (p *Printer) printFinal() {
	snap := p.opts.Source()
	elapsed := formatDuration(time.Since(p.start))

	switch snap.State {
	case scanjob.StateCompleted:
		fmt.Fprintf(p.opts.Output, "\r[dredge] Completed: %s | 100%% | Total time: %s    \n",
			snap.Message, elapsed)
	case scanjob.StateFailed:
		reason := snap.Message
		if reason == "" {
			reason = snap.LastError
		}
		fmt.Fprintf(p.opts.Output, "\r[dredge] Failed: %s | Total time: %s    \n",
			reason, elapsed)
	default:
		fmt.Fprintf(p.opts.Output, "\r[dredge] Stopped at %d%% | Total time: %s    \n",
			snap.Progress, elapsed)
	}
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}

	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	val := float64(b) / float64(div)

	suffix := []string{"KiB", "MiB", "GiB", "TiB"}[exp]
	if val < 10 {
		return fmt.Sprintf("%.1f %s", val, suffix)
	}
	return fmt.Sprintf("%.0f %s", val, suffix)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}

// FormatDuration is exported for use by other packages.
func FormatDuration(d time.Duration) string {
	return formatDuration(d)
}
