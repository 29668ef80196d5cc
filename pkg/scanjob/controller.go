package scanjob

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is the status poll cadence. The cadence is fixed, not
// adaptive: a low-frequency status check does not need backoff.
const DefaultPollInterval = 2 * time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithPollInterval overrides the poll cadence. Non-positive values are
// ignored.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns a single scan job at a time: it submits the job, polls its
// status at a fixed cadence, reconciles terminal states, and exposes the
// artifact URL once the job completes.
//
// The job record is guarded by a mutex; readers take value copies via
// Snapshot. Each submission gets its own poll-loop goroutine and a
// generation number. A result is applied only if its generation is still
// current and its loop has not been cancelled, so a superseded job's
// response can never overwrite the active job.
type Controller struct {
	svc      Service
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	job    Snapshot
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Controller in the Idle state.
func New(svc Service, opts ...Option) *Controller {
	c := &Controller{
		svc:      svc,
		interval: DefaultPollInterval,
		logger:   slog.Default(),
		job:      Snapshot{State: StateIdle},
		done:     closedChan(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit validates the folder reference, creates a remote scan job, and
// starts the poll loop.
//
// An empty folder returns ErrFolderRequired without a remote call and
// without disturbing the current job; only the error surface is set. A
// non-empty Submit supersedes the previous job: its polling is cancelled
// before the new request is issued and any of its responses still in flight
// are discarded.
//
// On submission failure the job ends in Failed with LastError set and
// polling never starts. On success the job is Running and polls until a
// terminal state, Stop, a newer Submit, or cancellation of ctx.
//
// Returns an error if:
//   - The folder reference is empty (ErrFolderRequired)
//   - A newer submission replaced this one mid-flight (ErrSuperseded)
//   - The remote call failed (wrapped transport error)
func (c *Controller) Submit(ctx context.Context, folder string) error {
	if folder == "" {
		c.mu.Lock()
		c.job.LastError = ErrFolderRequired.Error()
		c.mu.Unlock()
		return ErrFolderRequired
	}

	c.mu.Lock()
	c.cancelLocked()
	c.closeDoneLocked()
	c.gen++
	gen := c.gen
	c.job = Snapshot{Folder: folder, State: StateSubmitting}
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.logger.Debug("submitting scan", "folder", folder)
	jobID, err := c.svc.StartScan(ctx, folder)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return ErrSuperseded
	}

	if err != nil {
		c.job.State = StateFailed
		c.job.LastError = err.Error()
		c.closeDoneLocked()
		return fmt.Errorf("scanjob: submit: %w", err)
	}

	c.job.JobID = jobID
	c.job.State = StateRunning

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.pollLoop(loopCtx, gen, jobID)

	c.logger.Debug("scan accepted", "job_id", jobID, "interval", c.interval)
	return nil
}

// Stop cancels any active polling. It is idempotent and safe in any state;
// stopping an idle controller is a no-op. The job record is not modified:
// cancellation means remaining local effects are ignored, not that the job
// failed. In-flight responses resolving after Stop are discarded, and the
// remote job itself keeps running server-side.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.closeDoneLocked()
}

// ExportURL returns the artifact download URL for the completed job. In any
// state other than Completed it returns ErrNotCompleted. It never changes
// controller state; retrieval is a one-shot navigation the state machine
// does not track.
func (c *Controller) ExportURL() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.job.State != StateCompleted || c.job.JobID == "" {
		return "", ErrNotCompleted
	}
	return c.svc.ExportURL(c.job.JobID), nil
}

// Snapshot returns a copy of the current job record.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.job
}

// Done returns a channel closed once the current job reaches a terminal
// state or its polling is cancelled. Before any submission the channel is
// already closed. Each Submit installs a fresh channel, so callers waiting
// on a job should acquire it after the Submit that started the job.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// pollLoop issues one status request per tick until the job reaches a
// terminal state or the loop is cancelled. Ticks never overlap: the next
// tick is not received until the previous request has been applied, and the
// ticker drops ticks that elapse while a request is still in flight.
func (c *Controller) pollLoop(ctx context.Context, gen uint64, jobID string) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Covers cancellation of the caller's Submit context too, not
			// just Stop; waiters on Done still get released.
			c.mu.Lock()
			if gen == c.gen {
				c.closeDoneLocked()
			}
			c.mu.Unlock()
			return
		case <-ticker.C:
			update, err := c.svc.JobStatus(ctx, jobID)
			if !c.apply(ctx, gen, update, err) {
				return
			}
		}
	}
}

// apply folds one poll result into the job record. It returns false when the
// loop must stop: the result was stale (superseded submission or cancelled
// loop) or the job reached a terminal state. Stale results are discarded
// without touching the record.
func (c *Controller) apply(ctx context.Context, gen uint64, update StatusUpdate, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	if ctx.Err() != nil {
		// Cancelled but not superseded: release waiters, discard the result.
		c.closeDoneLocked()
		return false
	}

	if err != nil {
		c.job.State = StateFailed
		c.job.LastError = err.Error()
		c.cancelLocked()
		c.closeDoneLocked()
		c.logger.Debug("poll failed", "job_id", c.job.JobID, "error", err)
		return false
	}

	c.job.Progress = clampProgress(update.Progress)
	c.job.Message = update.Message

	switch update.Status {
	case StatusCompleted:
		c.job.State = StateCompleted
	case StatusFailed:
		c.job.State = StateFailed
	default:
		// Still in progress; unknown values poll on.
		return true
	}

	c.cancelLocked()
	c.closeDoneLocked()
	c.logger.Debug("scan finished",
		"job_id", c.job.JobID, "state", c.job.State, "progress", c.job.Progress)
	return false
}

// cancelLocked stops the active poll loop, if any. Callers hold c.mu.
func (c *Controller) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// closeDoneLocked closes the current done channel exactly once. Callers
// hold c.mu.
func (c *Controller) closeDoneLocked() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
