package scanjob

import (
	"context"
	"errors"
)

// Common errors.
var (
	// ErrFolderRequired is returned by Submit for an empty folder reference.
	// No remote call is made and the current job, if any, is untouched.
	ErrFolderRequired = errors.New("scanjob: folder reference required")

	// ErrSuperseded is returned by Submit when a newer submission replaced
	// this one while its request was in flight. The newer job owns the
	// controller; this submission's result was discarded.
	ErrSuperseded = errors.New("scanjob: submission superseded by a newer scan")

	// ErrNotCompleted is returned by ExportURL unless the current job
	// finished in Completed.
	ErrNotCompleted = errors.New("scanjob: scan has not completed")
)

// State identifies where the current job is in its lifecycle.
//
// A job moves Idle -> Submitting -> Running and ends in Completed or Failed.
// The terminal states are left only by a new Submit, which starts a fresh job.
type State string

const (
	StateIdle       State = "Idle"
	StateSubmitting State = "Submitting"
	StateRunning    State = "Running"
	StateCompleted  State = "Completed"
	StateFailed     State = "Failed"
)

// Terminal reports whether s ends the current job. No polling occurs once a
// terminal state is reached.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Remote status vocabulary. The service reports lowercase status strings;
// only StatusCompleted and StatusFailed are terminal. Every other value,
// including ones this package has never seen, means the job is still in
// progress and polling continues. (The scan service reports "processing"
// while it works.)
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// StatusUpdate is one poll result from the remote service.
//
// Progress is a percentage; the service does not guarantee monotonic values
// and may omit the field entirely (decoded as 0). Message may be empty.
type StatusUpdate struct {
	Status   string
	Progress int
	Message  string
}

// Service is the remote scan API surface the Controller depends on.
// *scanapi.Client satisfies it.
type Service interface {
	// StartScan submits a scan of the given folder and returns the job id
	// assigned by the service.
	StartScan(ctx context.Context, folder string) (string, error)

	// JobStatus reports the current status of the job. A returned error is
	// treated as a transport failure and ends the job.
	JobStatus(ctx context.Context, jobID string) (StatusUpdate, error)

	// ExportURL returns the download URL for a completed job's artifact.
	// It is a pure computation, not a request.
	ExportURL(jobID string) string
}

// Snapshot is a copy of the controller's job record at one point in time.
// Renderers consume snapshots; they never hold the controller's lock.
type Snapshot struct {
	// JobID is the service-assigned identifier, empty until a submission
	// succeeds.
	JobID string

	// Folder is the folder reference this job was submitted for.
	Folder string

	// State is the lifecycle position. See State.
	State State

	// Progress is the last reported completion percentage, clamped to
	// [0,100]. It may move backwards between ticks.
	Progress int

	// Message is the last human-readable status text from the service. A
	// remote-reported failure carries its reason here.
	Message string

	// LastError describes a local failure: a rejected validation or a
	// transport error. Remote-reported failures use Message instead.
	LastError string
}

// clampProgress bounds a server-reported progress value to [0,100].
func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
