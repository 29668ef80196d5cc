// Package scanjob drives the lifecycle of an asynchronous remote folder
// scan: submit, poll, reconcile the terminal state, retrieve the export.
//
// A [Controller] owns exactly one job at a time. Submitting while a job is
// active supersedes it: the old poll loop is cancelled first and any of its
// responses still in flight are discarded, so a stale job can never
// overwrite the active one.
//
// # Lifecycle
//
//	Idle -> Submitting -> Running -> Completed
//	                   \          \-> Failed   (remote failure or transport error)
//	                    \-> Failed             (submission transport error; no polling)
//
// Completed and Failed are terminal: polling stops and only a new [Controller.Submit]
// starts another job.
//
// # Polling
//
// Status is polled at a fixed cadence ([DefaultPollInterval]); ticks are
// strictly sequential, and the loop stops on the tick that reports
// "completed" or "failed". Any other status value is treated as still in
// progress, which keeps the controller forward-compatible with new
// server-side phases. A transport failure ends the job as Failed with the
// local error recorded.
//
// # Usage
//
//	ctrl := scanjob.New(client)
//	if err := ctrl.Submit(ctx, folder); err != nil {
//	    // validation or submission failure
//	}
//
//	<-ctrl.Done() // terminal state reached
//
//	if snap := ctrl.Snapshot(); snap.State == scanjob.StateCompleted {
//	    url, _ := ctrl.ExportURL()
//	    // fetch the artifact
//	}
//
// Renderers read [Controller.Snapshot] on their own schedule; snapshots are
// value copies and never block the poll loop.
package scanjob
