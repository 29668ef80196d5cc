// Package progress renders scan progress for the terminal.
//
// This package outputs human-readable progress information to stderr,
// including completion percentage, lifecycle state, and the service's
// latest status message. Lines refresh in place.
//
// # Usage
//
//	printer := progress.NewPrinter(progress.Options{
//	    Source:   ctrl.Snapshot,
//	    Folder:   folderID,
//	    Interval: pollInterval,
//	})
//
//	printer.Start()
//	defer printer.Stop()
//
// # Output Format
//
//	[dredge] Scanning folder: 1A2b3C4d | Poll interval: 2s
//	[dredge] Progress:  45% | Running | Scanning Google Drive
//	[dredge] Completed: Found 128 files and folders | 100% | Total time: 18s
package progress
