// Package scansim is an in-process stand-in for the folder-scan
// service, used by the dredged binary and by integration tests.
//
// This package handles:
//   - The service's HTTP surface: start scan, job status, CSV download,
//     file listing and a health probe
//   - Advancing jobs through the real service's milestones on a timer
//   - Rendering the CSV export from a seeded file fixture
//
// Responses match the real service byte-for-byte where clients depend
// on them: the {"detail": ...} error envelope, the "Scan started"
// acknowledgement, milestone messages and progress values, and the
// google_drive_scan.csv attachment.
//
// # Usage
//
//	sim := scansim.New(scansim.Options{
//		StepInterval: 200 * time.Millisecond,
//		Failures:     map[string]string{"bad-folder": "File not found: bad-folder"},
//	})
//	srv := httptest.NewServer(sim.Router())
//	defer srv.Close()
package scansim
