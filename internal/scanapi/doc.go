// Package scanapi is the HTTP client for the folder scan service.
//
// This package handles:
//   - Submitting scans (POST /api/scan)
//   - Polling job status (GET /api/scan/{id}/status)
//   - Listing scanned files (GET /api/scan)
//   - Streaming the CSV export of a completed scan (GET /api/scan/{id}/download)
//
// The service wraps errors in a {"detail": "..."} envelope; its 404s and
// "not completed" 400s surface as ErrJobNotFound and ErrExportNotReady.
//
// # Usage
//
//	client := scanapi.New("http://localhost:8080", logger)
//
//	// Drive a scan through a controller
//	ctrl := scanjob.New(client)
//	err := ctrl.Submit(ctx, folderID)
//
//	// Or talk to the service directly
//	files, err := client.ListFiles(ctx)
//	export, err := client.FetchExport(ctx, jobID)
//	defer export.Body.Close()
package scanapi
