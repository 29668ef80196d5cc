// Package fetcher retrieves finished scan exports and saves them to a
// local file or an object storage bucket.
//
// This package handles:
//   - Streaming the CSV export for a completed job from the scan service
//   - Writing the stream to a local file or a gocloud.dev blob bucket
//   - Retrying transient fetch failures with exponential backoff
//
// Terminal answers from the service are never retried: an unknown job id
// or a job whose export is not ready yet fails immediately, so callers
// can react with errors.Is against the scanapi sentinels.
//
// # Usage
//
//	client := scanapi.New("http://localhost:8080", logger)
//
//	n, err := fetcher.SaveToFile(ctx, client, jobID, "scan.csv", fetcher.Options{})
//	if err != nil {
//		return err
//	}
//	fmt.Printf("wrote %d bytes\n", n)
package fetcher
