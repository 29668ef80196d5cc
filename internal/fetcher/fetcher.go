package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gocloud.dev/blob"

	"github.com/solenne/dredge/internal/scanapi"
)

// Default retry parameters, used when Options leaves them unset.
const (
	DefaultAttempts   = 4
	DefaultBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff = 10 * time.Second
)

// Options configures export retrieval.
type Options struct {
	// Attempts is the total number of fetch attempts, including the first.
	Attempts int

	// Backoff is the initial delay between attempts. The delay grows
	// exponentially up to MaxBackoff.
	Backoff time.Duration

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// Logger receives a warning per retried attempt. Nil uses slog.Default().
	Logger *slog.Logger
}

// SaveToFile fetches the export for jobID and writes it to path,
// creating or truncating the file. It returns the number of bytes
// written. A partially written file is removed on error.
func SaveToFile(ctx context.Context, client *scanapi.Client, jobID, path string, opts Options) (int64, error) {
	export, err := fetch(ctx, client, jobID, opts)
	if err != nil {
		return 0, err
	}
	defer export.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}

	n, err := io.Copy(f, export.Body)
	if err != nil {
		f.Close()
		os.Remove(path)
		return 0, fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("close output file: %w", err)
	}
	return n, nil
}

// SaveToBucket fetches the export for jobID and writes it to key in
// bucket. An empty key falls back to the server-suggested filename.
// It returns the number of bytes written.
func SaveToBucket(ctx context.Context, client *scanapi.Client, jobID string, bucket *blob.Bucket, key string, opts Options) (int64, error) {
	export, err := fetch(ctx, client, jobID, opts)
	if err != nil {
		return 0, err
	}
	defer export.Body.Close()

	if key == "" {
		key = export.Filename
	}
	if key == "" {
		return 0, errors.New("fetcher: no destination key and no server-suggested filename")
	}

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: export.ContentType})
	if err != nil {
		return 0, fmt.Errorf("create bucket writer: %w", err)
	}

	n, err := io.Copy(w, export.Body)
	if err != nil {
		w.Close()
		return 0, fmt.Errorf("write export: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("close bucket writer: %w", err)
	}
	return n, nil
}

// fetch retrieves the export stream, retrying transient failures with
// exponential backoff. Terminal answers from the service (unknown job,
// export not ready) are returned immediately.
func fetch(ctx context.Context, client *scanapi.Client, jobID string, opts Options) (*scanapi.Export, error) {
	// Apply defaults
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "fetcher")

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = opts.Backoff
	expBackoff.MaxInterval = opts.MaxBackoff
	expBackoff.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	var export *scanapi.Export
	operation := func() error {
		ex, err := client.FetchExport(ctx, jobID)
		if err != nil {
			if errors.Is(err, scanapi.ErrJobNotFound) || errors.Is(err, scanapi.ErrExportNotReady) {
				return backoff.Permanent(err)
			}
			return err
		}
		export = ex
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("export fetch failed, retrying",
			"job_id", jobID, "retry_in", wait, "error", err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(opts.Attempts-1)), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, err
	}
	return export, nil
}
