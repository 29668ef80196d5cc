package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/solenne/dredge/internal/config"
	"github.com/solenne/dredge/internal/fetcher"
	"github.com/solenne/dredge/internal/progress"
	"github.com/solenne/dredge/internal/scanapi"
)

// runFetch saves the CSV export of a completed scan job to a local file
// or an object storage bucket.
func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	defaults := config.Default()
	configPath := fs.String("config", "", "Path to YAML config file")
	job := fs.String("job", "", "Scan job id (required)")
	baseURL := fs.String("base-url", defaults.BaseURL, "Scan service base URL")
	timeout := fs.Duration("timeout", defaults.RequestTimeout, "Per-request timeout")
	output := fs.String("output", "", "Destination file path")
	bucketURL := fs.String("bucket", "", "Destination bucket URL")
	key := fs.String("key", "", "Object key inside -bucket (default: server-suggested filename)")
	retryAttempts := fs.Int("retry-attempts", defaults.Retry.Attempts, "Max export fetch attempts")
	retryBackoff := fs.Duration("retry-backoff", defaults.Retry.Backoff, "Initial export fetch backoff")
	retryMaxBackoff := fs.Duration("retry-max-backoff", defaults.Retry.MaxBackoff, "Max export fetch backoff")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: dredge fetch [options]

Save the CSV export of a completed scan job. The destination is a local
file (-output) or an object storage bucket (-bucket), never both.
Transient fetch failures are retried with exponential backoff.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := layerConfig(fs, *configPath, func(name string, c *config.Config) {
		switch name {
		case "base-url":
			c.BaseURL = *baseURL
		case "timeout":
			c.RequestTimeout = *timeout
		case "output":
			c.Output = *output
		case "bucket":
			c.Bucket = *bucketURL
		case "retry-attempts":
			c.Retry.Attempts = *retryAttempts
		case "retry-backoff":
			c.Retry.Backoff = *retryBackoff
		case "retry-max-backoff":
			c.Retry.MaxBackoff = *retryMaxBackoff
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	if *job == "" {
		fmt.Fprintln(os.Stderr, "Error: -job is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	if cfg.Output == "" && cfg.Bucket == "" {
		fmt.Fprintln(os.Stderr, "Error: one of -output or -bucket is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	if cfg.Output != "" && cfg.Bucket != "" {
		fmt.Fprintln(os.Stderr, "Error: -output and -bucket are mutually exclusive")
		return ExitInvalidArgs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	logger := newLogger(*verbose)
	client := newClient(cfg, logger)

	return saveExport(ctx, client, *job, cfg, *key, logger)
}

// saveExport writes the export for jobID to the destination cfg selects
// and reports the outcome. Shared by scan and fetch.
func saveExport(ctx context.Context, client *scanapi.Client, jobID string, cfg config.Config, key string, logger *slog.Logger) int {
	opts := fetcher.Options{
		Attempts:   cfg.Retry.Attempts,
		Backoff:    cfg.Retry.Backoff,
		MaxBackoff: cfg.Retry.MaxBackoff,
		Logger:     logger,
	}

	var (
		n    int64
		err  error
		dest string
	)
	if cfg.Bucket != "" {
		bkt, openErr := blob.OpenBucket(ctx, cfg.Bucket)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", openErr)
			return ExitStorageError
		}
		defer bkt.Close()

		n, err = fetcher.SaveToBucket(ctx, client, jobID, bkt, key, opts)
		dest = cfg.Bucket
		if key != "" {
			dest = cfg.Bucket + "/" + key
		}
	} else {
		n, err = fetcher.SaveToFile(ctx, client, jobID, cfg.Output, opts)
		dest = cfg.Output
	}

	if err != nil {
		if errors.Is(err, scanapi.ErrExportNotReady) || errors.Is(err, scanapi.ErrJobNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitNotReady
		}
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "[dredge] Fetch interrupted")
			return ExitGeneralError
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[dredge] Saved %s to %s\n", progress.FormatBytes(n), dest)
	return ExitSuccess
}
