package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/solenne/dredge/internal/config"
	"github.com/solenne/dredge/internal/progress"
	"github.com/solenne/dredge/pkg/scanjob"
)

// runScan submits a folder scan and watches it until it reaches a terminal
// state. With -output or -bucket the CSV export is saved on completion;
// otherwise the export URL is printed for later retrieval.
func runScan(args []string) int {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)

	defaults := config.Default()
	configPath := fs.String("config", "", "Path to YAML config file")
	folder := fs.String("folder", "", "Folder id to scan (required unless configured)")
	baseURL := fs.String("base-url", defaults.BaseURL, "Scan service base URL")
	pollInterval := fs.Duration("poll-interval", defaults.PollInterval, "Status poll cadence")
	timeout := fs.Duration("timeout", defaults.RequestTimeout, "Per-request timeout")
	showProgress := fs.Bool("progress", false, "Show live progress output")
	output := fs.String("output", "", "Save the CSV export to this file on completion")
	bucketURL := fs.String("bucket", "", "Save the CSV export to this bucket URL on completion")
	key := fs.String("key", "", "Object key inside -bucket (default: server-suggested filename)")
	retryAttempts := fs.Int("retry-attempts", defaults.Retry.Attempts, "Max export fetch attempts")
	retryBackoff := fs.Duration("retry-backoff", defaults.Retry.Backoff, "Initial export fetch backoff")
	retryMaxBackoff := fs.Duration("retry-max-backoff", defaults.Retry.MaxBackoff, "Max export fetch backoff")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: dredge scan [options]

Start a scan of a Drive folder and poll its status until it completes or
fails. With -output or -bucket, the CSV export is saved once the scan
completes.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := layerConfig(fs, *configPath, func(name string, c *config.Config) {
		switch name {
		case "folder":
			c.Folder = *folder
		case "base-url":
			c.BaseURL = *baseURL
		case "poll-interval":
			c.PollInterval = *pollInterval
		case "timeout":
			c.RequestTimeout = *timeout
		case "progress":
			c.Progress = *showProgress
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

	if cfg.Folder == "" {
		fmt.Fprintln(os.Stderr, "Error: -folder is required")
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
		fmt.Fprintln(os.Stderr, "\n[dredge] Received interrupt, shutting down...")
		cancel()
	}()

	logger := newLogger(*verbose)
	client := newClient(cfg, logger)

	ctrl := scanjob.New(client,
		scanjob.WithPollInterval(cfg.PollInterval),
		scanjob.WithLogger(logger),
	)

	if err := ctrl.Submit(ctx, cfg.Folder); err != nil {
		if errors.Is(err, scanjob.ErrFolderRequired) {
			fmt.Fprintln(os.Stderr, "Error: -folder is required")
			return ExitInvalidArgs
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitServiceError
	}
	done := ctrl.Done()
	defer ctrl.Stop()

	snap := ctrl.Snapshot()
	fmt.Fprintf(os.Stderr, "[dredge] Scan started: job %s\n", snap.JobID)

	var printer *progress.Printer
	if cfg.Progress {
		printer = progress.NewPrinter(progress.Options{
			Source:   ctrl.Snapshot,
			Folder:   cfg.Folder,
			Interval: cfg.PollInterval,
		})
		printer.Start()
	}

	// Closed on a terminal state or on interrupt via ctx.
	<-done

	if printer != nil {
		printer.Stop()
	}

	snap = ctrl.Snapshot()
	switch snap.State {
	case scanjob.StateCompleted:
		if !cfg.Progress {
			fmt.Fprintf(os.Stderr, "[dredge] %s\n", snap.Message)
		}
		if cfg.Output == "" && cfg.Bucket == "" {
			url, err := ctrl.ExportURL()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return ExitGeneralError
			}
			fmt.Println(url)
			return ExitSuccess
		}
		return saveExport(ctx, client, snap.JobID, cfg, *key, logger)

	case scanjob.StateFailed:
		if snap.LastError != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", snap.LastError)
			return ExitServiceError
		}
		fmt.Fprintf(os.Stderr, "[dredge] Scan failed: %s\n", snap.Message)
		return ExitScanFailed

	default:
		// Interrupted mid-run. The remote job keeps running server-side.
		fmt.Fprintf(os.Stderr, "[dredge] Stopped watching at %d%%; job %s continues server-side\n",
			snap.Progress, snap.JobID)
		return ExitGeneralError
	}
}
