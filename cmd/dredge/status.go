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
	"github.com/solenne/dredge/internal/scanapi"
	"github.com/solenne/dredge/pkg/scanjob"
)

// runStatus queries a scan job once and prints its current status.
// The exit code reflects the job: failed scans exit non-zero so the
// command composes in scripts.
func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ExitOnError)

	defaults := config.Default()
	configPath := fs.String("config", "", "Path to YAML config file")
	job := fs.String("job", "", "Scan job id (required)")
	baseURL := fs.String("base-url", defaults.BaseURL, "Scan service base URL")
	timeout := fs.Duration("timeout", defaults.RequestTimeout, "Per-request timeout")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: dredge status [options]

Query the current status of a scan job without watching it.

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := newClient(cfg, newLogger(*verbose))

	st, err := client.JobStatus(ctx, *job)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, scanapi.ErrJobNotFound) {
			return ExitNotReady
		}
		return ExitServiceError
	}

	fmt.Printf("Job:      %s\n", *job)
	fmt.Printf("Status:   %s\n", st.Status)
	fmt.Printf("Progress: %d%%\n", st.Progress)
	fmt.Printf("Message:  %s\n", st.Message)

	if st.Status == scanjob.StatusFailed {
		return ExitScanFailed
	}
	return ExitSuccess
}
