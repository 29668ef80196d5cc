package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solenne/dredge/internal/config"
)

// runFiles lists the files the scan service knows about, one per line
// on stdout: id, modification time, MIME type and name, tab-separated.
func runFiles(args []string) int {
	fs := flag.NewFlagSet("files", flag.ExitOnError)

	defaults := config.Default()
	configPath := fs.String("config", "", "Path to YAML config file")
	baseURL := fs.String("base-url", defaults.BaseURL, "Scan service base URL")
	timeout := fs.Duration("timeout", defaults.RequestTimeout, "Per-request timeout")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: dredge files [options]

List the files known to the scan service. Output is tab-separated and
stdout-only, so it pipes cleanly into cut, grep or awk.

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := newClient(cfg, newLogger(*verbose))

	records, err := client.ListFiles(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitServiceError
	}

	for _, f := range records {
		fmt.Printf("%s\t%s\t%s\t%s\n",
			f.ID, f.ModifiedTime.Format(time.RFC3339), f.MimeType, f.Name)
	}
	fmt.Fprintf(os.Stderr, "[dredge] %d files\n", len(records))

	return ExitSuccess
}
