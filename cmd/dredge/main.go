package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/solenne/dredge/internal/config"
	"github.com/solenne/dredge/internal/scanapi"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitConfigError  = 3
	ExitServiceError = 4
	ExitScanFailed   = 5
	ExitNotReady     = 6
	ExitStorageError = 7
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "scan":
		return runScan(cmdArgs)
	case "status":
		return runStatus(cmdArgs)
	case "fetch":
		return runFetch(cmdArgs)
	case "files":
		return runFiles(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: dredge <command> [options]

Commands:
  scan    Start a folder scan and watch it to completion
  status  Show the current status of a scan job
  fetch   Save the CSV export of a completed scan
  files   List the files the service knows about

Run 'dredge <command> -h' for command-specific help.`)
}

// layerConfig resolves the effective configuration: defaults first, then
// the config file (if any), then DREDGE_* environment variables, then the
// flags the user set explicitly.
func layerConfig(fs *flag.FlagSet, path string, applyFlag func(name string, cfg *config.Config)) (config.Config, error) {
	cfg := config.Default()

	if path != "" {
		fileCfg, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	fs.Visit(func(f *flag.Flag) { applyFlag(f.Name, &cfg) })

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the CLI logger on stderr. Output stays quiet unless
// -verbose is set, so progress lines and piped stdout are not disturbed.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newClient(cfg config.Config, logger *slog.Logger) *scanapi.Client {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	return scanapi.NewWithHTTPClient(cfg.BaseURL, httpClient, logger)
}
