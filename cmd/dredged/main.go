package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solenne/dredge/internal/logging"
	"github.com/solenne/dredge/internal/scansim"
)

// dredged serves the simulated folder-scan service.
//
// Configuration comes from environment variables: DREDGED_ADDR (listen
// address, default ":8080"), DREDGED_STEP_INTERVAL (delay between scan
// milestones), DREDGED_FAIL_FOLDER (folder ID whose scans always fail),
// DREDGED_LOG_LEVEL, DREDGED_LOG_FORMAT, and DREDGED_LOG_FILE.
func main() {
	logCfg := logging.DefaultConfig()
	if lvl := os.Getenv("DREDGED_LOG_LEVEL"); lvl != "" && logging.ValidLevel(lvl) {
		logCfg.Level = lvl
	}
	if format := os.Getenv("DREDGED_LOG_FORMAT"); format != "" && logging.ValidFormat(format) {
		logCfg.Format = format
	}
	logCfg.FilePath = os.Getenv("DREDGED_LOG_FILE")

	logger, closer := logging.New(logCfg)
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	addr := envOrDefault("DREDGED_ADDR", ":8080")
	stepInterval := envDurationOrDefault("DREDGED_STEP_INTERVAL", scansim.DefaultStepInterval)

	opts := scansim.Options{
		StepInterval: stepInterval,
		Logger:       logger,
	}
	if folder := os.Getenv("DREDGED_FAIL_FOLDER"); folder != "" {
		// Scans of this folder fail, for exercising client failure paths.
		opts.Failures = map[string]string{folder: "File not found: " + folder}
	}

	sim := scansim.New(opts)

	srv := &http.Server{
		Addr:              addr,
		Handler:           sim.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server started", "addr", addr, "step_interval", stepInterval)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		_ = srv.Close()
	}
	logger.Info("server stopped")
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
