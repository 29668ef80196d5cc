// Package config defines configuration structures for the dredge CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (DREDGE_ prefix)
//   - YAML configuration file
//
// Layering order is Default, then file, then environment, then any flag
// the user set explicitly, so a flag always wins.
//
// # Structure
//
//	type Config struct {
//	    BaseURL        string
//	    Folder         string
//	    Output         string
//	    Bucket         string
//	    PollInterval   time.Duration
//	    RequestTimeout time.Duration
//	    Progress       bool
//	    Retry          RetryConfig
//	}
//
//	type RetryConfig struct {
//	    Attempts   int
//	    Backoff    time.Duration
//	    MaxBackoff time.Duration
//	}
package config
