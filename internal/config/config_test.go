package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("expected default base URL http://localhost:8080, got %s", cfg.BaseURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected default poll interval 2s, got %v", cfg.PollInterval)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("expected default request timeout 15s, got %v", cfg.RequestTimeout)
	}
	if cfg.Retry.Attempts != 4 {
		t.Errorf("expected default retry attempts 4, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 500*time.Millisecond {
		t.Errorf("expected default retry backoff 500ms, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 10*time.Second {
		t.Errorf("expected default retry max backoff 10s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
base_url: http://scan.internal:9000
folder: 1A2b3C4d
poll_interval: 5s
request_timeout: 30s
progress: true
retry:
  attempts: 10
  backoff: 2s
  max_backoff: 60s
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.BaseURL != "http://scan.internal:9000" {
		t.Errorf("expected base URL http://scan.internal:9000, got %s", cfg.BaseURL)
	}
	if cfg.Folder != "1A2b3C4d" {
		t.Errorf("expected folder 1A2b3C4d, got %s", cfg.Folder)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %v", cfg.PollInterval)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected request timeout 30s, got %v", cfg.RequestTimeout)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Retry.Attempts != 10 {
		t.Errorf("expected retry attempts 10, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 2*time.Second {
		t.Errorf("expected retry backoff 2s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 60*time.Second {
		t.Errorf("expected retry max backoff 60s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromYAMLPartial(t *testing.T) {
	// A file that sets one field leaves the rest at zero, so merging it
	// over Default keeps the defaults.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("folder: xyz\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	fileCfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if fileCfg.BaseURL != "" {
		t.Errorf("expected unset base URL, got %s", fileCfg.BaseURL)
	}

	cfg := Default().Merge(fileCfg)
	if cfg.Folder != "xyz" {
		t.Errorf("expected folder xyz, got %s", cfg.Folder)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("expected default base URL preserved, got %s", cfg.BaseURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected default poll interval preserved, got %v", cfg.PollInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DREDGE_BASE_URL", "http://scan.env:8081")
	t.Setenv("DREDGE_FOLDER", "env-folder")
	t.Setenv("DREDGE_POLL_INTERVAL", "10s")
	t.Setenv("DREDGE_REQUEST_TIMEOUT", "20s")
	t.Setenv("DREDGE_PROGRESS", "true")
	t.Setenv("DREDGE_RETRY_ATTEMPTS", "3")
	t.Setenv("DREDGE_RETRY_BACKOFF", "250ms")
	t.Setenv("DREDGE_RETRY_MAX_BACKOFF", "5s")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.BaseURL != "http://scan.env:8081" {
		t.Errorf("expected base URL http://scan.env:8081, got %s", cfg.BaseURL)
	}
	if cfg.Folder != "env-folder" {
		t.Errorf("expected folder env-folder, got %s", cfg.Folder)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("expected poll interval 10s, got %v", cfg.PollInterval)
	}
	if cfg.RequestTimeout != 20*time.Second {
		t.Errorf("expected request timeout 20s, got %v", cfg.RequestTimeout)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("expected retry attempts 3, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 250*time.Millisecond {
		t.Errorf("expected retry backoff 250ms, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 5*time.Second {
		t.Errorf("expected retry max backoff 5s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromEnvInvalidDuration(t *testing.T) {
	t.Setenv("DREDGE_POLL_INTERVAL", "not-a-duration")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "non-positive poll interval",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: true,
		},
		{
			name:    "non-positive request timeout",
			mutate:  func(c *Config) { c.RequestTimeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "non-positive retry attempts",
			mutate:  func(c *Config) { c.Retry.Attempts = 0 },
			wantErr: true,
		},
		{
			name:    "non-positive retry backoff",
			mutate:  func(c *Config) { c.Retry.Backoff = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.Folder = "base-folder"

	override := Config{
		PollInterval: 7 * time.Second,
		// Leave other fields at zero values
	}

	merged := base.Merge(override)

	if merged.Folder != "base-folder" {
		t.Errorf("expected folder preserved, got %s", merged.Folder)
	}
	if merged.BaseURL != "http://localhost:8080" {
		t.Errorf("expected base URL preserved, got %s", merged.BaseURL)
	}
	if merged.Retry.Attempts != 4 {
		t.Errorf("expected retry attempts preserved, got %d", merged.Retry.Attempts)
	}

	if merged.PollInterval != 7*time.Second {
		t.Errorf("expected poll interval overridden to 7s, got %v", merged.PollInterval)
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadYAMLBadDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("poll_interval: sometimes\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for malformed duration")
	}
}
