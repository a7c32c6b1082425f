package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate keeps the search paths and environment away from the host
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"SMART_PROSPECTIVE_SERVER", "SP_PUBLIC_KEY", "SP_PRIVATE_KEY",
		"SPCTL_API_URL", "SPCTL_API_PUBLIC_KEY", "SPCTL_API_SECRET_KEY",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want none", cfg.File)
	}
	if cfg.API.URL != "https://app.smartprospective.com" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %s", cfg.API.Timeout)
	}
	if !cfg.Session.LogoutOnExit {
		t.Error("Session.LogoutOnExit should default to true")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.HasCredentials() {
		t.Error("no credentials expected")
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)

	path := writeConfig(t, `
api:
  url: http://localhost:8000
  public_key: pub_file
  secret_key: sec_file
  timeout: 10s
  max_retries: 2
download:
  dir: /tmp/medias
session:
  logout_on_exit: false
filter:
  presets:
    files: category == "file"
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
	if cfg.API.URL != "http://localhost:8000" || !cfg.HasCredentials() {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.API.Timeout != 10*time.Second || cfg.API.MaxRetries != 2 {
		t.Errorf("API timeout/retries = %s/%d", cfg.API.Timeout, cfg.API.MaxRetries)
	}
	if cfg.Download.Dir != "/tmp/medias" {
		t.Errorf("Download.Dir = %q", cfg.Download.Dir)
	}
	if cfg.Session.LogoutOnExit {
		t.Error("Session.LogoutOnExit should be false")
	}
	if cfg.Filter.Presets["files"] != `category == "file"` {
		t.Errorf("Filter.Presets = %v", cfg.Filter.Presets)
	}
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SMART_PROSPECTIVE_SERVER", "http://legacy.example.com")
	t.Setenv("SP_PUBLIC_KEY", "pub_env")
	t.Setenv("SP_PRIVATE_KEY", "sec_env")
	t.Setenv("SPCTL_API_MAX_RETRIES", "3")
	t.Setenv("SPCTL_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.URL != "http://legacy.example.com" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.PublicKey != "pub_env" || cfg.API.SecretKey != "sec_env" {
		t.Errorf("credentials = %q/%q", cfg.API.PublicKey, cfg.API.SecretKey)
	}
	if cfg.API.MaxRetries != 3 {
		t.Errorf("API.MaxRetries = %d", cfg.API.MaxRetries)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}

	// The prefixed variable wins over the legacy one
	t.Setenv("SPCTL_API_PUBLIC_KEY", "pub_spctl")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.PublicKey != "pub_spctl" {
		t.Errorf("API.PublicKey = %q, want pub_spctl", cfg.API.PublicKey)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:     APIConfig{URL: "https://app.smartprospective.com", Timeout: time.Second},
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:        "missing url",
			mutate:      func(c *Config) { c.API.URL = "" },
			errContains: "api.url",
		},
		{
			name:        "unsupported scheme",
			mutate:      func(c *Config) { c.API.URL = "ftp://example.com" },
			errContains: "api.url",
		},
		{
			name:        "negative timeout",
			mutate:      func(c *Config) { c.API.Timeout = -time.Second },
			errContains: "api.timeout",
		},
		{
			name:        "negative retries",
			mutate:      func(c *Config) { c.API.MaxRetries = -1 },
			errContains: "api.max_retries",
		},
		{
			name:        "empty preset",
			mutate:      func(c *Config) { c.Filter.Presets = map[string]string{"broken": " "} },
			errContains: "broken",
		},
		{
			name:        "invalid level",
			mutate:      func(c *Config) { c.Logging.Level = "trace" },
			errContains: "invalid logging level",
		},
		{
			name:        "invalid format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			errContains: "invalid logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("validate() error = %v, want it to mention %q", err, tt.errContains)
			}
		})
	}
}
