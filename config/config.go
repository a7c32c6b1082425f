package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SPCTL"

// legacyEnv maps config keys to the variables used by earlier Smart
// Prospective tooling. SPCTL_* variables take precedence.
var legacyEnv = map[string]string{
	"api.url":        "SMART_PROSPECTIVE_SERVER",
	"api.public_key": "SP_PUBLIC_KEY",
	"api.secret_key": "SP_PRIVATE_KEY",
}

// Load loads the configuration. An explicit configPath must exist; otherwise
// the standard locations are searched and a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".spctl"))
		}
		v.AddConfigPath("/etc/spctl/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && configPath == "":
			// environment and defaults only
		case errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config file not found: %w", err)
		default:
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.API.PublicKey = strings.TrimSpace(cfg.API.PublicKey)
	cfg.API.SecretKey = strings.TrimSpace(cfg.API.SecretKey)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "https://app.smartprospective.com")
	v.SetDefault("api.public_key", "")
	v.SetDefault("api.secret_key", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.max_retries", 0)
	v.SetDefault("api.user_agent", "")

	v.SetDefault("download.dir", "")
	v.SetDefault("session.logout_on_exit", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("update.repository", "smart-prospective/spctl")
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return err
		}
	}
	return nil
}

// validate checks if the configuration is valid. Credentials are checked
// by the commands that talk to the API.
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.URL)
	if cfg.API.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.url must be an http(s) URL, got %q", cfg.API.URL)
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative: %s", cfg.API.Timeout)
	}
	if cfg.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries cannot be negative: %d", cfg.API.MaxRetries)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset %q has an empty expression", name)
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// HasCredentials reports whether both API keys are set
func (c *Config) HasCredentials() bool {
	return c.API.PublicKey != "" && c.API.SecretKey != ""
}
