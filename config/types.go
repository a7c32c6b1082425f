package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Download DownloadConfig `mapstructure:"download"`
	Session  SessionConfig  `mapstructure:"session"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Update   UpdateConfig   `mapstructure:"update"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// APIConfig holds the Smart Prospective connection details
type APIConfig struct {
	URL        string        `mapstructure:"url"`
	PublicKey  string        `mapstructure:"public_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent"`
}

// DownloadConfig controls where downloaded medias are written
type DownloadConfig struct {
	Dir string `mapstructure:"dir"`
}

// SessionConfig controls the API session of a command run
type SessionConfig struct {
	LogoutOnExit bool `mapstructure:"logout_on_exit"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// UpdateConfig holds the self-update source
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}
