// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Default values.
const (
	DefaultAPIBaseURL     = "http://127.0.0.1:8000"
	DefaultTimeoutSeconds = 15
	DefaultTokenFile      = "~/.taskdeck/token"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds the full configuration for taskdeck.
type Config struct {
	// Backend
	APIBaseURL     string `toml:"api_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`

	// Session
	TokenFile string `toml:"token_file"`

	// Logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
}

func setDefaults(cfg *Config) {
	cfg.APIBaseURL = DefaultAPIBaseURL
	cfg.TimeoutSeconds = DefaultTimeoutSeconds
	cfg.TokenFile = DefaultTokenFile
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the finalized configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q: must be an absolute http(s) URL", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_base_url scheme %q: must be http or https", u.Scheme)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.TokenFile == "" {
		return fmt.Errorf("token_file must not be empty")
	}
	return nil
}
