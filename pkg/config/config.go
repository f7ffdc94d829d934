// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/ftcast/pkg/pipeline"
	"github.com/user/ftcast/pkg/stages/transmit"
)

// MaxDimension bounds the configurable screen size. Anything larger is
// treated as a configuration error rather than a memory exhaustion risk.
const MaxDimension = 4096

// Source backends.
const (
	SourceChrome     = "chrome"
	SourcePlaywright = "playwright"
	SourcePattern    = "pattern"
)

// Config represents the full run configuration. It is constructed once
// at startup and treated as read-only by the pipeline.
type Config struct {
	// Input/output
	URL      string `yaml:"url"`
	Endpoint string `yaml:"endpoint"`

	// Screen
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Fit    string `yaml:"fit"` // letterbox or crop

	// Capture
	Source         string `yaml:"source"` // chrome, playwright or pattern
	Quality        int    `yaml:"quality"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`

	// Browser
	Headless          bool   `yaml:"headless"`
	ChromePath        string `yaml:"chrome_path"`
	UserAgent         string `yaml:"user_agent"`
	IgnoreHTTPSErrors bool   `yaml:"ignore_https_errors"`
	ProxyServer       string `yaml:"proxy_server"`

	// Transmission
	DialTimeoutMs    int `yaml:"dial_timeout_ms"`
	WriteTimeoutMs   int `yaml:"write_timeout_ms"`
	InitialBackoffMs int `yaml:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Width:  64,
		Height: 32,
		Fit:    "letterbox",

		Source:         SourceChrome,
		Quality:        100,
		PollIntervalMs: 100,

		Headless: true,

		DialTimeoutMs:    5000,
		WriteTimeoutMs:   10000,
		InitialBackoffMs: 1000,
		MaxBackoffMs:     30000,

		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration before the pipeline starts. Invalid
// dimensions or endpoints are fatal here, never inside the pipeline.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("display endpoint is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("screen dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Width > MaxDimension || c.Height > MaxDimension {
		return fmt.Errorf("screen dimensions must not exceed %d, got %dx%d",
			MaxDimension, c.Width, c.Height)
	}

	switch c.Source {
	case SourceChrome, SourcePlaywright:
		if c.URL == "" {
			return fmt.Errorf("url is required for the %s source", c.Source)
		}
	case SourcePattern:
		// No URL needed.
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}

	if c.Fit != "letterbox" && c.Fit != "crop" {
		return fmt.Errorf("unknown fit mode %q", c.Fit)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", c.Quality)
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d ms", c.PollIntervalMs)
	}

	return nil
}

// Screen returns the configured display dimensions.
func (c Config) Screen() pipeline.Dimension {
	return pipeline.Dimension{Width: c.Width, Height: c.Height}
}

// PollInterval returns the capture cadence for polling sources.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// TransmitOptions builds the transmitter options.
func (c Config) TransmitOptions() transmit.Options {
	return transmit.Options{
		Endpoint:       c.Endpoint,
		DialTimeout:    time.Duration(c.DialTimeoutMs) * time.Millisecond,
		WriteTimeout:   time.Duration(c.WriteTimeoutMs) * time.Millisecond,
		InitialBackoff: time.Duration(c.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(c.MaxBackoffMs) * time.Millisecond,
	}
}
