// Package config loads the bridge configuration from an optional YAML file,
// the environment and command line overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultEndpoint is where a browser started with
	// --remote-debugging-port=9222 serves the DevTools protocol.
	DefaultEndpoint = "http://localhost:9222"

	DefaultConnectTimeout    = 30 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultWaitUntil         = "networkidle"
	DefaultLogLevel          = "info"

	// EnvEndpoint overrides the endpoint from the config file.
	EnvEndpoint = "CDP_BRIDGE_ENDPOINT"
)

// Config holds everything the bridge needs to reach the remote browser.
type Config struct {
	// Endpoint is the DevTools HTTP or websocket URL of the running browser.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// ConnectTimeout bounds the initial CDP handshake.
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`

	// NavigationTimeout bounds every navigate call.
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`

	// WaitUntil is the load state navigation waits for.
	WaitUntil string `yaml:"wait_until" json:"wait_until"`

	// IgnoreHTTPSErrors applies when the bridge has to create its own context.
	IgnoreHTTPSErrors bool `yaml:"ignore_https_errors" json:"ignore_https_errors"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" json:"level"`

	// Dir overrides ~/.cdp-bridge/logs
	Dir string `yaml:"dir" json:"dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Endpoint:          DefaultEndpoint,
		ConnectTimeout:    DefaultConnectTimeout,
		NavigationTimeout: DefaultNavigationTimeout,
		WaitUntil:         DefaultWaitUntil,
		IgnoreHTTPSErrors: true,
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (if path is
// non-empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if endpoint := strings.TrimSpace(os.Getenv(EnvEndpoint)); endpoint != "" {
		cfg.Endpoint = endpoint
	}

	return cfg, nil
}

// Validate checks the configuration and fills empty optional fields.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("invalid endpoint %q: scheme must be http, https, ws or wss", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}

	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %s", c.ConnectTimeout)
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be positive, got %s", c.NavigationTimeout)
	}

	if c.WaitUntil == "" {
		c.WaitUntil = DefaultWaitUntil
	}
	validWaitStates := map[string]bool{
		"load":             true,
		"domcontentloaded": true,
		"networkidle":      true,
		"commit":           true,
	}
	if !validWaitStates[c.WaitUntil] {
		return fmt.Errorf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', 'networkidle' or 'commit')", c.WaitUntil)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn' or 'error')", c.Logging.Level)
	}

	return nil
}
