// Package config holds the CLI client settings: defaults, an optional JSON
// file (-c/-config) and command-line flags, applied in that order.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the chatgate CLI.
//
// Fields:
//   - ServerURL: base URL of the gateway HTTP API.
//   - RequestTimeout: per-request deadline for API calls.
//   - OnlineCheckInterval: how often the client polls /health.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 60 * time.Second
	c.OnlineCheckInterval = 10 * time.Second
}

// LoadConfig constructs a Config from os.Args. Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
