// Package config holds settings for the gophauth CLI: defaults overlaid with
// environment variables. Command-line flags are applied by the cli package.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the gophauth HTTP API.
//   - Timeout: per-request HTTP timeout.
//   - Token: bearer token used by commands that need one.
type Config struct {
	ServerURL string        `env:"GOPHAUTH_SERVER"`
	Timeout   time.Duration `env:"GOPHAUTH_TIMEOUT"`
	Token     string        `env:"GOPHAUTH_TOKEN"`
}

// LoadDefaults populates c with local development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Timeout = 10 * time.Second
	c.Token = ""
}

// LoadConfig applies defaults, then the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
