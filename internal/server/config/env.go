package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays the variables named in Config's env tags. Unset
// variables keep the current value.
func parseEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
