package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries the demo binary's environment settings. Generation
// details beyond these live in the galaxy profile YAML; the zero
// values for name, count, and seed mean "let the profile or the
// generator decide".
type Config struct {
	DBPath        string `env:"GALAXY_DB_PATH" envDefault:"galaxy.db"`
	ProfilePath   string `env:"GALAXY_PROFILE"`
	GalaxyName    string `env:"GALAXY_NAME"`
	LocationCount int    `env:"GALAXY_LOCATION_COUNT"`
	Seed          uint64 `env:"GALAXY_SEED"`
	LogFile       string `env:"GALAXY_LOG_FILE" envDefault:"galaxygame_debug.log"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
