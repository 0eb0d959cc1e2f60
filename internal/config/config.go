package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/robert-crandall/journal-app-sub006/internal/storage"
)

// Config is loaded from the environment. Everything has a workable default
// so the CLI runs with no setup.
type Config struct {
	// DBPath overrides the default database location.
	DBPath string `env:"JOURNAL_DB"`
	// UserID selects which user's stats the CLI operates on.
	UserID string `env:"JOURNAL_USER" envDefault:"main"`
}

// Load parses the environment and fills in the default DB path.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		path, err := storage.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = path
	}
	return cfg, nil
}
