// Package config loads engine configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the engine reads from the environment.
type Config struct {
	// SchemaDir is an optional directory of extra rule schema files,
	// loaded alongside the embedded set.
	SchemaDir string `env:"SCHEMA_DIR"`

	// OraclePath points at an external review engine binary. Empty
	// disables oracle review.
	OraclePath    string        `env:"ORACLE_PATH"`
	OracleTimeout time.Duration `env:"ORACLE_TIMEOUT" envDefault:"3s"`

	// LegacyFallback enables the binary matcher when soft matching
	// produces no candidate.
	LegacyFallback bool `env:"LEGACY_FALLBACK" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
