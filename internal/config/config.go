package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the timer service.
// Environment variables are parsed from the TIMERD_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage configuration. Driver is sqlite for local single-binary
	// deployments, postgres when the bot shares a database server.
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/focusflow.db"`

	// Timer configuration
	DefaultPreset string `envconfig:"DEFAULT_PRESET" default:"classic"`

	// Accelerated runs every phase at seconds scale instead of minutes.
	// Development aid only; accelerated sessions are kept out of the
	// daily statistics.
	Accelerated bool `envconfig:"ACCELERATED" default:"false"`

	// EventBuffer sizes the completion event channel.
	EventBuffer int `envconfig:"EVENT_BUFFER" default:"64"`
}

// Validate checks driver selection and required driver inputs.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("TIMERD_SQLITE_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("TIMERD_POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("EVENT_BUFFER must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: TIMERD_HTTP_PORT, TIMERD_DB_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TIMERD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Str("default_preset", cfg.DefaultPreset).
		Bool("accelerated", cfg.Accelerated).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing: sqlite in a
// temp-style relative path, accelerated phases, small event buffer.
func NewForTesting() *Config {
	return &Config{
		Environment:   EnvTesting,
		HTTPPort:      8080,
		DBDriver:      "sqlite",
		SQLitePath:    "focusflow_test.db",
		DefaultPreset: "classic",
		Accelerated:   true,
		EventBuffer:   16,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
