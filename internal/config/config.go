package config

import (
	"github.com/caarlos0/env/v11"

	"adtest/internal/config/configs"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library.
// Nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev).
	Env string `env:"ENV" envDefault:"prod"`

	HTTP configs.HTTP `envPrefix:"HTTP_"`

	Log configs.Logger `envPrefix:"LOG_"`

	// Psql is only used when Storage.Driver is "postgres".
	Psql configs.Postgres `envPrefix:"PSQL_"`

	Storage configs.Storage `envPrefix:"STORAGE_"`

	Auth configs.Auth `envPrefix:"AUTH_"`

	Ingest configs.Ingest `envPrefix:"INGEST_"`

	Render configs.Render `envPrefix:"RENDER_"`

	Fetch configs.Fetch `envPrefix:"FETCH_"`
}

// Load reads configuration from environment variables into a Config. All
// fields are loaded with their specified defaults when no environment
// variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Storage.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
