// Package config provides environment-variable configuration for the STAC
// API server.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the complete application configuration loaded from
// environment variables.
type Config struct {
	Server   ServerConfig  `envPrefix:"SERVER_"`
	STAC     STACConfig    `envPrefix:"STAC_"`
	Features FeatureConfig `envPrefix:"FEATURE_"`
	Logging  LoggingConfig `envPrefix:"LOG_"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// STACConfig contains STAC API landing-page metadata.
type STACConfig struct {
	Version     string `env:"VERSION" envDefault:"1.0.0"`
	BaseURL     string `env:"BASE_URL"` // Public-facing URL (required)
	Title       string `env:"TITLE" envDefault:"STAC API"`
	Description string `env:"DESCRIPTION" envDefault:"A STAC API"`
}

// FeatureConfig contains feature flags and pagination limits.
type FeatureConfig struct {
	EnableSearch     bool `env:"ENABLE_SEARCH" envDefault:"true"`
	EnableQueryables bool `env:"ENABLE_QUERYABLES" envDefault:"true"`
	DefaultLimit     int  `env:"DEFAULT_LIMIT" envDefault:"10"`
	MaxLimit         int  `env:"MAX_LIMIT" envDefault:"250"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Load parses configuration from environment variables. It returns an
// error if required fields are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{
		RequiredIfNoDef: true,
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive, got %s", c.Server.ReadTimeout)
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive, got %s", c.Server.WriteTimeout)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}

	if c.STAC.BaseURL == "" {
		return fmt.Errorf("STAC base URL is required")
	}

	if c.STAC.Version == "" {
		return fmt.Errorf("STAC version is required")
	}

	if c.Features.DefaultLimit < 1 {
		return fmt.Errorf("default limit must be at least 1, got %d", c.Features.DefaultLimit)
	}

	if c.Features.MaxLimit < c.Features.DefaultLimit {
		return fmt.Errorf("max limit (%d) must be >= default limit (%d)", c.Features.MaxLimit, c.Features.DefaultLimit)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, text", c.Logging.Format)
	}

	return nil
}

// Address returns the server listen address in the format "host:port".
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
