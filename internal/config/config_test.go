package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set required environment variables
	os.Setenv("STAC_BASE_URL", "https://example.com")
	defer os.Unsetenv("STAC_BASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Test defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}

	if cfg.STAC.Version != "1.0.0" {
		t.Errorf("expected default STAC version 1.0.0, got %s", cfg.STAC.Version)
	}

	if cfg.Features.DefaultLimit != 10 {
		t.Errorf("expected default limit 10, got %d", cfg.Features.DefaultLimit)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	// Set custom environment variables
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("SERVER_READ_TIMEOUT", "60s")
	os.Setenv("STAC_BASE_URL", "https://stac.example.com")
	os.Setenv("STAC_VERSION", "1.0.0-rc.1")
	os.Setenv("FEATURE_DEFAULT_LIMIT", "25")
	os.Setenv("FEATURE_MAX_LIMIT", "500")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "text")

	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("SERVER_READ_TIMEOUT")
		os.Unsetenv("STAC_BASE_URL")
		os.Unsetenv("STAC_VERSION")
		os.Unsetenv("FEATURE_DEFAULT_LIMIT")
		os.Unsetenv("FEATURE_MAX_LIMIT")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("LOG_FORMAT")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}

	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout 60s, got %s", cfg.Server.ReadTimeout)
	}

	if cfg.STAC.BaseURL != "https://stac.example.com" {
		t.Errorf("expected STAC base URL https://stac.example.com, got %s", cfg.STAC.BaseURL)
	}

	if cfg.Features.DefaultLimit != 25 {
		t.Errorf("expected default limit 25, got %d", cfg.Features.DefaultLimit)
	}

	if cfg.Features.MaxLimit != 500 {
		t.Errorf("expected max limit 500, got %d", cfg.Features.MaxLimit)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("expected log format text, got %s", cfg.Logging.Format)
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		STAC: STACConfig{
			Version: "1.0.0",
			BaseURL: "https://stac.example.com",
		},
		Features: FeatureConfig{
			DefaultLimit: 10,
			MaxLimit:     250,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "invalid port",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantError: true,
		},
		{
			name:      "missing STAC base URL",
			mutate:    func(c *Config) { c.STAC.BaseURL = "" },
			wantError: true,
		},
		{
			name:      "max limit below default limit",
			mutate:    func(c *Config) { c.Features.MaxLimit = 1 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
		{
			name:      "invalid log format",
			mutate:    func(c *Config) { c.Logging.Format = "invalid" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestServerConfigAddress(t *testing.T) {
	cfg := ServerConfig{
		Host: "localhost",
		Port: 3000,
	}

	addr := cfg.Address()
	expected := "localhost:3000"
	if addr != expected {
		t.Errorf("Address() = %s, expected %s", addr, expected)
	}
}
