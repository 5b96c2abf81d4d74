package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the track analyzer service.
// Environment variables are parsed from the TRACK_ANALYZER_ prefix.
type Config struct {
	// Storage driver selects the backing store: auto, supabase, postgres,
	// local. "auto" resolves from which credentials are present.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"auto"`

	// Supabase Configuration. Configured means both URL and key non-empty.
	SupabaseURL string `envconfig:"SUPABASE_URL" default:""`
	SupabaseKey string `envconfig:"SUPABASE_KEY" default:""`

	// Postgres Configuration (self-managed alternative to Supabase)
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Local storage paths. Profile data lives in its own restricted file.
	LocalDataPath   string `envconfig:"LOCAL_DATA_PATH" default:""`
	LocalSecurePath string `envconfig:"LOCAL_SECURE_PATH" default:""`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// SupabaseConfigured reports whether the hosted backend has credentials.
func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// ResolveDefaults validates StorageDriver and derives it when set to "auto":
// supabase when credentials are present, postgres when a DSN is present,
// local otherwise. The choice is made once here; there is no mid-session
// fallback between drivers.
func (c *Config) ResolveDefaults() error {
	if c.StorageDriver == "" || c.StorageDriver == "auto" {
		switch {
		case c.SupabaseConfigured():
			c.StorageDriver = "supabase"
		case c.PostgresDSN != "":
			c.StorageDriver = "postgres"
		default:
			c.StorageDriver = "local"
		}
	}

	allowed := map[string]bool{"supabase": true, "postgres": true, "local": true}
	if !allowed[c.StorageDriver] {
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", c.StorageDriver)
	}

	if c.LocalDataPath == "" {
		c.LocalDataPath = filepath.Join(defaultDataDir(), "track-analyzer.db")
	}
	if c.LocalSecurePath == "" {
		c.LocalSecurePath = filepath.Join(defaultDataDir(), "track-analyzer-secure.db")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "track-analyzer")
}

// New creates a new Config by parsing environment variables.
// Example: TRACK_ANALYZER_SUPABASE_URL, TRACK_ANALYZER_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TRACK_ANALYZER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("storage_driver", cfg.StorageDriver).
		Bool("supabase_configured", cfg.SupabaseConfigured()).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Int("port", cfg.HTTPPort).
		Msg("Configuration loaded")

	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
