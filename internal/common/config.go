// Package common provides shared utilities for chitlens
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Storage backend names.
const (
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendSurrealDB = "surrealdb"
)

// Config holds all configuration for chitlens
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Analytics   AnalyticsConfig `toml:"analytics"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects and configures the fund store backend.
type StorageConfig struct {
	Backend   string `toml:"backend"`   // "sqlite" (default), "postgres" or "surrealdb"
	DSN       string `toml:"dsn"`       // sqlite file path or postgres connection string
	Address   string `toml:"address"`   // SurrealDB RPC address (ws://host:8000/rpc)
	Username  string `toml:"username"`  // SurrealDB root user
	Password  string `toml:"password"`  // SurrealDB root password
	Namespace string `toml:"namespace"` // SurrealDB namespace
	Database  string `toml:"database"`  // SurrealDB database
}

// Location returns a display string for the configured store.
func (s StorageConfig) Location() string {
	if s.Backend == BackendSurrealDB {
		return s.Address
	}
	if s.Backend == BackendPostgres {
		return "postgres"
	}
	return s.DSN
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`  // "console" or "json"
	Outputs  []string `toml:"outputs"` // "console", "file"
	FilePath string   `toml:"file_path"`
}

// AnalyticsConfig holds defaults applied to fund reports.
type AnalyticsConfig struct {
	ReferenceRatePct float64 `toml:"reference_rate_pct"` // fixed-deposit benchmark, percent per year
	Currency         string  `toml:"currency"`           // ISO 4217 code used for display
}

// RateLimitConfig configures the HTTP token bucket. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			DSN:       "data/chitlens.db",
			Namespace: "chitlens",
			Database:  "chitlens",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/chitlens.log",
		},
		Analytics: AnalyticsConfig{
			ReferenceRatePct: 7.0,
			Currency:         "INR",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CHITLENS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("CHITLENS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CHITLENS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CHITLENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("CHITLENS_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("CHITLENS_STORAGE_DSN"); v != "" {
		config.Storage.DSN = v
	}
	if v := os.Getenv("CHITLENS_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}

	if v := os.Getenv("CHITLENS_REFERENCE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			config.Analytics.ReferenceRatePct = rate
		}
	}
	if v := os.Getenv("CHITLENS_CURRENCY"); v != "" {
		config.Analytics.Currency = strings.ToUpper(v)
	}
}

// Validate rejects configurations the app cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendPostgres, BackendSurrealDB:
	default:
		return fmt.Errorf("unknown storage backend %q (supported: sqlite, postgres, surrealdb)", c.Storage.Backend)
	}
	if c.Analytics.ReferenceRatePct < 0 {
		return fmt.Errorf("analytics.reference_rate_pct must not be negative")
	}
	if c.Analytics.Currency == "" {
		c.Analytics.Currency = "INR"
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
