// Package config provides application configuration from environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Lookup LookupConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-device storage paths.
type DataConfig struct {
	// BasePath is the root for all persisted data (database, search index).
	BasePath string
}

// LookupConfig holds book-metadata lookup configuration.
type LookupConfig struct {
	// BaseURL of the Open Library API.
	BaseURL string
	// CoverBaseURL for constructing cover image URLs.
	CoverBaseURL string
}

// Load builds the configuration with precedence:
// 1. Environment variables.
// 2. .env file (if present).
// 3. Default values.
func Load() (*Config, error) {
	// Ignore a missing .env; it is optional.
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Environment: getEnv("MINDLEAF_ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getEnv("MINDLEAF_LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getEnv("MINDLEAF_DATA_PATH", defaultDataPath()),
		},
		Lookup: LookupConfig{
			BaseURL:      getEnv("MINDLEAF_LOOKUP_URL", "https://openlibrary.org"),
			CoverBaseURL: getEnv("MINDLEAF_COVER_URL", "https://covers.openlibrary.org"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatabasePath returns the Badger database directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "db")
}

// SearchIndexPath returns the Bleve index directory.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.Data.BasePath, "search.bleve")
}

func (c *Config) validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment %q", c.App.Environment)
	}
	if c.Data.BasePath == "" {
		return fmt.Errorf("data path must not be empty")
	}
	return nil
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mindleaf"
	}
	return filepath.Join(home, ".mindleaf")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
