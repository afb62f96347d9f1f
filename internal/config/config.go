package config

import (
	"os"
	"strconv"
	"time"

	"lightlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Archive  ArchiveConfig
	Pipeline PipelineConfig
	Database DatabaseConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// CatalogConfig points at the reference table resource
type CatalogConfig struct {
	File string
}

// ArchiveConfig holds external archive client settings
type ArchiveConfig struct {
	BaseURL     string
	Timeout     time.Duration
	CacheDBPath string
}

// PipelineConfig holds numeric pipeline settings
type PipelineConfig struct {
	FlattenWindow int
	OutlierSigma  float64
	Oversample    int
}

// DatabaseConfig holds the optional run ledger settings. An empty URL
// disables the ledger.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Catalog: CatalogConfig{
			File: getEnvOrDefault("CATALOG_FILE", "lurie_ebs.csv"),
		},
		Archive: ArchiveConfig{
			BaseURL:     getEnvOrDefault("ARCHIVE_BASE_URL", "https://mast.stsci.edu"),
			Timeout:     getEnvDurationOrDefault("ARCHIVE_TIMEOUT", 120*time.Second),
			CacheDBPath: getEnvOrDefault("CACHE_DB_PATH", "lightlab-cache.db"),
		},
		Pipeline: PipelineConfig{
			FlattenWindow: getEnvIntOrDefault("FLATTEN_WINDOW", 401),
			OutlierSigma:  getEnvFloatOrDefault("OUTLIER_SIGMA", 5.0),
			Oversample:    getEnvIntOrDefault("OVERSAMPLE", 5),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Catalog.File == "" {
		return errors.ConfigInvalid("catalog file is required")
	}
	if config.Archive.BaseURL == "" {
		return errors.ConfigInvalid("archive base URL is required")
	}
	if config.Pipeline.FlattenWindow < 4 {
		return errors.ConfigInvalid("flatten window too small")
	}
	if config.Pipeline.OutlierSigma <= 0 {
		return errors.ConfigInvalid("outlier sigma must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
