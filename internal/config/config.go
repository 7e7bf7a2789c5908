// Package config handles service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds all service configuration.
type Config struct {
	Port         string
	Env          string
	DataDir      string
	OSMFile      string
	Verbose      bool
	QueryTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Variables from .env files (if any) are loaded first; already set variables are not overridden.
func Load(envFiles ...string) *Config {
	// Missing .env is not an error: defaults and process environment are used
	_ = godotenv.Load(envFiles...)
	return &Config{
		Port:         getEnv("ROADGRAPH_PORT", "8080"),
		Env:          getEnv("ROADGRAPH_ENV", "development"),
		DataDir:      getEnv("ROADGRAPH_DATA_DIR", ""),
		OSMFile:      getEnv("ROADGRAPH_OSM_FILE", ""),
		Verbose:      getBoolEnv("ROADGRAPH_VERBOSE", false),
		QueryTimeout: getDurationEnv("ROADGRAPH_QUERY_TIMEOUT_SECONDS", 10) * time.Second,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks that exactly one data source is configured.
func (c *Config) Validate() error {
	if c.DataDir == "" && c.OSMFile == "" {
		return errors.New("either ROADGRAPH_DATA_DIR or ROADGRAPH_OSM_FILE must be set")
	}
	if c.DataDir != "" && c.OSMFile != "" {
		return errors.New("ROADGRAPH_DATA_DIR and ROADGRAPH_OSM_FILE are mutually exclusive")
	}
	if c.QueryTimeout <= 0 {
		return errors.New("ROADGRAPH_QUERY_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds)
		}
	}
	return time.Duration(defaultSeconds)
}
