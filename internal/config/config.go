// Package config loads application settings from environment variables.
//
// All settings use the MAILSENSE_ prefix and have sensible defaults, so the
// server runs without any configuration beyond Google and OpenAI credentials.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for settings not overridden via environment variables.
const (
	DefaultMaxResults          = 20
	DefaultCacheSize           = 1000
	DefaultCacheTTL            = 5 * time.Minute
	DefaultModel               = "gpt-4o-mini"
	DefaultMaxBodyChars        = 4000
	DefaultConfidenceThreshold = 0.7
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
)

// Config holds the runtime configuration for mailsense.
type Config struct {
	// MaxResults is the default page size for email searches (1-100).
	MaxResults int

	// CacheSize is the maximum number of messages held in the TTL cache.
	CacheSize int

	// CacheTTL is how long a fetched message stays valid in the cache.
	CacheTTL time.Duration

	// Model is the chat model used for email analysis.
	Model string

	// MaxBodyChars is the maximum number of body characters sent to the
	// analysis model. Longer bodies are truncated.
	MaxBodyChars int

	// ConfidenceThreshold is the minimum confidence below which analysis
	// results are logged as low-confidence (0.0 to 1.0).
	ConfidenceThreshold float64

	// OpenAIAPIKey authenticates analysis requests. Read from
	// OPENAI_API_KEY for compatibility with the openai SDK default.
	OpenAIAPIKey string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string

	// LogFormat is "text" or "json".
	LogFormat string
}

// Load returns a Config populated from environment variables, falling back
// to defaults for anything unset.
func Load() Config {
	return Config{
		MaxResults:          getEnvIntOrDefault("MAILSENSE_MAX_RESULTS", DefaultMaxResults),
		CacheSize:           getEnvIntOrDefault("MAILSENSE_CACHE_SIZE", DefaultCacheSize),
		CacheTTL:            getEnvDurationOrDefault("MAILSENSE_CACHE_TTL", DefaultCacheTTL),
		Model:               getEnvOrDefault("MAILSENSE_MODEL", DefaultModel),
		MaxBodyChars:        getEnvIntOrDefault("MAILSENSE_MAX_BODY_CHARS", DefaultMaxBodyChars),
		ConfidenceThreshold: getEnvFloatOrDefault("MAILSENSE_CONFIDENCE_THRESHOLD", DefaultConfidenceThreshold),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		LogLevel:            getEnvOrDefault("MAILSENSE_LOG_LEVEL", DefaultLogLevel),
		LogFormat:           getEnvOrDefault("MAILSENSE_LOG_FORMAT", DefaultLogFormat),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxResults < 1 || c.MaxResults > 100 {
		return fmt.Errorf("max results must be between 1 and 100, got %d", c.MaxResults)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	if c.MaxBodyChars < 1 {
		return fmt.Errorf("max body chars must be positive, got %d", c.MaxBodyChars)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be between 0.0 and 1.0, got %f", c.ConfidenceThreshold)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("invalid log format %q, must be one of: text, json", c.LogFormat)
	}

	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the int value of an environment variable or a default value.
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvFloatOrDefault returns the float64 value of an environment variable or a default value.
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvDurationOrDefault returns the duration value of an environment variable or a default value.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
