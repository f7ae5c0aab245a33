package config

import (
	"fmt"
	"os"
	"strconv"

	"docqc/internal/logger"
	"docqc/internal/quality"
)

type Config struct {
	// Artifact Locations
	ResultsDir    string
	HistoryDBPath string

	// Sharpness Thresholds
	SharpnessBlurryBelow float64
	SharpnessSharpFrom   float64

	// Batch Processing
	BatchWorkers int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	defaults := quality.DefaultSharpnessThresholds()

	blurryBelow, err := getEnvFloat("SHARPNESS_BLURRY_BELOW", defaults.BlurryBelow)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	sharpFrom, err := getEnvFloat("SHARPNESS_SHARP_FROM", defaults.SharpFrom)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	workers, err := getEnvInt("BATCH_WORKERS", 12)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	config := &Config{
		ResultsDir:           getEnv("RESULTS_DIR", "log"),
		HistoryDBPath:        getEnv("HISTORY_DB_PATH", "docqc.db"),
		SharpnessBlurryBelow: blurryBelow,
		SharpnessSharpFrom:   sharpFrom,
		BatchWorkers:         workers,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		// Reports go to stdout; logs stay out of their way.
		LogOutput: getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.SharpnessBlurryBelow < 0 {
		return fmt.Errorf("SHARPNESS_BLURRY_BELOW must not be negative")
	}
	if c.SharpnessSharpFrom < c.SharpnessBlurryBelow {
		return fmt.Errorf("SHARPNESS_SHARP_FROM must not be below SHARPNESS_BLURRY_BELOW")
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetSharpnessThresholds returns the sharpness cutoffs from the main config
func (c *Config) GetSharpnessThresholds() quality.SharpnessThresholds {
	return quality.SharpnessThresholds{
		BlurryBelow: c.SharpnessBlurryBelow,
		SharpFrom:   c.SharpnessSharpFrom,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, value)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return parsed, nil
}
