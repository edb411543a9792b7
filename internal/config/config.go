package config

import (
	"os"
	"strconv"

	"gorate/domain/rate"
	"gorate/internal/errors"
	"gorate/internal/inference"
	"gorate/internal/timeline"
)

// Config represents the complete application configuration
type Config struct {
	Model    ModelConfig
	Server   ServerConfig
	Database DatabaseConfig
	Source   SourceConfig
}

// ModelConfig holds the inference parameters
type ModelConfig struct {
	Prior       rate.Prior
	Reference   rate.ReferenceDistribution
	SampleSize  int
	Horizon     float64 // days
	MaxK        int
	CurvePoints int
	DailyWindow int    // trailing days of daily counts
	Seed        uint64 // 0 draws the reference sample from an unseeded stream
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the optional read-only event database
type DatabaseConfig struct {
	URL   string
	Table string
}

// SourceConfig holds file-based event source settings
type SourceConfig struct {
	EventsFile string
	Column     string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Model:    loadModelConfig(),
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Source:   loadSourceConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration Load produces with an empty environment
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Prior:       rate.DefaultPrior(),
			Reference:   rate.DefaultReference(),
			SampleSize:  inference.DefaultSampleSize,
			Horizon:     1,
			MaxK:        inference.DefaultMaxK,
			CurvePoints: inference.DefaultCurvePoints,
			DailyWindow: timeline.DefaultWindowDays,
		},
		Server:   ServerConfig{Port: "8080", GinMode: "debug"},
		Database: DatabaseConfig{Table: "events"},
		Source:   SourceConfig{Column: "created_at"},
	}
}

func loadModelConfig() ModelConfig {
	d := Default().Model
	return ModelConfig{
		Prior: rate.Prior{
			Alpha: getEnvFloatOrDefault("PRIOR_ALPHA", d.Prior.Alpha),
			Beta:  getEnvFloatOrDefault("PRIOR_BETA", d.Prior.Beta),
		},
		Reference: rate.ReferenceDistribution{
			Shape: getEnvFloatOrDefault("REFERENCE_SHAPE", d.Reference.Shape),
			Rate:  getEnvFloatOrDefault("REFERENCE_RATE", d.Reference.Rate),
		},
		SampleSize:  getEnvIntOrDefault("REFERENCE_SAMPLE_SIZE", d.SampleSize),
		Horizon:     getEnvFloatOrDefault("HORIZON_DAYS", d.Horizon),
		MaxK:        getEnvIntOrDefault("PMF_MAX_K", d.MaxK),
		CurvePoints: getEnvIntOrDefault("CURVE_POINTS", d.CurvePoints),
		DailyWindow: getEnvIntOrDefault("DAILY_WINDOW_DAYS", d.DailyWindow),
		Seed:        getEnvUintOrDefault("RNG_SEED", 0),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:   getEnvOrDefault("DATABASE_URL", ""),
		Table: getEnvOrDefault("EVENTS_TABLE", "events"),
	}
}

func loadSourceConfig() SourceConfig {
	return SourceConfig{
		EventsFile: getEnvOrDefault("EVENTS_FILE", ""),
		Column:     getEnvOrDefault("EVENTS_COLUMN", "created_at"),
	}
}

// Validate checks model parameters; server and source settings are optional
func (c *Config) Validate() error {
	m := c.Model
	if err := m.Prior.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := m.Reference.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if m.SampleSize <= 0 {
		return errors.ConfigInvalid("REFERENCE_SAMPLE_SIZE must be positive")
	}
	if !(m.Horizon > 0) {
		return errors.ConfigInvalid("HORIZON_DAYS must be positive")
	}
	if m.MaxK < 0 {
		return errors.ConfigInvalid("PMF_MAX_K must be non-negative")
	}
	if m.CurvePoints <= 0 {
		return errors.ConfigInvalid("CURVE_POINTS must be positive")
	}
	if m.DailyWindow <= 0 {
		return errors.ConfigInvalid("DAILY_WINDOW_DAYS must be positive")
	}
	if c.Database.URL != "" && c.Database.Table == "" {
		return errors.ConfigInvalid("EVENTS_TABLE is required when DATABASE_URL is set")
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

func getEnvUintOrDefault(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
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
