package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Logging     LogConfig
	RateLimit   RateLimitConfig
	Measurement MeasurementConfig
	Workspace   WorkspaceConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// MeasurementConfig holds numeric and reporting defaults.
type MeasurementConfig struct {
	// PrecisionBits is the mantissa size of every Real created after startup.
	PrecisionBits uint `envconfig:"MEASURE_PRECISION_BITS" default:"128"`
	// DefaultConfidence applies when a tool call omits "confidence".
	DefaultConfidence float64 `envconfig:"MEASURE_DEFAULT_CONFIDENCE" default:"0.954"`
	// ReportCoverage is the k of the expanded line in budget reports.
	ReportCoverage float64 `envconfig:"MEASURE_REPORT_COVERAGE" default:"2"`
}

// WorkspaceConfig bounds the in-memory store of series and budgets.
type WorkspaceConfig struct {
	MaxObjects int `envconfig:"WORKSPACE_MAX_OBJECTS" default:"1000"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Measurement: MeasurementConfig{
			PrecisionBits:     128,
			DefaultConfidence: 0.954,
			ReportCoverage:    2,
		},
		Workspace: WorkspaceConfig{
			MaxObjects: 1000,
		},
	}
}

// Validate rejects settings the measurement core cannot honour.
func (c *Config) Validate() error {
	m := c.Measurement
	if m.PrecisionBits < 24 || m.PrecisionBits > 4096 {
		return fmt.Errorf("invalid config: MEASURE_PRECISION_BITS %d outside [24, 4096]", m.PrecisionBits)
	}
	if !(m.DefaultConfidence > 0 && m.DefaultConfidence <= 1) {
		return fmt.Errorf("invalid config: MEASURE_DEFAULT_CONFIDENCE %v outside (0, 1]", m.DefaultConfidence)
	}
	if !(m.ReportCoverage > 0) {
		return fmt.Errorf("invalid config: MEASURE_REPORT_COVERAGE must be positive")
	}
	if c.Workspace.MaxObjects < 1 {
		return fmt.Errorf("invalid config: WORKSPACE_MAX_OBJECTS must be at least 1")
	}
	return nil
}
