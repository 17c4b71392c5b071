package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, uint(128), cfg.Measurement.PrecisionBits)
	assert.Equal(t, 0.954, cfg.Measurement.DefaultConfidence)
	assert.Equal(t, 2.0, cfg.Measurement.ReportCoverage)

	assert.Equal(t, 1000, cfg.Workspace.MaxObjects)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                       "9000",
		"HOST":                       "127.0.0.1",
		"LOG_LEVEL":                  "debug",
		"LOG_DEV":                    "true",
		"RATE_LIMIT_RPS":             "500",
		"RATE_LIMIT_BURST":           "1000",
		"RATE_LIMIT_ENABLED":         "false",
		"MEASURE_PRECISION_BITS":     "256",
		"MEASURE_DEFAULT_CONFIDENCE": "0.997",
		"MEASURE_REPORT_COVERAGE":    "3",
		"WORKSPACE_MAX_OBJECTS":      "10",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, uint(256), cfg.Measurement.PrecisionBits)
	assert.Equal(t, 0.997, cfg.Measurement.DefaultConfidence)
	assert.Equal(t, 3.0, cfg.Measurement.ReportCoverage)
	assert.Equal(t, 10, cfg.Workspace.MaxObjects)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, uint(128), cfg.Measurement.PrecisionBits)
}

func TestMeasurementValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"precision too small", "MEASURE_PRECISION_BITS", "8"},
		{"precision too large", "MEASURE_PRECISION_BITS", "100000"},
		{"confidence zero", "MEASURE_DEFAULT_CONFIDENCE", "0"},
		{"confidence above one", "MEASURE_DEFAULT_CONFIDENCE", "1.5"},
		{"negative coverage", "MEASURE_REPORT_COVERAGE", "-2"},
		{"empty workspace", "WORKSPACE_MAX_OBJECTS", "0"},
		{"not a number", "MEASURE_PRECISION_BITS", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)

			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestRateLimitConfig(t *testing.T) {
	tests := []struct {
		name        string
		rps         string
		burst       string
		enabled     string
		wantRPS     int
		wantBurst   int
		wantEnabled bool
	}{
		{"default values", "", "", "", 100, 200, true},
		{"high limits", "1000", "2000", "", 1000, 2000, true},
		{"disabled", "", "", "false", 100, 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.rps != "" {
				t.Setenv("RATE_LIMIT_RPS", tt.rps)
			}
			if tt.burst != "" {
				t.Setenv("RATE_LIMIT_BURST", tt.burst)
			}
			if tt.enabled != "" {
				t.Setenv("RATE_LIMIT_ENABLED", tt.enabled)
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantRPS, cfg.RateLimit.RequestsPerSecond)
			assert.Equal(t, tt.wantBurst, cfg.RateLimit.Burst)
			assert.Equal(t, tt.wantEnabled, cfg.RateLimit.Enabled)
		})
	}
}
