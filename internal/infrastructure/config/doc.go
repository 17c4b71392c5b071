// Package config provides 12-factor configuration management for the
// metrology service.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Measurement: Real precision, default confidence, report coverage factor
//   - Workspace: Capacity of the in-memory series/budget store
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	numeric.SetPrecision(cfg.Measurement.PrecisionBits)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - MEASURE_PRECISION_BITS, MEASURE_DEFAULT_CONFIDENCE, MEASURE_REPORT_COVERAGE
//   - WORKSPACE_MAX_OBJECTS
package config
