// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components derive child loggers rather than building their own:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Logging))
//	wsLog := logger.Component("workspace")
//	wsLog.Tool("uncertainty.series.add", reqID).Debug("reading added", zap.Int("count", n))
package logging
