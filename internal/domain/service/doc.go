// Package service provides the registry of tool providers.
//
// The registry maintains a catalog of providers, routes tool calls by the
// service prefix of the tool ID ("uncertainty.propagate" goes to the
// "uncertainty" provider) and ranks services against free-text queries.
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(uncertainty.NewProvider(cfg.Measurement, logger))
//	result, err := registry.Execute(ctx, "uncertainty.coverage", params, appCtx)
package service
