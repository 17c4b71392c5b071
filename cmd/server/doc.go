// Package main is the entry point for the Metrology HTTP server.
//
// The server exposes the uncertainty service over a small REST API:
//
//	GET  /                  liveness
//	GET  /health            registry, workspace and metrics snapshot
//	GET  /services          registered services (?category=metrology)
//	POST /services/discover free-text service discovery
//	POST /services/execute  run a tool: {"tool_id": "...", "params": {...}}
//	GET  /metrics           Prometheus exposition
//	GET  /metrics/summary   JSON rates
//
// Configuration comes from the environment (PORT, HOST, LOG_LEVEL,
// LOG_DEV, RATE_LIMIT_*, MEASURE_*, WORKSPACE_MAX_OBJECTS); -port, -host
// and -dev override it.
//
// Usage:
//
//	./server -port 8000
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
