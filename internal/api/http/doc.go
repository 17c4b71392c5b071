// Package http contains the gin handlers of the REST API: liveness and
// health, service listing and discovery, tool execution and a JSON metrics
// summary.
package http
