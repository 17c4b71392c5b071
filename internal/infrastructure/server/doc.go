// Package server assembles the gin router, middleware stack and service
// registry into an HTTP server with graceful shutdown.
package server
