// Package middleware provides the HTTP middleware stack of the metrology
// service.
//
// Middleware stack:
//   - RequestID: X-Request-ID propagation (UUIDv4 when absent)
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//   - GlobalRateLimit: One bucket shared by all clients
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
