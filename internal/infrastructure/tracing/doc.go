// Package tracing records lightweight request and tool-execution spans and
// logs them through zap.
//
// Spans share a trace ID across one request. The gin middleware honours
// inbound X-Trace-ID and X-Span-ID headers and echoes the current pair on
// the response. Span logging happens on a collector goroutine; when its
// buffer is full spans are dropped and counted rather than blocking the
// request.
package tracing
