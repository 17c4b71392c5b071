package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsSummary provides high-level service metrics
type MetricsSummary struct {
	Timestamp        time.Time `json:"timestamp"`
	TotalRequests    int64     `json:"total_requests"`
	AverageLatencyMs float64   `json:"average_latency_ms"`
	ErrorRate        float64   `json:"error_rate"`
	ToolCalls        int64     `json:"tool_calls"`
	ToolFailureRate  float64   `json:"tool_failure_rate"`
	UptimeSeconds    float64   `json:"uptime_seconds"`
}

// GetMetricsSummary returns rates derived from the running totals
func (h *Handlers) GetMetricsSummary(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, h.summary())
}

func (h *Handlers) summary() MetricsSummary {
	snap := h.metrics.Snapshot()

	var errorRate, failureRate float64
	if snap.TotalRequests > 0 {
		errorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}
	if snap.ToolCalls > 0 {
		failureRate = float64(snap.ToolFailures) / float64(snap.ToolCalls)
	}

	return MetricsSummary{
		Timestamp:        time.Now().UTC(),
		TotalRequests:    snap.TotalRequests,
		AverageLatencyMs: snap.AvgLatencyMs,
		ErrorRate:        errorRate,
		ToolCalls:        snap.ToolCalls,
		ToolFailureRate:  failureRate,
		UptimeSeconds:    snap.UptimeSeconds,
	}
}
