package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Tool metrics
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	ToolErrors   *prometheus.CounterVec

	// Workspace metrics
	WorkspaceObjects *prometheus.GaugeVec
	ReadingsTotal    prometheus.Counter

	startTime time.Time

	// Snapshot for the JSON health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	ToolCalls     int64   `json:"tool_calls"`
	ToolFailures  int64   `json:"tool_failures"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics registers all collectors on reg. Each registry can hold one
// Metrics; tests pass a fresh prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrology_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metrology_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
	m.RequestSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metrology_http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)
	m.ResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metrology_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	m.ToolCalls = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrology_tool_calls_total",
			Help: "Total number of tool executions",
		},
		[]string{"service", "tool", "status"},
	)
	m.ToolDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metrology_tool_duration_seconds",
			Help:    "Tool execution duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"service", "tool"},
	)
	m.ToolErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrology_tool_errors_total",
			Help: "Total number of failed tool executions",
		},
		[]string{"service", "tool", "error_type"},
	)

	m.WorkspaceObjects = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "metrology_workspace_objects",
			Help: "Number of series and budgets held in the workspace",
		},
		[]string{"kind"},
	)
	m.ReadingsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "metrology_readings_total",
			Help: "Total number of readings appended to series",
		},
	)

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "metrology_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordToolCall records a tool execution; status is "success" or "failure"
func (m *Metrics) RecordToolCall(service, tool, status string, duration time.Duration) {
	m.ToolCalls.WithLabelValues(service, tool, status).Inc()
	m.ToolDuration.WithLabelValues(service, tool).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.ToolCalls++
	if status != "success" {
		m.snapshot.ToolFailures++
	}
	m.mu.Unlock()
}

// RecordToolError records the class of a failed tool execution
func (m *Metrics) RecordToolError(service, tool, errorType string) {
	m.ToolErrors.WithLabelValues(service, tool, errorType).Inc()
}

// SetWorkspaceObjects sets the number of live objects of a kind
func (m *Metrics) SetWorkspaceObjects(kind string, count int) {
	m.WorkspaceObjects.WithLabelValues(kind).Set(float64(count))
}

// AddReadings counts readings appended to series
func (m *Metrics) AddReadings(n int) {
	m.ReadingsTotal.Add(float64(n))
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMs = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
