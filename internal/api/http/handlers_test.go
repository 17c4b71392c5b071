package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Metrology/internal/api/middleware"
	"github.com/GriffinCanCode/Metrology/internal/domain/service"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/config"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Metrology/internal/providers/uncertainty"
)

type fixture struct {
	router   *gin.Engine
	metrics  *monitoring.Metrics
	registry *prometheus.Registry
}

func setup(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	provider := uncertainty.NewProvider(config.Default().Measurement, 100, nil, metrics)
	registry := service.NewRegistry()
	require.NoError(t, registry.Register(provider))

	h := NewHandlers(registry, metrics, nil, provider.Workspace())
	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/services", h.ListServices)
	router.POST("/services/discover", h.DiscoverServices)
	router.POST("/services/execute", h.ExecuteService)
	router.GET("/metrics/summary", h.GetMetricsSummary)
	return fixture{router: router, metrics: metrics, registry: reg}
}

func (f fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		buf.Write(raw)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func TestRootAndHealth(t *testing.T) {
	f := setup(t)

	w, body := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, Version, body["version"])

	w, body = f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "metrics")
	ws := body["workspace"].(map[string]interface{})
	assert.Equal(t, 0.0, ws["series"])
}

func TestListServices(t *testing.T) {
	f := setup(t)

	w, body := f.do(t, http.MethodGet, "/services", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["services"], 1)

	w, body = f.do(t, http.MethodGet, "/services?category=math", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["services"])

	w, _ = f.do(t, http.MethodGet, "/services?category=Bad%20Cat", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscoverServices(t *testing.T) {
	f := setup(t)

	w, body := f.do(t, http.MethodPost, "/services/discover", map[string]interface{}{"query": "uncertainty budget"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["services"], 1)

	w, _ = f.do(t, http.MethodPost, "/services/discover", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteService(t *testing.T) {
	f := setup(t)

	t.Run("success", func(t *testing.T) {
		w, body := f.do(t, http.MethodPost, "/services/execute", map[string]interface{}{
			"tool_id": "uncertainty.propagate",
			"params": map[string]interface{}{
				"op": "add",
				"a":  map[string]interface{}{"value": 10, "uncertainty": 0.3, "unit": "mm"},
				"b":  map[string]interface{}{"value": 5, "uncertainty": 0.4, "unit": "mm"},
			},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, true, body["success"])
		result := body["data"].(map[string]interface{})["result"].(map[string]interface{})
		assert.InDelta(t, 0.5, result["uncertainty"], 1e-12)
	})

	t.Run("tool failure is still 200", func(t *testing.T) {
		w, body := f.do(t, http.MethodPost, "/services/execute", map[string]interface{}{
			"tool_id": "uncertainty.coverage",
			"params":  map[string]interface{}{"confidence": 2},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	})

	t.Run("routing errors", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPost, "/services/execute", map[string]interface{}{
			"tool_id": "nope.tool", "params": map[string]interface{}{},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = f.do(t, http.MethodPost, "/services/execute", map[string]interface{}{
			"tool_id": "notool", "params": map[string]interface{}{},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = f.do(t, http.MethodPost, "/services/execute", map[string]interface{}{
			"tool_id": "uncertainty.propagate",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("uncertainty", "uncertainty.propagate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("uncertainty", "uncertainty.coverage", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ToolErrors.WithLabelValues("unknown", "unknown", "routing")))

	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				assert.NotContains(t, l.GetValue(), "nope", "%s has a label taken from the request", mf.GetName())
			}
		}
	}
}

func TestSeriesWorkflowOverHTTP(t *testing.T) {
	f := setup(t)

	_, body := f.do(t, http.MethodPost, "/services/execute", map[string]interface{}{
		"tool_id": "uncertainty.series.create",
		"params":  map[string]interface{}{"unit": "mm", "readings": []float64{25.01, 25.03, 24.99, 25.02, 25.00}},
	})
	require.Equal(t, true, body["success"], body)
	sid := body["data"].(map[string]interface{})["id"].(string)

	_, body = f.do(t, http.MethodPost, "/services/execute", map[string]interface{}{
		"tool_id": "uncertainty.series.interval",
		"params":  map[string]interface{}{"id": sid},
	})
	require.Equal(t, true, body["success"], body)
	result := body["data"].(map[string]interface{})["result"].(map[string]interface{})
	assert.InDelta(t, 25.01, result["value"], 1e-12)
	assert.Equal(t, 2.0, result["coverage_factor"])

	_, body = f.do(t, http.MethodGet, "/health", nil)
	ws := body["workspace"].(map[string]interface{})
	assert.Equal(t, 1.0, ws["series"])
}

func TestMetricsSummary(t *testing.T) {
	f := setup(t)
	f.metrics.RecordHTTPRequest("GET", "/", "200", 0, 0, 0)
	f.metrics.RecordHTTPRequest("GET", "/x", "404", 0, 0, 0)

	w, body := f.do(t, http.MethodGet, "/metrics/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["total_requests"])
	assert.Equal(t, 0.5, body["error_rate"])

	h := NewHandlers(service.NewRegistry(), nil, nil, nil)
	router := gin.New()
	router.GET("/metrics/summary", h.GetMetricsSummary)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/summary", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
