package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
	})
	return router
}

func get(router *gin.Engine, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	router := setupTestRouter(CORS(DefaultCORSConfig()))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantHeader bool
	}{
		{"simple GET with origin", http.MethodGet, "http://localhost:3000", http.StatusOK, true},
		{"preflight", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, true},
		{"no origin header", http.MethodGet, "", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantHeader {
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Contains(t, cfg.AllowOrigins, "*")
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, RequestIDHeader)
	assert.Contains(t, cfg.ExposeHeaders, RequestIDHeader)
	assert.False(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(router, "192.168.1.1:1234", nil).Code, "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(router, "192.168.1.1:1234", nil).Code)

	// a different client has its own bucket
	assert.Equal(t, http.StatusOK, get(router, "192.168.1.2:1234", nil).Code)
}

func TestGlobalRateLimit(t *testing.T) {
	router := setupTestRouter(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	assert.Equal(t, http.StatusOK, get(router, "10.0.0.1:1", nil).Code)
	assert.Equal(t, http.StatusOK, get(router, "10.0.0.2:1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "10.0.0.3:1", nil).Code)
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	set := newLimiterSet(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTimeout: time.Minute})
	now := time.Unix(1_700_000_000, 0)
	set.now = func() time.Time { return now }

	assert.True(t, set.allow("a"))
	assert.False(t, set.allow("a"))
	assert.True(t, set.allow("b"))
	assert.Equal(t, 2, set.size())

	now = now.Add(2 * time.Minute)
	assert.True(t, set.allow("c"))
	assert.Equal(t, 1, set.size())
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter(RequestID())

	t.Run("generated when absent", func(t *testing.T) {
		w := get(router, "", nil)
		rid := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(rid)
		require.NoError(t, err)
		assert.Contains(t, w.Body.String(), rid)
	})

	t.Run("propagated when valid", func(t *testing.T) {
		w := get(router, "", map[string]string{RequestIDHeader: "req_abc-123"})
		assert.Equal(t, "req_abc-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("replaced when malformed", func(t *testing.T) {
		for _, bad := range []string{"has space", "semi;colon", strings.Repeat("x", 65)} {
			w := get(router, "", map[string]string{RequestIDHeader: bad})
			assert.NotEqual(t, bad, w.Header().Get(RequestIDHeader))
		}
	})
}

func BenchmarkRateLimit(b *testing.B) {
	router := setupTestRouter(RateLimit(DefaultRateLimitConfig()))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.168.1.1:1234"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}
