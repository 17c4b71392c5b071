package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/Metrology/internal/api/http"
	"github.com/GriffinCanCode/Metrology/internal/api/middleware"
	"github.com/GriffinCanCode/Metrology/internal/domain/service"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/config"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Metrology/internal/providers/uncertainty"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	registry   *service.Registry
	provider   *uncertainty.Provider
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Info("Initializing Metrology Server",
		zap.String("port", cfg.Server.Port),
		zap.Uint("precision_bits", cfg.Measurement.PrecisionBits),
		zap.Float64("default_confidence", cfg.Measurement.DefaultConfidence),
	)

	// Metrics first; the provider reports workspace gauges into them
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(promRegistry)

	serviceRegistry := service.NewRegistry()
	provider := uncertainty.NewProvider(cfg.Measurement, cfg.Workspace.MaxObjects, logger, metrics)
	if err := serviceRegistry.Register(provider); err != nil {
		return nil, fmt.Errorf("failed to register uncertainty provider: %w", err)
	}
	logger.Info("Registered service providers", zap.Any("stats", serviceRegistry.Stats()))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	tracer := tracing.New("metrology", logger)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := api.NewHandlers(serviceRegistry, metrics, logger, provider.Workspace()).
		WithTracer(tracer)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/discover", handlers.DiscoverServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))
	router.GET("/metrics/summary", handlers.GetMetricsSummary)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		registry: serviceRegistry,
		provider: provider,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the service registry
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails. Cancellation triggers a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}

// Close releases server resources
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	series, budgets := s.provider.Workspace().Len()
	s.logger.Info("Discarding workspace", zap.Int("series", series), zap.Int("budgets", budgets))
	s.tracer.Close()

	// Sync errors on stderr/stdout are expected on some platforms
	_ = s.logger.Sync()
	return nil
}
