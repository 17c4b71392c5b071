package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Metrology/internal/api/middleware"
	"github.com/GriffinCanCode/Metrology/internal/domain/service"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Metrology/internal/shared/types"
	"github.com/GriffinCanCode/Metrology/internal/shared/utils"
)

const (
	// Version is reported by the root endpoint
	Version = "0.1.0"

	defaultDiscoverLimit = 5
	maxDiscoverLimit     = 50

	// unroutedLabel replaces service and tool labels for calls that matched no tool
	unroutedLabel = "unknown"
)

// WorkspaceCounter reports stored object counts for the health endpoint
type WorkspaceCounter interface {
	Len() (series, budgets int)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	registry  *service.Registry
	metrics   *monitoring.Metrics
	logger    *logging.Logger
	workspace WorkspaceCounter
	tracer    *tracing.Tracer
}

// NewHandlers creates a new handler set. workspace may be nil.
func NewHandlers(registry *service.Registry, metrics *monitoring.Metrics, logger *logging.Logger, workspace WorkspaceCounter) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		registry:  registry,
		metrics:   metrics,
		logger:    logger.Component("http"),
		workspace: workspace,
	}
}

// WithTracer records a span per tool execution
func (h *Handlers) WithTracer(tracer *tracing.Tracer) *Handlers {
	h.tracer = tracer
	return h
}

// Root handles liveness
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Metrology Service",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":           "healthy",
		"service_registry": h.registry.Stats(),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}
	if h.workspace != nil {
		series, budgets := h.workspace.Len()
		resp["workspace"] = gin.H{"series": series, "budgets": budgets}
	}
	c.JSON(http.StatusOK, resp)
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	categoryStr := c.Query("category")
	if err := utils.ValidateCategory(categoryStr, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category *types.Category
	if categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// DiscoverServices finds services relevant to a free-text query
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req types.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateQuery(req.Query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultDiscoverLimit
	}
	if limit > maxDiscoverLimit {
		limit = maxDiscoverLimit
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    req.Query,
		"services": h.registry.Discover(req.Query, limit),
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateToolID(req.ToolID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateParams(req.Params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := middleware.GetRequestID(c)
	clientIP := c.ClientIP()
	appCtx := &types.Context{RequestID: &requestID, ClientIP: &clientIP}
	log := h.logger.Tool(req.ToolID, requestID)

	serviceID, _, _ := strings.Cut(req.ToolID, ".")
	var timer *monitoring.Timer
	if h.metrics != nil {
		timer = monitoring.NewTimer(h.metrics, serviceID, req.ToolID)
	}

	ctx := c.Request.Context()
	var span *tracing.Span
	if h.tracer != nil {
		span, ctx = h.tracer.Start(ctx, "tool "+req.ToolID)
		span.SetTag("request_id", requestID)
		defer span.Finish()
	}

	result, err := h.registry.Execute(ctx, req.ToolID, req.Params, appCtx)
	if err != nil {
		if span != nil {
			span.SetError(err)
		}
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrServiceNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrInvalidToolID):
			status = http.StatusBadRequest
		}
		// the tool ID is caller input; keep it out of metric labels
		if h.metrics != nil {
			h.metrics.RecordToolError(unroutedLabel, unroutedLabel, "routing")
		}
		log.Warn("tool execution failed", zap.Error(err), zap.Int("status", status))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if span != nil && !result.Success && result.Error != nil {
		span.SetError(errors.New(*result.Error))
	}
	if timer != nil {
		outcome := "success"
		if !result.Success {
			outcome = "failure"
		}
		duration := timer.Stop(outcome)
		log.Debug("tool executed", zap.String("outcome", outcome), zap.Duration("duration", duration))
	}

	c.JSON(http.StatusOK, result)
}
