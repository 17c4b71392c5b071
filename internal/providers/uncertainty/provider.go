package uncertainty

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Metrology/internal/infrastructure/config"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Metrology/internal/shared/types"
)

// ServiceID is the registry ID of the uncertainty service.
const ServiceID = "uncertainty"

// Options is the state shared by every tool module
type Options struct {
	DefaultConfidence float64
	ReportCoverage    float64

	workspace *Workspace
	metrics   *monitoring.Metrics
	logger    *logging.Logger
}

// fail logs a rejected call, counts it and turns err into a failed result.
func (o *Options) fail(toolID string, err error) (*types.Result, error) {
	kind := errorType(err)
	if o.metrics != nil {
		o.metrics.RecordToolError(ServiceID, toolID, kind)
	}
	o.logger.Warn("tool call rejected",
		zap.String("tool", toolID),
		zap.String("error_type", kind),
		zap.Error(err))
	return Failure(err.Error())
}

// Provider implements measurement uncertainty tools
type Provider struct {
	opts *Options

	values  *ValueOps
	series  *SeriesOps
	budgets *BudgetOps
	store   *StoreOps
}

// NewProvider creates the uncertainty provider. metrics may be nil.
func NewProvider(cfg config.MeasurementConfig, maxObjects int, logger *logging.Logger, metrics *monitoring.Metrics) *Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	ws := NewWorkspace(maxObjects)
	if metrics != nil {
		ws.OnChange(func(series, budgets int) {
			metrics.SetWorkspaceObjects("series", series)
			metrics.SetWorkspaceObjects("budget", budgets)
		})
	}

	confidence := cfg.DefaultConfidence
	if !(confidence > 0 && confidence <= 1) {
		confidence = 0.954
	}
	coverage := cfg.ReportCoverage
	if coverage <= 0 {
		coverage = 2
	}

	opts := &Options{
		DefaultConfidence: confidence,
		ReportCoverage:    coverage,
		workspace:         ws,
		metrics:           metrics,
		logger:            logger.Component(ServiceID),
	}
	return &Provider{
		opts:    opts,
		values:  &ValueOps{Options: opts},
		series:  &SeriesOps{Options: opts},
		budgets: &BudgetOps{Options: opts},
		store:   &StoreOps{Options: opts},
	}
}

// Workspace exposes the provider's object store.
func (p *Provider) Workspace() *Workspace {
	return p.opts.workspace
}

// Definition returns service metadata with all module tools
func (p *Provider) Definition() types.Service {
	tools := []types.Tool{}
	tools = append(tools, p.values.GetTools()...)
	tools = append(tools, p.series.GetTools()...)
	tools = append(tools, p.budgets.GetTools()...)
	tools = append(tools, p.store.GetTools()...)

	return types.Service{
		ID:          ServiceID,
		Name:        "Measurement Uncertainty Service",
		Description: "Measured values with uncertainty, repeated-measurement statistics and GUM uncertainty budgets",
		Category:    types.CategoryMetrology,
		Capabilities: []string{
			"propagation",
			"comparison",
			"unit conversion",
			"statistics",
			"outlier detection",
			"uncertainty budget",
		},
		Tools: tools,
	}
}

// Execute routes to appropriate module
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if params == nil {
		params = map[string]interface{}{}
	}

	switch toolID {
	// Measured values
	case "uncertainty.propagate":
		return p.values.Propagate(ctx, params, appCtx)
	case "uncertainty.compare":
		return p.values.Compare(ctx, params, appCtx)
	case "uncertainty.convert":
		return p.values.Convert(ctx, params, appCtx)
	case "uncertainty.coverage":
		return p.values.Coverage(ctx, params, appCtx)
	case "uncertainty.format":
		return p.values.Format(ctx, params, appCtx)

	// Measurement series
	case "uncertainty.series.create":
		return p.series.Create(ctx, params, appCtx)
	case "uncertainty.series.add":
		return p.series.Add(ctx, params, appCtx)
	case "uncertainty.series.stats":
		return p.series.Stats(ctx, params, appCtx)
	case "uncertainty.series.outliers":
		return p.series.Outliers(ctx, params, appCtx)
	case "uncertainty.series.interval":
		return p.series.Interval(ctx, params, appCtx)
	case "uncertainty.series.trimmed":
		return p.series.Trimmed(ctx, params, appCtx)

	// Uncertainty budgets
	case "uncertainty.budget.create":
		return p.budgets.Create(ctx, params, appCtx)
	case "uncertainty.budget.add":
		return p.budgets.AddSource(ctx, params, appCtx)
	case "uncertainty.budget.add_series":
		return p.budgets.AddSeries(ctx, params, appCtx)
	case "uncertainty.budget.combine":
		return p.budgets.Combine(ctx, params, appCtx)
	case "uncertainty.budget.result":
		return p.budgets.Result(ctx, params, appCtx)
	case "uncertainty.budget.report":
		return p.budgets.Report(ctx, params, appCtx)

	// Workspace
	case "uncertainty.workspace.list":
		return p.store.List(ctx, params, appCtx)
	case "uncertainty.workspace.delete":
		return p.store.Delete(ctx, params, appCtx)

	default:
		return Failuref("unknown tool: %s", toolID)
	}
}
