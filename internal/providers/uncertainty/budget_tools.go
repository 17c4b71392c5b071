package uncertainty

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
	"github.com/GriffinCanCode/Metrology/internal/quantity"
	"github.com/GriffinCanCode/Metrology/internal/shared/types"
	"github.com/GriffinCanCode/Metrology/internal/shared/utils"
	core "github.com/GriffinCanCode/Metrology/internal/uncertainty"
)

// BudgetOps handles uncertainty budget tools
type BudgetOps struct {
	*Options
}

// GetTools returns budget tool definitions
func (b *BudgetOps) GetTools() []types.Tool {
	idParam := types.Parameter{Name: "id", Type: "string", Description: "Budget ID", Required: true}
	kParam := types.Parameter{Name: "k", Type: "number", Description: "Coverage factor, defaults to the service report coverage", Required: false}
	return []types.Tool{
		{
			ID:          "uncertainty.budget.create",
			Name:        "Create Budget",
			Description: "Create an empty uncertainty budget",
			Parameters: []types.Parameter{
				{Name: "name", Type: "string", Description: "Budget name", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.budget.add",
			Name:        "Add Source",
			Description: "Add or replace a named uncertainty source",
			Parameters: []types.Parameter{
				idParam,
				{Name: "name", Type: "string", Description: "Source name", Required: true},
				{Name: "uncertainty", Type: "number", Description: "Standard uncertainty", Required: true},
				{Name: "unit", Type: "string", Description: "Unit of the uncertainty", Required: true},
				{Name: "type", Type: "string", Description: "A (statistical) or B (other information)", Required: true},
				{Name: "sensitivity", Type: "number", Description: "Sensitivity coefficient, default 1", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.budget.add_series",
			Name:        "Add Series Source",
			Description: "Add a series' standard error as a Type A source",
			Parameters: []types.Parameter{
				idParam,
				{Name: "name", Type: "string", Description: "Source name", Required: true},
				{Name: "series_id", Type: "string", Description: "Series ID", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.budget.combine",
			Name:        "Combine",
			Description: "Combined and expanded uncertainty with per-source contributions",
			Parameters:  []types.Parameter{idParam, kParam},
			Returns:     "object",
		},
		{
			ID:          "uncertainty.budget.result",
			Name:        "Result",
			Description: "Attach the expanded uncertainty of a budget to a measured value",
			Parameters: []types.Parameter{
				idParam,
				{Name: "value", Type: "number", Description: "Measured value", Required: true},
				{Name: "unit", Type: "string", Description: "Unit of the value", Required: true},
				{Name: "confidence", Type: "number", Description: "Confidence level selecting k", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.budget.report",
			Name:        "Report",
			Description: "Plain-text uncertainty budget table",
			Parameters:  []types.Parameter{idParam, kParam},
			Returns:     "string",
		},
	}
}

func (b *BudgetOps) lookup(params map[string]interface{}) (string, *core.Budget, error) {
	bid, _ := GetString(params, "id")
	if err := utils.ValidateID(bid, "id", true); err != nil {
		return bid, nil, err
	}
	budget, err := b.workspace.Budget(bid)
	return bid, budget, err
}

func (b *BudgetOps) coverage(params map[string]interface{}) (float64, error) {
	k, ok := GetNumber(params, "k")
	if !ok {
		return b.ReportCoverage, nil
	}
	if !(k > 0) {
		return 0, fmt.Errorf("%w: coverage factor must be positive", core.ErrInvalidArgument)
	}
	return k, nil
}

// Create stores a new budget
func (b *BudgetOps) Create(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	name, _ := GetString(params, "name")
	if name != "" {
		if err := utils.ValidateName(name, "name"); err != nil {
			return b.fail("uncertainty.budget.create", err)
		}
	}
	bid, err := b.workspace.AddBudget(core.NewBudget(name))
	if err != nil {
		return b.fail("uncertainty.budget.create", err)
	}
	b.logger.Debug("budget created", zap.String("id", bid.String()), zap.String("name", name))
	return Success(map[string]interface{}{"id": bid.String(), "name": name})
}

// AddSource adds or replaces a named source
func (b *BudgetOps) AddSource(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	bid, budget, err := b.lookup(params)
	if err != nil {
		return b.fail("uncertainty.budget.add", err)
	}
	name, _ := GetString(params, "name")
	if err := utils.ValidateName(name, "name"); err != nil {
		return b.fail("uncertainty.budget.add", err)
	}
	sigma, err := getReal(params, "uncertainty")
	if err != nil {
		return b.fail("uncertainty.budget.add", err)
	}
	u, err := getUnit(params, "unit", nil)
	if err != nil {
		return b.fail("uncertainty.budget.add", err)
	}
	typeName, _ := GetString(params, "type")
	typ, err := core.ParseSourceType(typeName)
	if err != nil {
		return b.fail("uncertainty.budget.add", err)
	}
	c := numeric.One
	if _, ok := params["sensitivity"]; ok {
		if c, err = getReal(params, "sensitivity"); err != nil {
			return b.fail("uncertainty.budget.add", err)
		}
	}

	if err := budget.AddSourceWithSensitivity(name, quantity.New(sigma, u), typ, c); err != nil {
		return b.fail("uncertainty.budget.add", err)
	}
	return Success(map[string]interface{}{"id": bid, "source": name, "sources": budget.Len()})
}

// AddSeries adds a stored series as a Type A source
func (b *BudgetOps) AddSeries(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	bid, budget, err := b.lookup(params)
	if err != nil {
		return b.fail("uncertainty.budget.add_series", err)
	}
	name, _ := GetString(params, "name")
	if err := utils.ValidateName(name, "name"); err != nil {
		return b.fail("uncertainty.budget.add_series", err)
	}
	sid, _ := GetString(params, "series_id")
	if err := utils.ValidateID(sid, "series_id", true); err != nil {
		return b.fail("uncertainty.budget.add_series", err)
	}
	series, err := b.workspace.Series(sid)
	if err != nil {
		return b.fail("uncertainty.budget.add_series", err)
	}
	if err := budget.AddSeries(name, series); err != nil {
		return b.fail("uncertainty.budget.add_series", err)
	}
	return Success(map[string]interface{}{"id": bid, "source": name, "sources": budget.Len()})
}

// Combine returns combined and expanded uncertainty with contributions
func (b *BudgetOps) Combine(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	bid, budget, err := b.lookup(params)
	if err != nil {
		return b.fail("uncertainty.budget.combine", err)
	}
	k, err := b.coverage(params)
	if err != nil {
		return b.fail("uncertainty.budget.combine", err)
	}
	sum, err := budget.Summary()
	if err != nil {
		return b.fail("uncertainty.budget.combine", err)
	}

	return Success(map[string]interface{}{
		"id":              bid,
		"sources":         len(sum.Sources),
		"combined":        quantityData(sum.Combined),
		"expanded":        quantityData(sum.Combined.Scale(numeric.NewReal(k))),
		"coverage_factor": k,
		"contributions":   entriesData(sum.Contributions),
		"sensitivities":   entriesData(sum.Sensitivities),
	})
}

// Result attaches the budget's expanded uncertainty to a value
func (b *BudgetOps) Result(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	bid, budget, err := b.lookup(params)
	if err != nil {
		return b.fail("uncertainty.budget.result", err)
	}
	v, err := getReal(params, "value")
	if err != nil {
		return b.fail("uncertainty.budget.result", err)
	}
	u, err := getUnit(params, "unit", nil)
	if err != nil {
		return b.fail("uncertainty.budget.result", err)
	}
	confidence, err := getConfidence(params, b.DefaultConfidence)
	if err != nil {
		return b.fail("uncertainty.budget.result", err)
	}
	mv, err := budget.Result(quantity.New(v, u), confidence)
	if err != nil {
		return b.fail("uncertainty.budget.result", err)
	}
	return Success(map[string]interface{}{"id": bid, "result": measuredData(mv)})
}

// Report renders the budget table
func (b *BudgetOps) Report(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	bid, budget, err := b.lookup(params)
	if err != nil {
		return b.fail("uncertainty.budget.report", err)
	}
	k, err := b.coverage(params)
	if err != nil {
		return b.fail("uncertainty.budget.report", err)
	}
	report, err := budget.ReportWithCoverage(k)
	if err != nil {
		return b.fail("uncertainty.budget.report", err)
	}
	return Success(map[string]interface{}{"id": bid, "report": report})
}
