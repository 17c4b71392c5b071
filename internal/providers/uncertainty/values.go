package uncertainty

import (
	"context"
	"strings"

	"github.com/GriffinCanCode/Metrology/internal/shared/types"
	core "github.com/GriffinCanCode/Metrology/internal/uncertainty"
)

// ValueOps handles stateless measured-value tools
type ValueOps struct {
	*Options
}

var measuredParamDoc = "Measured value {value, uncertainty | relative, unit, uncertainty_unit?, confidence?}"

// GetTools returns measured-value tool definitions
func (v *ValueOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "uncertainty.propagate",
			Name:        "Propagate",
			Description: "Combine measured values with GUM first-order propagation (independent errors)",
			Parameters: []types.Parameter{
				{Name: "op", Type: "string", Description: "add, subtract, multiply, divide or scale", Required: true},
				{Name: "a", Type: "object", Description: measuredParamDoc, Required: true},
				{Name: "b", Type: "object", Description: measuredParamDoc + " (not for scale)", Required: false},
				{Name: "factor", Type: "number", Description: "Exact scalar for scale", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.compare",
			Name:        "Compare",
			Description: "Interval overlap, standardized difference and consistency of two measured values",
			Parameters: []types.Parameter{
				{Name: "a", Type: "object", Description: measuredParamDoc, Required: true},
				{Name: "b", Type: "object", Description: measuredParamDoc, Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.convert",
			Name:        "Convert",
			Description: "Express a measured value in another unit of the same kind",
			Parameters: []types.Parameter{
				{Name: "value", Type: "object", Description: measuredParamDoc, Required: true},
				{Name: "to", Type: "string", Description: "Target unit symbol", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.coverage",
			Name:        "Coverage Factor",
			Description: "Coverage factor k for a confidence level",
			Parameters: []types.Parameter{
				{Name: "confidence", Type: "number", Description: "Confidence level in (0, 1]", Required: true},
			},
			Returns: "number",
		},
		{
			ID:          "uncertainty.format",
			Name:        "Format",
			Description: "Render a measured value in scientific, percentage and interval notation",
			Parameters: []types.Parameter{
				{Name: "value", Type: "object", Description: measuredParamDoc, Required: true},
			},
			Returns: "object",
		},
	}
}

// Propagate applies op to a and b (or factor)
func (v *ValueOps) Propagate(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	op, _ := GetString(params, "op")
	op = strings.ToLower(strings.TrimSpace(op))
	a, err := getMeasured(params, "a", v.DefaultConfidence)
	if err != nil {
		return v.fail("uncertainty.propagate", err)
	}

	var result core.MeasuredValue
	switch op {
	case "scale", "divide_scalar":
		k, err := getReal(params, "factor")
		if err != nil {
			return v.fail("uncertainty.propagate", err)
		}
		if op == "scale" {
			result = a.Scale(k)
		} else {
			result = a.DivScalar(k)
		}
	case "add", "subtract", "multiply", "divide":
		b, err := getMeasured(params, "b", v.DefaultConfidence)
		if err != nil {
			return v.fail("uncertainty.propagate", err)
		}
		switch op {
		case "add":
			result, err = a.Add(b)
		case "subtract":
			result, err = a.Subtract(b)
		case "multiply":
			result = a.Multiply(b)
		case "divide":
			result = a.Divide(b)
		}
		if err != nil {
			return v.fail("uncertainty.propagate", err)
		}
	default:
		return Failuref("unknown op %q (want add, subtract, multiply, divide, scale or divide_scalar)", op)
	}

	return Success(map[string]interface{}{
		"op":     op,
		"result": measuredData(result),
	})
}

// Compare reports overlap, standardized difference and consistency
func (v *ValueOps) Compare(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	a, err := getMeasured(params, "a", v.DefaultConfidence)
	if err != nil {
		return v.fail("uncertainty.compare", err)
	}
	b, err := getMeasured(params, "b", v.DefaultConfidence)
	if err != nil {
		return v.fail("uncertainty.compare", err)
	}

	overlaps, err := a.Overlaps(b)
	if err != nil {
		return v.fail("uncertainty.compare", err)
	}
	d, err := a.StandardizedDifference(b)
	if err != nil {
		return v.fail("uncertainty.compare", err)
	}
	consistent, err := a.IsConsistentWith(b)
	if err != nil {
		return v.fail("uncertainty.compare", err)
	}

	return Success(map[string]interface{}{
		"overlaps":                overlaps,
		"standardized_difference": finite(d.Float64()),
		"infinite_difference":     d.IsInf(),
		"consistent":              consistent,
		"coverage_factor":         a.CoverageFactor(),
	})
}

// Convert re-expresses a measured value in another unit
func (v *ValueOps) Convert(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	m, err := getMeasured(params, "value", v.DefaultConfidence)
	if err != nil {
		return v.fail("uncertainty.convert", err)
	}
	target, err := getUnit(params, "to", nil)
	if err != nil {
		return v.fail("uncertainty.convert", err)
	}
	converted, err := m.To(target)
	if err != nil {
		return v.fail("uncertainty.convert", err)
	}
	return Success(map[string]interface{}{"result": measuredData(converted)})
}

// Coverage returns k for a confidence level
func (v *ValueOps) Coverage(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if params["confidence"] == nil {
		return Failure("confidence is required")
	}
	c, err := getConfidence(params, 0)
	if err != nil {
		return v.fail("uncertainty.coverage", err)
	}
	if !(c > 0 && c <= 1) {
		return Failuref("confidence %v outside (0, 1]", c)
	}
	return Success(map[string]interface{}{
		"confidence":      c,
		"coverage_factor": core.CoverageFactor(c),
	})
}

// Format renders a measured value in every notation
func (v *ValueOps) Format(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	m, err := getMeasured(params, "value", v.DefaultConfidence)
	if err != nil {
		return v.fail("uncertainty.format", err)
	}
	return Success(map[string]interface{}{
		"scientific": m.ScientificNotation(),
		"percentage": m.PercentageNotation(),
		"interval":   m.IntervalNotation(),
	})
}
