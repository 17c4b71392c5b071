package uncertainty

import (
	"errors"
	"fmt"
	"math"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
	"github.com/GriffinCanCode/Metrology/internal/quantity"
	"github.com/GriffinCanCode/Metrology/internal/shared/types"
	core "github.com/GriffinCanCode/Metrology/internal/uncertainty"
)

// Success creates a successful result
func Success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// Failure creates a failed result
func Failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

// Failuref formats a failed result
func Failuref(format string, args ...interface{}) (*types.Result, error) {
	return Failure(fmt.Sprintf(format, args...))
}

// errorType classifies an error for the tool error metric
func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrIncompatibleKind):
		return "incompatible_kind"
	case errors.Is(err, core.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, core.ErrIllegalState):
		return "illegal_state"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrWorkspaceFull):
		return "workspace_full"
	default:
		return "bad_request"
	}
}

// GetNumber extracts float64 from params with type coercion
func GetNumber(params map[string]interface{}, key string) (float64, bool) {
	return toFloat(params[key])
}

// GetNumbers extracts an array of numbers with type coercion
func GetNumbers(params map[string]interface{}, key string) ([]float64, bool) {
	switch arr := params[key].(type) {
	case []float64:
		return arr, true
	case []interface{}:
		numbers := make([]float64, 0, len(arr))
		for _, v := range arr {
			f, ok := toFloat(v)
			if !ok {
				return nil, false
			}
			numbers = append(numbers, f)
		}
		return numbers, true
	default:
		return nil, false
	}
}

// GetString extracts string from params
func GetString(params map[string]interface{}, key string) (string, bool) {
	val, ok := params[key].(string)
	return val, ok
}

// GetMap extracts a nested object from params
func GetMap(params map[string]interface{}, key string) (map[string]interface{}, bool) {
	val, ok := params[key].(map[string]interface{})
	return val, ok
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// getReal accepts a JSON number or a decimal string. Strings keep digits a
// float64 would drop, e.g. "0.1000000000000000000001".
func getReal(params map[string]interface{}, key string) (numeric.Real, error) {
	switch v := params[key].(type) {
	case nil:
		return numeric.Real{}, fmt.Errorf("%s is required", key)
	case string:
		r, err := numeric.ParseReal(v)
		if err != nil {
			return numeric.Real{}, fmt.Errorf("%s: %q is not a number", key, v)
		}
		return r, nil
	default:
		f, ok := toFloat(v)
		if !ok {
			return numeric.Real{}, fmt.Errorf("%s must be a number", key)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return numeric.Real{}, fmt.Errorf("%s must be finite", key)
		}
		return numeric.NewReal(f), nil
	}
}

// getUnit resolves a unit symbol; a missing key falls back to def when def
// is non-nil.
func getUnit(params map[string]interface{}, key string, def *quantity.Unit) (*quantity.Unit, error) {
	sym, ok := GetString(params, key)
	if !ok || sym == "" {
		if def != nil {
			return def, nil
		}
		return nil, fmt.Errorf("%s is required", key)
	}
	u, ok := quantity.LookupUnit(sym)
	if !ok {
		return nil, fmt.Errorf("unknown unit %q", sym)
	}
	return u, nil
}

// getConfidence reads "confidence" as a number or decimal string, falling
// back to def when absent. The range is checked by the core.
func getConfidence(params map[string]interface{}, def float64) (float64, error) {
	if params["confidence"] == nil {
		return def, nil
	}
	c, err := getReal(params, "confidence")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	return c.Float64(), nil
}

// measuredFrom parses {value, uncertainty | relative, unit, uncertainty_unit, confidence}.
func measuredFrom(obj map[string]interface{}, defConfidence float64) (core.MeasuredValue, error) {
	u, err := getUnit(obj, "unit", nil)
	if err != nil {
		return core.MeasuredValue{}, err
	}
	value, err := getReal(obj, "value")
	if err != nil {
		return core.MeasuredValue{}, err
	}
	q := quantity.New(value, u)
	confidence, err := getConfidence(obj, defConfidence)
	if err != nil {
		return core.MeasuredValue{}, err
	}

	if _, ok := obj["relative"]; ok {
		rel, err := getReal(obj, "relative")
		if err != nil {
			return core.MeasuredValue{}, err
		}
		return core.WithRelativeUncertainty(q, rel, confidence)
	}
	if _, ok := obj["uncertainty"]; !ok {
		return core.Exact(q)
	}
	sigma, err := getReal(obj, "uncertainty")
	if err != nil {
		return core.MeasuredValue{}, err
	}
	su, err := getUnit(obj, "uncertainty_unit", u)
	if err != nil {
		return core.MeasuredValue{}, err
	}
	return core.NewMeasuredValue(q, quantity.New(sigma, su), confidence)
}

// getMeasured parses the measured value object under key.
func getMeasured(params map[string]interface{}, key string, defConfidence float64) (core.MeasuredValue, error) {
	obj, ok := GetMap(params, key)
	if !ok {
		return core.MeasuredValue{}, fmt.Errorf("%s must be an object with value, uncertainty and unit", key)
	}
	mv, err := measuredFrom(obj, defConfidence)
	if err != nil {
		return core.MeasuredValue{}, fmt.Errorf("%s: %w", key, err)
	}
	return mv, nil
}

// finite maps ±Inf and NaN to nil so results stay JSON-encodable.
func finite(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func quantityData(q quantity.Quantity) map[string]interface{} {
	return map[string]interface{}{
		"value": finite(q.Float64()),
		"unit":  q.Unit().Symbol(),
	}
}

func measuredData(m core.MeasuredValue) map[string]interface{} {
	rel := m.RelativeUncertainty()
	return map[string]interface{}{
		"value":                finite(m.Value().Float64()),
		"uncertainty":          finite(m.Uncertainty().Float64()),
		"unit":                 m.Value().Unit().Symbol(),
		"kind":                 m.Value().Kind().String(),
		"confidence":           m.ConfidenceLevel(),
		"coverage_factor":      m.CoverageFactor(),
		"relative_uncertainty": finite(rel.Float64()),
		"lower":                finite(m.Lower().Float64()),
		"upper":                finite(m.Upper().Float64()),
		"text":                 m.String(),
	}
}

func entriesData(entries []core.Entry) []map[string]interface{} {
	out := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		out[i] = map[string]interface{}{"name": e.Name, "value": finite(e.Value)}
	}
	return out
}
