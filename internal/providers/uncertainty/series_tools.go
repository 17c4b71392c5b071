package uncertainty

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Metrology/internal/quantity"
	"github.com/GriffinCanCode/Metrology/internal/shared/types"
	"github.com/GriffinCanCode/Metrology/internal/shared/utils"
	core "github.com/GriffinCanCode/Metrology/internal/uncertainty"
)

// SeriesOps handles repeated-measurement tools
type SeriesOps struct {
	*Options
}

// GetTools returns series tool definitions
func (s *SeriesOps) GetTools() []types.Tool {
	idParam := types.Parameter{Name: "id", Type: "string", Description: "Series ID", Required: true}
	return []types.Tool{
		{
			ID:          "uncertainty.series.create",
			Name:        "Create Series",
			Description: "Create a measurement series, optionally seeded with readings",
			Parameters: []types.Parameter{
				{Name: "name", Type: "string", Description: "Series name", Required: false},
				{Name: "unit", Type: "string", Description: "Unit of bare numeric readings", Required: false},
				{Name: "readings", Type: "array", Description: "Numbers, decimal strings or {value, unit} objects", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.series.add",
			Name:        "Add Readings",
			Description: "Append readings to a series",
			Parameters: []types.Parameter{
				idParam,
				{Name: "readings", Type: "array", Description: "Readings to append", Required: false},
				{Name: "value", Type: "number", Description: "Single reading", Required: false},
				{Name: "unit", Type: "string", Description: "Unit of bare numeric readings", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.series.stats",
			Name:        "Series Statistics",
			Description: "Count, mean, standard deviation, standard error, median and range",
			Parameters:  []types.Parameter{idParam},
			Returns:     "object",
		},
		{
			ID:          "uncertainty.series.outliers",
			Name:        "Detect Outliers",
			Description: "Readings flagged by the z-score (|z| > 3) or IQR (1.5 IQR fences) rule",
			Parameters: []types.Parameter{
				idParam,
				{Name: "method", Type: "string", Description: "zscore (default) or iqr", Required: false},
			},
			Returns: "array",
		},
		{
			ID:          "uncertainty.series.interval",
			Name:        "Confidence Interval",
			Description: "Mean with k times the standard error",
			Parameters: []types.Parameter{
				idParam,
				{Name: "confidence", Type: "number", Description: "Confidence level, defaults to the service default", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "uncertainty.series.trimmed",
			Name:        "Trimmed Mean",
			Description: "95% interval of the series after removing outliers",
			Parameters: []types.Parameter{
				idParam,
				{Name: "method", Type: "string", Description: "zscore (default) or iqr", Required: false},
			},
			Returns: "object",
		},
	}
}

// readingFrom parses a number, decimal string or {value, unit} object.
func readingFrom(v interface{}, def *quantity.Unit) (quantity.Quantity, error) {
	if obj, ok := v.(map[string]interface{}); ok {
		u, err := getUnit(obj, "unit", def)
		if err != nil {
			return quantity.Quantity{}, err
		}
		r, err := getReal(obj, "value")
		if err != nil {
			return quantity.Quantity{}, err
		}
		return quantity.New(r, u), nil
	}
	if def == nil {
		return quantity.Quantity{}, fmt.Errorf("unit is required for bare readings")
	}
	r, err := getReal(map[string]interface{}{"value": v}, "value")
	if err != nil {
		return quantity.Quantity{}, err
	}
	return quantity.New(r, def), nil
}

// getReadings collects "readings" and a single "value" into quantities.
func getReadings(params map[string]interface{}) ([]quantity.Quantity, error) {
	var def *quantity.Unit
	if _, ok := params["unit"]; ok {
		u, err := getUnit(params, "unit", nil)
		if err != nil {
			return nil, err
		}
		def = u
	}

	var raw []interface{}
	switch arr := params["readings"].(type) {
	case nil:
	case []interface{}:
		raw = arr
	case []float64:
		for _, f := range arr {
			raw = append(raw, f)
		}
	default:
		return nil, fmt.Errorf("readings must be an array")
	}
	if v, ok := params["value"]; ok {
		raw = append(raw, v)
	}
	if len(raw) > utils.MaxReadings {
		return nil, fmt.Errorf("too many readings: %d (max %d)", len(raw), utils.MaxReadings)
	}

	out := make([]quantity.Quantity, 0, len(raw))
	for i, v := range raw {
		q, err := readingFrom(v, def)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *SeriesOps) lookup(params map[string]interface{}) (string, *core.Series, error) {
	sid, _ := GetString(params, "id")
	if err := utils.ValidateID(sid, "id", true); err != nil {
		return sid, nil, err
	}
	series, err := s.workspace.Series(sid)
	return sid, series, err
}

func getOutlierMethod(params map[string]interface{}) (core.OutlierMethod, error) {
	m, ok := GetString(params, "method")
	if !ok || m == "" {
		return core.ZScore, nil
	}
	return core.ParseOutlierMethod(m)
}

// Create stores a new series
func (s *SeriesOps) Create(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	name, _ := GetString(params, "name")
	if name != "" {
		if err := utils.ValidateName(name, "name"); err != nil {
			return s.fail("uncertainty.series.create", err)
		}
	}
	readings, err := getReadings(params)
	if err != nil {
		return s.fail("uncertainty.series.create", err)
	}
	series, err := core.NewSeries(readings...)
	if err != nil {
		return s.fail("uncertainty.series.create", err)
	}
	sid, err := s.workspace.AddSeries(name, series)
	if err != nil {
		return s.fail("uncertainty.series.create", err)
	}
	if s.metrics != nil {
		s.metrics.AddReadings(len(readings))
	}
	s.logger.Debug("series created", zap.String("id", sid.String()), zap.Int("count", series.Count()))

	return Success(map[string]interface{}{
		"id":    sid.String(),
		"name":  name,
		"count": series.Count(),
	})
}

// Add appends readings to a series
func (s *SeriesOps) Add(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	sid, series, err := s.lookup(params)
	if err != nil {
		return s.fail("uncertainty.series.add", err)
	}
	readings, err := getReadings(params)
	if err != nil {
		return s.fail("uncertainty.series.add", err)
	}
	if len(readings) == 0 {
		return Failure("readings or value is required")
	}

	added := 0
	for _, q := range readings {
		if err := series.Add(q); err != nil {
			if s.metrics != nil {
				s.metrics.AddReadings(added)
			}
			return s.fail("uncertainty.series.add", fmt.Errorf("reading %d: %w (%d added)", added, err, added))
		}
		added++
	}
	if s.metrics != nil {
		s.metrics.AddReadings(added)
	}

	return Success(map[string]interface{}{
		"id":    sid,
		"added": added,
		"count": series.Count(),
	})
}

// Stats returns descriptive statistics of a series
func (s *SeriesOps) Stats(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	sid, series, err := s.lookup(params)
	if err != nil {
		return s.fail("uncertainty.series.stats", err)
	}

	st, err := series.Statistics()
	if err != nil {
		return s.fail("uncertainty.series.stats", err)
	}

	data := map[string]interface{}{
		"id":     sid,
		"count":  st.Count,
		"mean":   quantityData(st.Mean),
		"median": quantityData(st.Median),
		"min":    quantityData(st.Min),
		"max":    quantityData(st.Max),
	}
	if st.StandardDeviation.IsValid() {
		data["standard_deviation"] = quantityData(st.StandardDeviation)
		data["standard_error"] = quantityData(st.StandardError)
	}
	return Success(data)
}

// Outliers lists flagged readings
func (s *SeriesOps) Outliers(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	sid, series, err := s.lookup(params)
	if err != nil {
		return s.fail("uncertainty.series.outliers", err)
	}
	method, err := getOutlierMethod(params)
	if err != nil {
		return s.fail("uncertainty.series.outliers", err)
	}

	flagged := series.DetectOutliers(method)
	out := make([]map[string]interface{}, len(flagged))
	for i, q := range flagged {
		out[i] = quantityData(q)
	}
	return Success(map[string]interface{}{
		"id":       sid,
		"method":   method.String(),
		"outliers": out,
		"count":    len(out),
	})
}

// Interval returns the confidence interval of the mean
func (s *SeriesOps) Interval(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	sid, series, err := s.lookup(params)
	if err != nil {
		return s.fail("uncertainty.series.interval", err)
	}
	confidence, err := getConfidence(params, s.DefaultConfidence)
	if err != nil {
		return s.fail("uncertainty.series.interval", err)
	}
	ci, err := series.ConfidenceInterval(confidence)
	if err != nil {
		return s.fail("uncertainty.series.interval", err)
	}
	return Success(map[string]interface{}{"id": sid, "result": measuredData(ci)})
}

// Trimmed returns the 95% interval after outlier removal
func (s *SeriesOps) Trimmed(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	sid, series, err := s.lookup(params)
	if err != nil {
		return s.fail("uncertainty.series.trimmed", err)
	}
	method, err := getOutlierMethod(params)
	if err != nil {
		return s.fail("uncertainty.series.trimmed", err)
	}
	mv, removed, err := series.Trim(method)
	if err != nil {
		return s.fail("uncertainty.series.trimmed", err)
	}
	return Success(map[string]interface{}{
		"id":      sid,
		"method":  method.String(),
		"removed": len(removed),
		"result":  measuredData(mv),
	})
}

