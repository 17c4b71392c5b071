package filedef

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
	"github.com/GriffinCanCode/Metrology/internal/quantity"
	"github.com/GriffinCanCode/Metrology/internal/shared/utils"
	core "github.com/GriffinCanCode/Metrology/internal/uncertainty"
)

// ErrInvalidDefinition reports a definition that parses but cannot be built.
var ErrInvalidDefinition = errors.New("invalid definition")

const (
	// DefaultSeriesSource names the Type A source built from a series.
	DefaultSeriesSource = "repeatability"
	defaultConfidence   = core.Confidence95
	defaultCoverage     = core.DefaultReportCoverage
)

// Definition describes a budget and/or a series of readings.
//
//	name: gauge block
//	unit: mm
//	value: 25.0
//	sources:
//	  - {name: calibration, uncertainty: 0.01, type: B}
//	series:
//	  readings: [25.01, 25.03, 24.99]
type Definition struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	// Unit applies to every source, reading and value without its own unit.
	Unit string `yaml:"unit" toml:"unit" json:"unit"`
	// Value is the measurand estimate; when absent the series mean is used.
	Value      *float64    `yaml:"value" toml:"value" json:"value"`
	Confidence float64     `yaml:"confidence" toml:"confidence" json:"confidence"`
	Coverage   float64     `yaml:"coverage" toml:"coverage" json:"coverage"`
	Sources    []SourceDef `yaml:"sources" toml:"sources" json:"sources"`
	Series     *SeriesDef  `yaml:"series" toml:"series" json:"series"`
}

// SourceDef is one budget component
type SourceDef struct {
	Name        string   `yaml:"name" toml:"name" json:"name"`
	Uncertainty float64  `yaml:"uncertainty" toml:"uncertainty" json:"uncertainty"`
	Unit        string   `yaml:"unit" toml:"unit" json:"unit"`
	Type        string   `yaml:"type" toml:"type" json:"type"`
	Sensitivity *float64 `yaml:"sensitivity" toml:"sensitivity" json:"sensitivity"`
}

// SeriesDef is a run of repeated readings
type SeriesDef struct {
	// Source names the Type A budget entry; defaults to "repeatability".
	Source   string    `yaml:"source" toml:"source" json:"source"`
	Unit     string    `yaml:"unit" toml:"unit" json:"unit"`
	Readings []float64 `yaml:"readings" toml:"readings" json:"readings"`
	// ExcludeOutliers drops readings flagged by this method ("zscore" or "iqr")
	// before the series is used.
	ExcludeOutliers string `yaml:"exclude_outliers" toml:"exclude_outliers" json:"exclude_outliers"`
}

// Built is the outcome of a definition
type Built struct {
	Name       string
	Budget     *core.Budget
	Series     *core.Series
	Outliers   []quantity.Quantity
	Confidence float64
	Coverage   float64
	// Result is set when the definition yields both a value and a non-empty
	// budget. Its uncertainty is the budget's expanded uncertainty at Coverage.
	Result *core.MeasuredValue

	value quantity.Quantity
}

func unitOr(sym, fallback string) (*quantity.Unit, error) {
	if sym == "" {
		sym = fallback
	}
	if sym == "" {
		return nil, fmt.Errorf("%w: unit is required", ErrInvalidDefinition)
	}
	u, ok := quantity.LookupUnit(sym)
	if !ok {
		return nil, fmt.Errorf("%w: unknown unit %q", ErrInvalidDefinition, sym)
	}
	return u, nil
}

// Build validates a definition and constructs its budget and series.
func Build(def *Definition) (*Built, error) {
	if len(def.Sources) == 0 && def.Series == nil {
		return nil, fmt.Errorf("%w: no sources and no series", ErrInvalidDefinition)
	}

	b := &Built{
		Name:       def.Name,
		Budget:     core.NewBudget(def.Name),
		Confidence: def.Confidence,
		Coverage:   def.Coverage,
	}
	if b.Confidence == 0 {
		b.Confidence = defaultConfidence
	}
	if !(b.Confidence > 0 && b.Confidence <= 1) {
		return nil, fmt.Errorf("%w: confidence %v outside (0, 1]", ErrInvalidDefinition, b.Confidence)
	}
	if b.Coverage == 0 {
		b.Coverage = defaultCoverage
	}
	if b.Coverage < 0 || math.IsNaN(b.Coverage) {
		return nil, fmt.Errorf("%w: coverage %v must be positive", ErrInvalidDefinition, b.Coverage)
	}

	if def.Series != nil {
		if err := b.buildSeries(def); err != nil {
			return nil, err
		}
	}
	for i, src := range def.Sources {
		if err := b.addSource(def, src); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}
	if err := b.buildResult(def); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Built) buildSeries(def *Definition) error {
	u, err := unitOr(def.Series.Unit, def.Unit)
	if err != nil {
		return fmt.Errorf("series: %w", err)
	}
	if n := len(def.Series.Readings); n > utils.MaxReadings {
		return fmt.Errorf("%w: %d readings exceeds the limit of %d", ErrInvalidDefinition, n, utils.MaxReadings)
	}
	readings := make([]quantity.Quantity, len(def.Series.Readings))
	for i, r := range def.Series.Readings {
		readings[i] = quantity.Of(r, u)
	}
	s, err := core.NewSeries(readings...)
	if err != nil {
		return fmt.Errorf("series: %w", err)
	}

	if m := strings.TrimSpace(def.Series.ExcludeOutliers); m != "" {
		method, err := core.ParseOutlierMethod(m)
		if err != nil {
			return fmt.Errorf("series: %w", err)
		}
		b.Outliers = s.DetectOutliers(method)
		s = s.Without(b.Outliers)
	}
	b.Series = s

	// A single reading has no standard error; keep the series but add no source.
	if s.Count() < 2 {
		return nil
	}
	name := def.Series.Source
	if name == "" {
		name = DefaultSeriesSource
	}
	return b.Budget.AddSeries(name, s)
}

func (b *Built) addSource(def *Definition, src SourceDef) error {
	u, err := unitOr(src.Unit, def.Unit)
	if err != nil {
		return err
	}
	typ, err := core.ParseSourceType(src.Type)
	if err != nil {
		return err
	}
	c := numeric.One
	if src.Sensitivity != nil {
		c = numeric.NewReal(*src.Sensitivity)
	}
	return b.Budget.AddSourceWithSensitivity(src.Name, quantity.Of(src.Uncertainty, u), typ, c)
}

func (b *Built) buildResult(def *Definition) error {
	if b.Budget.Len() == 0 {
		return nil
	}
	var value quantity.Quantity
	switch {
	case def.Value != nil:
		u, err := unitOr("", def.Unit)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		value = quantity.Of(*def.Value, u)
	case b.Series != nil && b.Series.Count() > 0:
		mean, err := b.Series.Mean()
		if err != nil {
			return err
		}
		value = mean
	default:
		return nil
	}

	b.value = value
	return b.computeResult()
}

func (b *Built) computeResult() error {
	if !b.value.IsValid() {
		return nil
	}
	expanded, err := b.Budget.ExpandedUncertainty(b.Coverage)
	if err != nil {
		return err
	}
	result, err := core.NewMeasuredValue(b.value, expanded, b.Confidence)
	if err != nil {
		return err
	}
	b.Result = &result
	return nil
}

// SetCoverage replaces the coverage factor and recomputes Result so it
// agrees with the expanded line of the budget report.
func (b *Built) SetCoverage(k float64) error {
	if !(k > 0) {
		return fmt.Errorf("%w: coverage %v must be positive", ErrInvalidDefinition, k)
	}
	b.Coverage = k
	return b.computeResult()
}
