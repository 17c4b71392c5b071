package uncertainty

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
	"github.com/GriffinCanCode/Metrology/internal/quantity"
)

// OutlierMethod selects an outlier detection rule.
type OutlierMethod int

const (
	// ZScore flags |x - mean| / s > 3.
	ZScore OutlierMethod = iota
	// IQR flags values beyond 1.5 interquartile ranges from index-based quartiles.
	IQR
)

func (m OutlierMethod) String() string {
	switch m {
	case ZScore:
		return "zscore"
	case IQR:
		return "iqr"
	default:
		return "unknown"
	}
}

// ParseOutlierMethod parses "zscore" or "iqr".
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zscore", "z-score", "z":
		return ZScore, nil
	case "iqr":
		return IQR, nil
	default:
		return 0, fmt.Errorf("%w: unknown outlier method %q", ErrInvalidArgument, s)
	}
}

const (
	zScoreThreshold = 3.0
	iqrFence        = 1.5
	minOutlierCount = 3

	// DefaultTrimmedConfidence is the confidence level of MeanExcludingOutliers.
	DefaultTrimmedConfidence = Confidence95
)

// Series is an append-only collection of repeated measurements of one kind.
//
// Each method observes a consistent snapshot; Series is safe for concurrent
// use. Callers that need several statistics from the same snapshot should
// use Summary.
type Series struct {
	mu           sync.RWMutex
	measurements []quantity.Quantity
}

// NewSeries builds a series from initial measurements.
func NewSeries(measurements ...quantity.Quantity) (*Series, error) {
	s := &Series{}
	for _, m := range measurements {
		if err := s.Add(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a measurement. It must have a unit and match the kind of the
// first measurement.
func (s *Series) Add(m quantity.Quantity) error {
	if !m.IsValid() {
		return fmt.Errorf("%w: measurement is required", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.measurements) > 0 {
		first := s.measurements[0]
		if !first.Kind().Matches(m.Kind()) {
			return fmt.Errorf("%w: measurement of kind %s in series of %s: %w",
				ErrInvalidArgument, m.Kind(), first.Kind(), ErrIncompatibleKind)
		}
	}
	s.measurements = append(s.measurements, m)
	return nil
}

// Count returns the number of measurements.
func (s *Series) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.measurements)
}

// Measurements returns a copy in insertion order.
func (s *Series) Measurements() []quantity.Quantity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]quantity.Quantity, len(s.measurements))
	copy(out, s.measurements)
	return out
}

func (s *Series) sample() sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newSample(s.measurements)
}

// Mean returns the arithmetic mean in the first measurement's unit.
func (s *Series) Mean() (quantity.Quantity, error) {
	smp := s.sample()
	mean, err := smp.mean()
	if err != nil {
		return quantity.Quantity{}, err
	}
	return smp.asQuantity(mean), nil
}

// StandardDeviation returns the sample standard deviation (n-1 denominator).
func (s *Series) StandardDeviation() (quantity.Quantity, error) {
	smp := s.sample()
	sd, err := smp.stdDev()
	if err != nil {
		return quantity.Quantity{}, err
	}
	return smp.asQuantity(sd), nil
}

// StandardError returns s/√n.
func (s *Series) StandardError() (quantity.Quantity, error) {
	smp := s.sample()
	se, err := smp.stdErr()
	if err != nil {
		return quantity.Quantity{}, err
	}
	return smp.asQuantity(se), nil
}

// ConfidenceInterval returns mean ± standardError·k(confidence).
func (s *Series) ConfidenceInterval(confidence float64) (MeasuredValue, error) {
	return s.sample().confidenceInterval(confidence)
}

// DetectOutliers returns flagged measurements in insertion order. Fewer than
// three measurements never produce outliers.
func (s *Series) DetectOutliers(method OutlierMethod) []quantity.Quantity {
	smp := s.sample()
	idx := smp.outliers(method)
	out := make([]quantity.Quantity, 0, len(idx))
	for _, i := range idx {
		out = append(out, smp.raw[i])
	}
	return out
}

// MeanExcludingOutliers drops z-score outliers once and returns the 0.954
// confidence interval of what remains.
func (s *Series) MeanExcludingOutliers() (MeasuredValue, error) {
	return s.MeanExcludingOutliersBy(ZScore)
}

// MeanExcludingOutliersBy is MeanExcludingOutliers with a chosen detection rule.
func (s *Series) MeanExcludingOutliersBy(method OutlierMethod) (MeasuredValue, error) {
	mv, _, err := s.Trim(method)
	return mv, err
}

// Trim drops the outliers flagged by method and returns the 0.954 confidence
// interval of what remains together with the dropped measurements. Both come
// from the same snapshot.
func (s *Series) Trim(method OutlierMethod) (MeasuredValue, []quantity.Quantity, error) {
	smp := s.sample()
	idx := smp.outliers(method)
	removed := make([]quantity.Quantity, 0, len(idx))
	for _, i := range idx {
		removed = append(removed, smp.raw[i])
	}
	mv, err := smp.without(idx).confidenceInterval(DefaultTrimmedConfidence)
	if err != nil {
		return MeasuredValue{}, nil, err
	}
	return mv, removed, nil
}

// Without returns a new series omitting the given measurements by position
// of first match. The receiver is unchanged.
func (s *Series) Without(outliers []quantity.Quantity) *Series {
	smp := s.sample()
	drop := make([]int, 0, len(outliers))
	used := make(map[int]bool, len(outliers))
	for _, o := range outliers {
		for i, m := range smp.raw {
			if !used[i] && m.Unit() == o.Unit() && m.Value().Cmp(o.Value()) == 0 {
				used[i] = true
				drop = append(drop, i)
				break
			}
		}
	}
	return &Series{measurements: smp.without(drop).raw}
}

// Median returns the middle measurement, or the mean of the two middle
// measurements when the count is even.
func (s *Series) Median() (quantity.Quantity, error) {
	smp := s.sample()
	if smp.n() == 0 {
		return quantity.Quantity{}, fmt.Errorf("%w: median of empty series", ErrIllegalState)
	}
	return smp.asQuantity(median(smp.sorted())), nil
}

// Range returns the smallest and largest measurement in the series unit.
func (s *Series) Range() (quantity.Quantity, quantity.Quantity, error) {
	smp := s.sample()
	if smp.n() == 0 {
		return quantity.Quantity{}, quantity.Quantity{}, fmt.Errorf("%w: range of empty series", ErrIllegalState)
	}
	sorted := smp.sorted()
	return smp.asQuantity(sorted[0]), smp.asQuantity(sorted[len(sorted)-1]), nil
}

func median(sorted []numeric.Real) numeric.Real {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Quo(numeric.FromInt(2))
}

// Statistics holds every descriptive statistic of one snapshot. With fewer
// than two measurements the spread fields are zero Quantities (IsValid is
// false).
type Statistics struct {
	Count             int
	Mean              quantity.Quantity
	Median            quantity.Quantity
	Min               quantity.Quantity
	Max               quantity.Quantity
	StandardDeviation quantity.Quantity
	StandardError     quantity.Quantity
}

// Statistics computes all descriptive statistics from a single snapshot. It
// fails only on an empty series.
func (s *Series) Statistics() (Statistics, error) {
	smp := s.sample()
	mean, err := smp.mean()
	if err != nil {
		return Statistics{}, err
	}
	sorted := smp.sorted()
	st := Statistics{
		Count:  smp.n(),
		Mean:   smp.asQuantity(mean),
		Median: smp.asQuantity(median(sorted)),
		Min:    smp.asQuantity(sorted[0]),
		Max:    smp.asQuantity(sorted[len(sorted)-1]),
	}
	if sd, err := smp.stdDev(); err == nil {
		st.StandardDeviation = smp.asQuantity(sd)
		st.StandardError = smp.asQuantity(sd.Quo(numeric.FromInt(int64(smp.n())).Sqrt()))
	}
	return st, nil
}

// Summary is a consistent set of statistics taken from one snapshot.
type Summary struct {
	Count             int
	Mean              quantity.Quantity
	StandardDeviation quantity.Quantity
	StandardError     quantity.Quantity
}

// Summary computes count, mean, standard deviation and standard error under a
// single snapshot. It requires at least two measurements.
func (s *Series) Summary() (Summary, error) {
	smp := s.sample()
	mean, err := smp.mean()
	if err != nil {
		return Summary{}, err
	}
	sd, err := smp.stdDev()
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Count:             smp.n(),
		Mean:              smp.asQuantity(mean),
		StandardDeviation: smp.asQuantity(sd),
		StandardError:     smp.asQuantity(sd.Quo(numeric.FromInt(int64(smp.n())).Sqrt())),
	}, nil
}

// sample is an immutable copy of a series with magnitudes in one unit.
type sample struct {
	unit   *quantity.Unit
	raw    []quantity.Quantity
	values []numeric.Real
}

func newSample(measurements []quantity.Quantity) sample {
	smp := sample{
		raw:    make([]quantity.Quantity, len(measurements)),
		values: make([]numeric.Real, len(measurements)),
	}
	copy(smp.raw, measurements)
	if len(measurements) == 0 {
		return smp
	}
	smp.unit = measurements[0].Unit()
	for i, m := range measurements {
		// kinds were checked on Add
		converted, _ := m.To(smp.unit)
		smp.values[i] = converted.Value()
	}
	return smp
}

func (smp sample) n() int { return len(smp.values) }

func (smp sample) asQuantity(v numeric.Real) quantity.Quantity {
	return quantity.New(v, smp.unit)
}

func (smp sample) sorted() []numeric.Real {
	out := make([]numeric.Real, len(smp.values))
	copy(out, smp.values)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

func (smp sample) mean() (numeric.Real, error) {
	if smp.n() == 0 {
		return numeric.Zero, fmt.Errorf("%w: mean of empty series", ErrIllegalState)
	}
	return numeric.Sum(smp.values...).Quo(numeric.FromInt(int64(smp.n()))), nil
}

func (smp sample) stdDev() (numeric.Real, error) {
	if smp.n() < 2 {
		return numeric.Zero, fmt.Errorf("%w: standard deviation needs at least 2 measurements, have %d",
			ErrIllegalState, smp.n())
	}
	mean, _ := smp.mean()
	ss := numeric.Zero
	for _, v := range smp.values {
		ss = ss.Add(v.Sub(mean).Square())
	}
	return ss.Quo(numeric.FromInt(int64(smp.n() - 1))).Sqrt(), nil
}

func (smp sample) stdErr() (numeric.Real, error) {
	sd, err := smp.stdDev()
	if err != nil {
		return numeric.Zero, err
	}
	return sd.Quo(numeric.FromInt(int64(smp.n())).Sqrt()), nil
}

func (smp sample) confidenceInterval(confidence float64) (MeasuredValue, error) {
	if !validConfidence(confidence) {
		return MeasuredValue{}, fmt.Errorf("%w: confidence level %v outside (0,1]", ErrInvalidArgument, confidence)
	}
	mean, err := smp.mean()
	if err != nil {
		return MeasuredValue{}, err
	}
	se, err := smp.stdErr()
	if err != nil {
		return MeasuredValue{}, err
	}
	k := numeric.NewReal(CoverageFactor(confidence))
	return NewMeasuredValue(smp.asQuantity(mean), smp.asQuantity(se.Mul(k)), confidence)
}

// outliers returns flagged indices in insertion order.
func (smp sample) outliers(method OutlierMethod) []int {
	if smp.n() < minOutlierCount {
		return nil
	}
	switch method {
	case ZScore:
		return smp.zScoreOutliers()
	case IQR:
		return smp.iqrOutliers()
	default:
		return nil
	}
}

func (smp sample) zScoreOutliers() []int {
	mean, _ := smp.mean()
	sd, _ := smp.stdDev()
	m, s := mean.Float64(), sd.Float64()

	var idx []int
	for i, v := range smp.values {
		if math.Abs(stat.StdScore(v.Float64(), m, s)) > zScoreThreshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// iqrOutliers uses sorted[n/4] and sorted[3n/4] as quartiles, without
// interpolation.
func (smp sample) iqrOutliers() []int {
	sorted := smp.sorted()
	n := len(sorted)
	q1, q3 := sorted[n/4], sorted[3*n/4]
	spread := q3.Sub(q1).Mul(numeric.NewReal(iqrFence))
	lower, upper := q1.Sub(spread), q3.Add(spread)

	var idx []int
	for i, v := range smp.values {
		if v.Cmp(lower) < 0 || v.Cmp(upper) > 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// without returns a sample omitting the given indices.
func (smp sample) without(drop []int) sample {
	skip := make(map[int]bool, len(drop))
	for _, i := range drop {
		skip[i] = true
	}
	kept := make([]quantity.Quantity, 0, smp.n()-len(skip))
	for i, m := range smp.raw {
		if !skip[i] {
			kept = append(kept, m)
		}
	}
	return newSample(kept)
}
