package uncertainty

import (
	"fmt"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
	"github.com/GriffinCanCode/Metrology/internal/quantity"
)

// nearZero is the magnitude below which relative uncertainty is undefined.
var nearZero = numeric.NewReal(1e-10)

// MeasuredValue is an immutable value ± standard uncertainty at a confidence level.
//
// The uncertainty is stored as an absolute magnitude in the value's unit.
// Every operation returns a new MeasuredValue.
type MeasuredValue struct {
	value       quantity.Quantity
	uncertainty quantity.Quantity
	confidence  float64
}

// NewMeasuredValue validates and builds a measured value. The uncertainty must
// share the value's kind and is re-expressed in the value's unit.
func NewMeasuredValue(value, uncertainty quantity.Quantity, confidence float64) (MeasuredValue, error) {
	if !value.IsValid() {
		return MeasuredValue{}, fmt.Errorf("%w: value is required", ErrInvalidArgument)
	}
	if !uncertainty.IsValid() {
		return MeasuredValue{}, fmt.Errorf("%w: uncertainty is required", ErrInvalidArgument)
	}
	if !validConfidence(confidence) {
		return MeasuredValue{}, fmt.Errorf("%w: confidence level %v outside (0,1]", ErrInvalidArgument, confidence)
	}
	sigma, err := uncertainty.ToDelta(value.Unit())
	if err != nil {
		return MeasuredValue{}, fmt.Errorf("%w: uncertainty %s for value %s: %w",
			ErrInvalidArgument, uncertainty.Kind(), value.Kind(), err)
	}
	return MeasuredValue{value: value, uncertainty: sigma.Abs(), confidence: confidence}, nil
}

// WithRelativeUncertainty builds a measured value whose uncertainty is |value| × relative.
func WithRelativeUncertainty(value quantity.Quantity, relative numeric.Real, confidence float64) (MeasuredValue, error) {
	if !value.IsValid() {
		return MeasuredValue{}, fmt.Errorf("%w: value is required", ErrInvalidArgument)
	}
	return NewMeasuredValue(value, value.Abs().Scale(relative.Abs()), confidence)
}

// Exact builds a measured value with zero uncertainty and confidence 1.
func Exact(value quantity.Quantity) (MeasuredValue, error) {
	if !value.IsValid() {
		return MeasuredValue{}, fmt.Errorf("%w: value is required", ErrInvalidArgument)
	}
	return NewMeasuredValue(value, quantity.New(numeric.Zero, value.Unit()), 1.0)
}

func (m MeasuredValue) Value() quantity.Quantity       { return m.value }
func (m MeasuredValue) Uncertainty() quantity.Quantity { return m.uncertainty }
func (m MeasuredValue) ConfidenceLevel() float64       { return m.confidence }
func (m MeasuredValue) CoverageFactor() float64        { return CoverageFactor(m.confidence) }

func (m MeasuredValue) sigma() numeric.Real { return m.uncertainty.Value() }

// RelativeUncertainty returns |σ/x|, or +Inf when |x| < 1e-10 in its own unit.
func (m MeasuredValue) RelativeUncertainty() numeric.Real {
	x := m.value.Value().Abs()
	if x.Cmp(nearZero) < 0 {
		return numeric.Inf(1)
	}
	return m.sigma().Quo(x)
}

// ExpandedUncertainty returns σ × k for the value's own confidence level.
func (m MeasuredValue) ExpandedUncertainty() quantity.Quantity {
	return m.uncertainty.Scale(numeric.NewReal(m.CoverageFactor()))
}

// Lower returns x - σ.
func (m MeasuredValue) Lower() numeric.Real { return m.value.Value().Sub(m.sigma()) }

// Upper returns x + σ.
func (m MeasuredValue) Upper() numeric.Real { return m.value.Value().Add(m.sigma()) }

// sigmaIn returns o's uncertainty as a difference in m's unit.
func (m MeasuredValue) sigmaIn(o MeasuredValue) (numeric.Real, error) {
	s, err := o.uncertainty.ToDelta(m.value.Unit())
	if err != nil {
		return numeric.Zero, err
	}
	return s.Value(), nil
}

// Add returns m + o with σ = √(σm² + σo²) in m's unit.
//
// The result inherits m's confidence level; o's level is not checked.
func (m MeasuredValue) Add(o MeasuredValue) (MeasuredValue, error) {
	v, err := m.value.Add(o.value)
	if err != nil {
		return MeasuredValue{}, err
	}
	return m.combineSum(v, o)
}

// Subtract returns m - o with σ = √(σm² + σo²) in m's unit.
//
// The result inherits m's confidence level; o's level is not checked.
func (m MeasuredValue) Subtract(o MeasuredValue) (MeasuredValue, error) {
	v, err := m.value.Sub(o.value)
	if err != nil {
		return MeasuredValue{}, err
	}
	return m.combineSum(v, o)
}

func (m MeasuredValue) combineSum(v quantity.Quantity, o MeasuredValue) (MeasuredValue, error) {
	so, err := m.sigmaIn(o)
	if err != nil {
		return MeasuredValue{}, err
	}
	sigma := numeric.Hypot(m.sigma(), so)
	return MeasuredValue{
		value:       v,
		uncertainty: quantity.New(sigma, m.value.Unit()),
		confidence:  m.confidence,
	}, nil
}

// Scale multiplies by an exact dimensionless factor: σ = |k|·σm.
func (m MeasuredValue) Scale(k numeric.Real) MeasuredValue {
	return MeasuredValue{
		value:       m.value.Scale(k),
		uncertainty: m.uncertainty.Scale(k.Abs()),
		confidence:  m.confidence,
	}
}

// DivScalar divides by an exact dimensionless factor: σ = σm/|k|.
func (m MeasuredValue) DivScalar(k numeric.Real) MeasuredValue {
	return MeasuredValue{
		value:       m.value.DivScalar(k),
		uncertainty: m.uncertainty.DivScalar(k.Abs()),
		confidence:  m.confidence,
	}
}

// Multiply returns m × o. Relative uncertainties add in quadrature:
//
//	σz/|z| = √((σm/m)² + (σo/o)²)
//
// evaluated as σz = √((σm·o)² + (m·σo)²) so that a zero operand stays finite.
// The result kind is the product kind.
func (m MeasuredValue) Multiply(o MeasuredValue) MeasuredValue {
	x, y := m.value.Value(), o.value.Value()
	sigma := numeric.Hypot(m.sigma().Mul(y), x.Mul(o.sigma()))
	z := m.value.Mul(o.value)
	return MeasuredValue{
		value:       z,
		uncertainty: quantity.New(sigma, z.Unit()),
		confidence:  m.confidence,
	}
}

// Divide returns m / o, combining relative uncertainties in quadrature:
//
//	σz = √((σm/o)² + (m·σo/o²)²)
//
// A zero divisor propagates as ±Inf or NaN. The result kind is the quotient kind.
func (m MeasuredValue) Divide(o MeasuredValue) MeasuredValue {
	x, y := m.value.Value(), o.value.Value()
	sigma := numeric.Hypot(m.sigma().Quo(y), x.Mul(o.sigma()).Quo(y.Square()))
	z := m.value.Div(o.value)
	return MeasuredValue{
		value:       z,
		uncertainty: quantity.New(sigma.Abs(), z.Unit()),
		confidence:  m.confidence,
	}
}

// To converts value and uncertainty into target.
func (m MeasuredValue) To(target *quantity.Unit) (MeasuredValue, error) {
	v, err := m.value.To(target)
	if err != nil {
		return MeasuredValue{}, err
	}
	u, err := m.uncertainty.ToDelta(target)
	if err != nil {
		return MeasuredValue{}, err
	}
	return MeasuredValue{value: v, uncertainty: u, confidence: m.confidence}, nil
}

// aligned returns o's value and σ expressed in m's unit.
func (m MeasuredValue) aligned(o MeasuredValue) (numeric.Real, numeric.Real, error) {
	ov, err := o.value.To(m.value.Unit())
	if err != nil {
		return numeric.Zero, numeric.Zero, err
	}
	so, err := m.sigmaIn(o)
	if err != nil {
		return numeric.Zero, numeric.Zero, err
	}
	return ov.Value(), so, nil
}

// Overlaps reports whether [m-σ, m+σ] and [o-σ, o+σ] intersect, bounds inclusive.
func (m MeasuredValue) Overlaps(o MeasuredValue) (bool, error) {
	ov, so, err := m.aligned(o)
	if err != nil {
		return false, err
	}
	oLower, oUpper := ov.Sub(so), ov.Add(so)
	return m.Lower().Cmp(oUpper) <= 0 && oLower.Cmp(m.Upper()) <= 0, nil
}

// StandardizedDifference returns |m - o| / √(σm² + σo²). Two exact, equal
// values have difference 0; exact, different values have +Inf.
func (m MeasuredValue) StandardizedDifference(o MeasuredValue) (numeric.Real, error) {
	ov, so, err := m.aligned(o)
	if err != nil {
		return numeric.Zero, err
	}
	diff := m.value.Value().Sub(ov).Abs()
	combined := numeric.Hypot(m.sigma(), so)
	if combined.IsZero() {
		if diff.IsZero() {
			return numeric.Zero, nil
		}
		return numeric.Inf(1), nil
	}
	return diff.Quo(combined), nil
}

// IsConsistentWith reports whether the standardized difference is strictly
// below m's coverage factor.
func (m MeasuredValue) IsConsistentWith(o MeasuredValue) (bool, error) {
	d, err := m.StandardizedDifference(o)
	if err != nil {
		return false, err
	}
	return d.Cmp(numeric.NewReal(m.CoverageFactor())) < 0, nil
}
