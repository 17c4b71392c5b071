package quantity

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
)

var (
	// ErrIncompatibleKind is returned when an operation mixes quantity kinds.
	ErrIncompatibleKind = errors.New("incompatible quantity kinds")
	// ErrNoUnit is returned for operations on the zero Quantity.
	ErrNoUnit = errors.New("quantity has no unit")
)

// Quantity is an immutable magnitude tagged with a unit.
// The zero value is invalid and reports IsValid() == false.
type Quantity struct {
	value numeric.Real
	unit  *Unit
}

// New builds a quantity from a Real magnitude.
func New(value numeric.Real, u *Unit) Quantity {
	return Quantity{value: value, unit: u}
}

// Of builds a quantity from a float64 magnitude.
func Of(value float64, u *Unit) Quantity {
	return New(numeric.NewReal(value), u)
}

func (q Quantity) IsValid() bool      { return q.unit != nil }
func (q Quantity) Value() numeric.Real { return q.value }
func (q Quantity) Float64() float64    { return q.value.Float64() }
func (q Quantity) Unit() *Unit         { return q.unit }

// Kind returns the kind of the quantity's unit.
func (q Quantity) Kind() Kind {
	if q.unit == nil {
		return Kind{}
	}
	return q.unit.kind
}

func (q Quantity) String() string {
	return q.value.String() + " " + q.unit.String()
}

func (q Quantity) compatible(o Quantity, op string) error {
	if !q.IsValid() || !o.IsValid() {
		return fmt.Errorf("%s: %w", op, ErrNoUnit)
	}
	if !q.Kind().Matches(o.Kind()) {
		return fmt.Errorf("%s %s and %s: %w", op, q.Kind(), o.Kind(), ErrIncompatibleKind)
	}
	return nil
}

// Add returns q + o expressed in q's unit. o is converted with To, so
// affine offsets apply.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if err := q.compatible(o, "add"); err != nil {
		return Quantity{}, err
	}
	ov, _ := o.To(q.unit)
	return New(q.value.Add(ov.value), q.unit), nil
}

// Sub returns q - o expressed in q's unit. o is converted with To, so
// 25 °C - 298.15 K is 0 °C.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if err := q.compatible(o, "subtract"); err != nil {
		return Quantity{}, err
	}
	ov, _ := o.To(q.unit)
	return New(q.value.Sub(ov.value), q.unit), nil
}

// Scale multiplies the magnitude by a dimensionless factor.
func (q Quantity) Scale(k numeric.Real) Quantity {
	return New(q.value.Mul(k), q.unit)
}

// DivScalar divides the magnitude by a dimensionless factor.
func (q Quantity) DivScalar(k numeric.Real) Quantity {
	return New(q.value.Quo(k), q.unit)
}

// Mul returns q × o in a derived unit. The result kind is the product kind.
func (q Quantity) Mul(o Quantity) Quantity {
	return New(q.value.Mul(o.value), q.unit.Mul(o.unit))
}

// Div returns q / o in a derived unit. The result kind is the quotient kind.
func (q Quantity) Div(o Quantity) Quantity {
	return New(q.value.Quo(o.value), q.unit.Div(o.unit))
}

// Abs returns |q|.
func (q Quantity) Abs() Quantity {
	return New(q.value.Abs(), q.unit)
}

// Cmp compares q and o after converting o into q's unit.
func (q Quantity) Cmp(o Quantity) (int, error) {
	if err := q.compatible(o, "compare"); err != nil {
		return 0, err
	}
	ov, _ := o.To(q.unit)
	return q.value.Cmp(ov.value), nil
}

// To converts q into target, honouring affine offsets.
func (q Quantity) To(target *Unit) (Quantity, error) {
	if err := q.compatible(Quantity{unit: target}, "convert"); err != nil {
		return Quantity{}, err
	}
	if q.unit == target {
		return q, nil
	}
	return New(target.fromSI(q.unit.toSI(q.value)), target), nil
}

// ToDelta converts q as a difference, ignoring affine offsets. A spread of
// 0.5 °C is 0.5 K, not 273.65 K.
func (q Quantity) ToDelta(target *Unit) (Quantity, error) {
	if err := q.compatible(Quantity{unit: target}, "convert"); err != nil {
		return Quantity{}, err
	}
	return New(q.deltaIn(target), target), nil
}

// deltaIn returns the magnitude of q as a difference in target.
// Callers must have checked that the kinds match.
func (q Quantity) deltaIn(target *Unit) numeric.Real {
	if q.unit == target || q.unit.scale.Cmp(target.scale) == 0 {
		return q.value
	}
	return q.value.Mul(q.unit.scale).Quo(target.scale)
}
