package quantity

import (
	"fmt"
	"sync"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
)

// Unit is a measurement unit: an affine map onto the coherent SI unit of its kind.
//
//	si = value*scale + offset
type Unit struct {
	symbol string
	name   string
	kind   Kind
	scale  numeric.Real
	offset numeric.Real
}

// NewUnit defines a linear unit, scale coherent SI units per unit.
func NewUnit(symbol, name string, kind Kind, scale float64) *Unit {
	return &Unit{symbol: symbol, name: name, kind: kind, scale: numeric.NewReal(scale)}
}

// NewAffineUnit defines a unit with a zero offset, like degrees Celsius.
func NewAffineUnit(symbol, name string, kind Kind, scale, offset float64) *Unit {
	u := NewUnit(symbol, name, kind, scale)
	u.offset = numeric.NewReal(offset)
	return u
}

func (u *Unit) Symbol() string { return u.symbol }
func (u *Unit) Name() string   { return u.name }
func (u *Unit) Kind() Kind     { return u.kind }

func (u *Unit) String() string {
	if u == nil {
		return "<nil unit>"
	}
	return u.symbol
}

// Mul derives a product unit; affine offsets are dropped.
func (u *Unit) Mul(o *Unit) *Unit {
	return &Unit{
		symbol: u.symbol + "·" + o.symbol,
		kind:   u.kind.Mul(o.kind),
		scale:  u.scale.Mul(o.scale),
	}
}

// Div derives a quotient unit; affine offsets are dropped.
func (u *Unit) Div(o *Unit) *Unit {
	return &Unit{
		symbol: u.symbol + "/" + o.symbol,
		kind:   u.kind.Div(o.kind),
		scale:  u.scale.Quo(o.scale),
	}
}

// Equal reports whether both units map onto SI identically.
func (u *Unit) Equal(o *Unit) bool {
	if u == o {
		return true
	}
	if u == nil || o == nil {
		return false
	}
	return u.kind.Matches(o.kind) && u.scale.Cmp(o.scale) == 0 && u.offset.Cmp(o.offset) == 0
}

func (u *Unit) toSI(v numeric.Real) numeric.Real {
	return v.Mul(u.scale).Add(u.offset)
}

func (u *Unit) fromSI(v numeric.Real) numeric.Real {
	return v.Sub(u.offset).Quo(u.scale)
}

var (
	One = NewUnit("1", "one", Dimensionless, 1)

	Meter      = NewUnit("m", "meter", Length, 1)
	Kilometer  = NewUnit("km", "kilometer", Length, 1e3)
	Centimeter = NewUnit("cm", "centimeter", Length, 1e-2)
	Millimeter = NewUnit("mm", "millimeter", Length, 1e-3)
	Micrometer = NewUnit("µm", "micrometer", Length, 1e-6)
	Nanometer  = NewUnit("nm", "nanometer", Length, 1e-9)
	Inch       = NewUnit("in", "inch", Length, 0.0254)
	Foot       = NewUnit("ft", "foot", Length, 0.3048)

	Kilogram  = NewUnit("kg", "kilogram", Mass, 1)
	Gram      = NewUnit("g", "gram", Mass, 1e-3)
	Milligram = NewUnit("mg", "milligram", Mass, 1e-6)
	Pound     = NewUnit("lb", "pound", Mass, 0.45359237)

	Second      = NewUnit("s", "second", Time, 1)
	Millisecond = NewUnit("ms", "millisecond", Time, 1e-3)
	Minute      = NewUnit("min", "minute", Time, 60)
	Hour        = NewUnit("h", "hour", Time, 3600)

	Kelvin     = NewUnit("K", "kelvin", Temperature, 1)
	Celsius    = NewAffineUnit("°C", "degree Celsius", Temperature, 1, 273.15)
	Fahrenheit = NewAffineUnit("°F", "degree Fahrenheit", Temperature, 5.0/9.0, 273.15-32*5.0/9.0)

	Ampere      = NewUnit("A", "ampere", Current, 1)
	Milliampere = NewUnit("mA", "milliampere", Current, 1e-3)
	Mole        = NewUnit("mol", "mole", Amount, 1)
	Candela     = NewUnit("cd", "candela", LuminousIntensity, 1)
	Radian      = NewUnit("rad", "radian", Angle, 1)

	Volt       = NewUnit("V", "volt", Voltage, 1)
	Millivolt  = NewUnit("mV", "millivolt", Voltage, 1e-3)
	Ohm        = NewUnit("Ω", "ohm", Resistance, 1)
	Pascal     = NewUnit("Pa", "pascal", Pressure, 1)
	Kilopascal = NewUnit("kPa", "kilopascal", Pressure, 1e3)
	Bar        = NewUnit("bar", "bar", Pressure, 1e5)
	Newton     = NewUnit("N", "newton", Force, 1)
	Joule      = NewUnit("J", "joule", Energy, 1)
	Watt       = NewUnit("W", "watt", Power, 1)
	Hertz      = NewUnit("Hz", "hertz", Frequency, 1)
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Unit{}
)

func init() {
	for _, u := range []*Unit{
		One, Meter, Kilometer, Centimeter, Millimeter, Micrometer, Nanometer, Inch, Foot,
		Kilogram, Gram, Milligram, Pound, Second, Millisecond, Minute, Hour,
		Kelvin, Celsius, Fahrenheit, Ampere, Milliampere, Mole, Candela, Radian,
		Volt, Millivolt, Ohm, Pascal, Kilopascal, Bar, Newton, Joule, Watt, Hertz,
	} {
		registry[u.symbol] = u
	}
	registry["um"] = Micrometer
	registry["degC"] = Celsius
	registry["degF"] = Fahrenheit
	registry["ohm"] = Ohm
}

// Register makes u available to LookupUnit under its symbol.
func Register(u *Unit) error {
	if u == nil || u.symbol == "" {
		return fmt.Errorf("unit symbol required")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[u.symbol] = u
	return nil
}

// LookupUnit finds a unit by symbol.
func LookupUnit(symbol string) (*Unit, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	u, ok := registry[symbol]
	return u, ok
}
