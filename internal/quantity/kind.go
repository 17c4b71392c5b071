package quantity

import (
	"gonum.org/v1/gonum/unit"
)

// Kind is the physical dimension of a quantity. Two kinds are equal when
// their base-dimension exponents are equal; the name is only for display.
type Kind struct {
	name string
	dims unit.Dimensions
}

// NewKind builds a named kind from gonum base-dimension exponents.
func NewKind(name string, dims unit.Dimensions) Kind {
	return Kind{name: name, dims: unit.New(1, dims).Dimensions()}
}

var (
	Dimensionless     = NewKind("dimensionless", unit.Dimensions{})
	Length            = NewKind("length", unit.Dimensions{unit.LengthDim: 1})
	Mass              = NewKind("mass", unit.Dimensions{unit.MassDim: 1})
	Time              = NewKind("time", unit.Dimensions{unit.TimeDim: 1})
	Temperature       = NewKind("temperature", unit.Dimensions{unit.TemperatureDim: 1})
	Current           = NewKind("current", unit.Dimensions{unit.CurrentDim: 1})
	Amount            = NewKind("amount of substance", unit.Dimensions{unit.MoleDim: 1})
	LuminousIntensity = NewKind("luminous intensity", unit.Dimensions{unit.LuminousIntensityDim: 1})
	Angle             = NewKind("angle", unit.Dimensions{unit.AngleDim: 1})

	Area         = Length.Mul(Length).named("area")
	Volume       = Area.Mul(Length).named("volume")
	Velocity     = Length.Div(Time).named("velocity")
	Acceleration = Velocity.Div(Time).named("acceleration")
	Frequency    = Dimensionless.Div(Time).named("frequency")
	Force        = Mass.Mul(Acceleration).named("force")
	Pressure     = Force.Div(Area).named("pressure")
	Energy       = Force.Mul(Length).named("energy")
	Power        = Energy.Div(Time).named("power")
	Charge       = Current.Mul(Time).named("electric charge")
	Voltage      = Power.Div(Current).named("electric potential")
	Resistance   = Voltage.Div(Current).named("electric resistance")
)

var namedKinds []Kind

func init() {
	namedKinds = []Kind{
		Dimensionless, Length, Mass, Time, Temperature, Current, Amount, LuminousIntensity, Angle,
		Area, Volume, Velocity, Acceleration, Frequency, Force, Pressure, Energy, Power,
		Charge, Voltage, Resistance,
	}
}

func (k Kind) named(name string) Kind {
	k.name = name
	return k
}

func (k Kind) unit() *unit.Unit {
	return unit.New(1, k.dims)
}

// Matches reports whether k and o have the same dimensions.
func (k Kind) Matches(o Kind) bool {
	return unit.DimensionsMatch(k.unit(), o.unit())
}

// Mul returns the kind of a product, e.g. length × length = area.
func (k Kind) Mul(o Kind) Kind {
	return lookupKind(k.unit().Mul(o.unit()).Dimensions())
}

// Div returns the kind of a quotient.
func (k Kind) Div(o Kind) Kind {
	return lookupKind(k.unit().Div(o.unit()).Dimensions())
}

// Dimensions returns the base-dimension exponents.
func (k Kind) Dimensions() unit.Dimensions {
	return k.unit().Dimensions()
}

func (k Kind) String() string {
	if k.name != "" {
		return k.name
	}
	if len(k.dims) == 0 {
		return "dimensionless"
	}
	return k.dims.String()
}

func lookupKind(dims unit.Dimensions) Kind {
	k := Kind{dims: dims}
	// namedKinds is nil while the package-level kinds above are being initialised.
	for _, named := range namedKinds {
		if named.Matches(k) {
			return named
		}
	}
	return k
}
