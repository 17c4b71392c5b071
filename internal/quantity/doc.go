// Package quantity provides immutable physical quantities: a numeric.Real
// magnitude tagged with a Unit whose Kind is checked on every addition,
// comparison and conversion.
//
// Kinds are gonum.org/v1/gonum/unit dimension sets, so products and
// quotients derive their kind automatically (length × length = area).
// Units are affine maps onto the coherent SI unit of their kind, which
// covers prefixed, imperial and offset temperature scales.
//
// Example Usage:
//
//	d, err := quantity.Of(12.5, quantity.Inch).To(quantity.Millimeter)
//	sum, err := quantity.Of(1, quantity.Meter).Add(quantity.Of(50, quantity.Centimeter))
package quantity
