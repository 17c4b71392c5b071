package numeric

import (
	"math"
	"math/big"
	"strconv"
	"sync/atomic"
)

// DefaultPrecision is the mantissa size, in bits, used when none is configured.
const DefaultPrecision uint = 128

var precision atomic.Uint32

// SetPrecision changes the mantissa precision used by every subsequent operation.
// A zero value restores DefaultPrecision.
func SetPrecision(bits uint) {
	precision.Store(uint32(bits))
}

// Precision returns the mantissa precision in bits.
func Precision() uint {
	if p := precision.Load(); p != 0 {
		return uint(p)
	}
	return DefaultPrecision
}

// Real is an immutable arbitrary-precision real number backed by big.Float.
//
// The zero value is 0. Operations that big.Float rejects (0/0, ∞−∞, √-1)
// yield a NaN Real instead of panicking; NaN propagates through arithmetic.
type Real struct {
	f   *big.Float
	nan bool
}

var (
	Zero = Real{}
	One  = NewReal(1)
)

// NewReal converts a float64. NaN inputs produce a NaN Real.
func NewReal(v float64) Real {
	if math.IsNaN(v) {
		return NaN()
	}
	return Real{f: new(big.Float).SetPrec(Precision()).SetFloat64(v)}
}

// FromInt converts an integer exactly.
func FromInt(v int64) Real {
	return Real{f: new(big.Float).SetPrec(Precision()).SetInt64(v)}
}

// ParseReal parses a decimal or scientific literal, or "Inf"/"-Inf".
func ParseReal(s string) (Real, error) {
	f, ok := new(big.Float).SetPrec(Precision()).SetString(s)
	if !ok {
		return Zero, &strconv.NumError{Func: "ParseReal", Num: s, Err: strconv.ErrSyntax}
	}
	return Real{f: f}, nil
}

// NaN returns the not-a-number sentinel.
func NaN() Real {
	return Real{nan: true}
}

// Inf returns +∞ if sign >= 0, −∞ otherwise.
func Inf(sign int) Real {
	return Real{f: new(big.Float).SetInf(sign < 0)}
}

func (r Real) float() *big.Float {
	if r.f == nil {
		return new(big.Float)
	}
	return r.f
}

// apply runs op on a fresh destination, converting big.ErrNaN panics into NaN.
func apply(op func(z *big.Float)) (r Real) {
	defer func() {
		if e := recover(); e != nil {
			if _, ok := e.(big.ErrNaN); ok {
				r = NaN()
				return
			}
			panic(e)
		}
	}()
	z := new(big.Float).SetPrec(Precision())
	op(z)
	return Real{f: z}
}

// Add returns r + o.
func (r Real) Add(o Real) Real {
	if r.nan || o.nan {
		return NaN()
	}
	return apply(func(z *big.Float) { z.Add(r.float(), o.float()) })
}

// Sub returns r - o.
func (r Real) Sub(o Real) Real {
	if r.nan || o.nan {
		return NaN()
	}
	return apply(func(z *big.Float) { z.Sub(r.float(), o.float()) })
}

// Mul returns r * o.
func (r Real) Mul(o Real) Real {
	if r.nan || o.nan {
		return NaN()
	}
	return apply(func(z *big.Float) { z.Mul(r.float(), o.float()) })
}

// Quo returns r / o. Division of a non-zero value by zero yields ±∞.
func (r Real) Quo(o Real) Real {
	if r.nan || o.nan {
		return NaN()
	}
	return apply(func(z *big.Float) { z.Quo(r.float(), o.float()) })
}

// Square returns r * r.
func (r Real) Square() Real {
	return r.Mul(r)
}

// Sqrt returns the principal square root; negative inputs yield NaN.
func (r Real) Sqrt() Real {
	if r.nan || r.Sign() < 0 {
		return NaN()
	}
	if r.Sign() == 0 {
		return Zero
	}
	return apply(func(z *big.Float) { z.Sqrt(r.float()) })
}

// Abs returns |r|.
func (r Real) Abs() Real {
	if r.nan {
		return r
	}
	return apply(func(z *big.Float) { z.Abs(r.float()) })
}

// Neg returns -r.
func (r Real) Neg() Real {
	if r.nan {
		return r
	}
	return apply(func(z *big.Float) { z.Neg(r.float()) })
}

// Cmp compares r and o, returning -1, 0 or +1. NaN compares equal to everything.
func (r Real) Cmp(o Real) int {
	if r.nan || o.nan {
		return 0
	}
	return r.float().Cmp(o.float())
}

// Sign returns -1, 0 or +1. NaN has sign 0.
func (r Real) Sign() int {
	if r.nan {
		return 0
	}
	return r.float().Sign()
}

func (r Real) IsZero() bool { return !r.nan && r.Sign() == 0 }
func (r Real) IsNaN() bool  { return r.nan }
func (r Real) IsInf() bool  { return !r.nan && r.float().IsInf() }

// Float64 returns the nearest float64.
func (r Real) Float64() float64 {
	if r.nan {
		return math.NaN()
	}
	v, _ := r.float().Float64()
	return v
}

// Text formats r like big.Float.Text.
func (r Real) Text(format byte, prec int) string {
	if r.nan {
		return "NaN"
	}
	return r.float().Text(format, prec)
}

// String formats the float64 approximation in its shortest round-trip form.
func (r Real) String() string {
	if r.nan {
		return "NaN"
	}
	return strconv.FormatFloat(r.Float64(), 'g', -1, 64)
}

// Sum adds all values.
func Sum(values ...Real) Real {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Hypot returns √(Σ vᵢ²), the quadrature sum.
func Hypot(values ...Real) Real {
	total := Zero
	for _, v := range values {
		total = total.Add(v.Square())
	}
	return total.Sqrt()
}
