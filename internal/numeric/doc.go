// Package numeric provides Real, an immutable arbitrary-precision real number.
//
// Real wraps math/big.Float so that uncertainty propagation can accumulate
// sums of squares without float64 round-off. Precision is process-wide and
// set once at startup from configuration:
//
//	numeric.SetPrecision(cfg.Measurement.PrecisionBits)
//	u := numeric.Hypot(numeric.NewReal(0.05), numeric.NewReal(0.1))
package numeric
