package uncertainty

import (
	"fmt"
	"math"
	"strconv"
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// ScientificNotation formats "value ± uncertainty (confidence%)", e.g.
// "1.2340e+01 m ± 5.0000e-01 m (95.4%)".
func (m MeasuredValue) ScientificNotation() string {
	symbol := m.value.Unit().Symbol()
	return fmt.Sprintf("%.4e %s ± %.4e %s (%.1f%%)",
		m.value.Float64(), symbol, m.uncertainty.Float64(), symbol, m.confidence*100)
}

// PercentageNotation formats "value ± relPct%", e.g. "12.34 m ± 4.05%".
// An undefined relative uncertainty renders as "+Inf%".
func (m MeasuredValue) PercentageNotation() string {
	rel := m.RelativeUncertainty().Float64() * 100
	pct := "+Inf"
	if !math.IsInf(rel, 0) {
		pct = strconv.FormatFloat(rel, 'f', 2, 64)
	}
	return fmt.Sprintf("%s %s ± %s%%", formatNumber(m.value.Float64()), m.value.Unit().Symbol(), pct)
}

// IntervalNotation formats "value [lower, upper]", e.g. "12.34 m [11.84, 12.84]".
func (m MeasuredValue) IntervalNotation() string {
	return fmt.Sprintf("%s %s [%s, %s]",
		formatNumber(m.value.Float64()), m.value.Unit().Symbol(),
		formatNumber(m.Lower().Float64()), formatNumber(m.Upper().Float64()))
}

func (m MeasuredValue) String() string {
	if !m.value.IsValid() {
		return "<invalid measured value>"
	}
	return m.ScientificNotation()
}
