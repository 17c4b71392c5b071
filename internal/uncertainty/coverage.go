package uncertainty

// coverageStep maps a minimum confidence level to a coverage factor.
type coverageStep struct {
	minConfidence float64
	factor        float64
}

// coverageSteps is a coarse stand-in for the inverse normal CDF. The
// thresholds are part of the numeric contract; do not replace them with a
// continuous computation.
var coverageSteps = []coverageStep{
	{minConfidence: 0.997, factor: 3.0},
	{minConfidence: 0.954, factor: 2.0},
}

// Common confidence levels.
const (
	Confidence68  = 0.683
	Confidence95  = 0.954
	Confidence997 = 0.997
)

// CoverageFactor returns k for a confidence level: 3 at or above 0.997,
// 2 at or above 0.954, otherwise 1.
func CoverageFactor(confidence float64) float64 {
	for _, step := range coverageSteps {
		if confidence >= step.minConfidence {
			return step.factor
		}
	}
	return 1.0
}

func validConfidence(confidence float64) bool {
	return confidence > 0 && confidence <= 1
}
