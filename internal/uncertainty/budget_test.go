package uncertainty

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
	"github.com/GriffinCanCode/Metrology/internal/quantity"
)

func gaugeBudget(t *testing.T) *Budget {
	t.Helper()
	b := NewBudget("gauge block")
	require.NoError(t, b.AddSource("repeatability", quantity.Of(0.05, quantity.Millimeter), TypeA))
	require.NoError(t, b.AddSource("calibration", quantity.Of(0.1, quantity.Millimeter), TypeB))
	require.NoError(t, b.AddSource("resolution", quantity.Of(0.02, quantity.Millimeter), TypeB))
	return b
}

func TestBudgetCombination(t *testing.T) {
	b := gaugeBudget(t)
	want := math.Sqrt(0.05*0.05 + 0.1*0.1 + 0.02*0.02)

	uc, err := b.CombinedUncertainty()
	require.NoError(t, err)
	assert.InDelta(t, want, uc.Float64(), 1e-12)
	assert.Same(t, quantity.Millimeter, uc.Unit())

	ue, err := b.ExpandedUncertainty(2)
	require.NoError(t, err)
	assert.InDelta(t, 2*want, ue.Float64(), 1e-12)
}

func TestBudgetContributions(t *testing.T) {
	contrib, err := gaugeBudget(t).Contributions()
	require.NoError(t, err)
	require.Len(t, contrib, 3)

	names := make([]string, len(contrib))
	total := 0.0
	for i, c := range contrib {
		names[i] = c.Name
		total += c.Value
	}
	assert.Equal(t, []string{"repeatability", "calibration", "resolution"}, names)
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.InDelta(t, 0.01/0.0129*100, contrib[1].Value, 1e-9)

	t.Run("zero combined uncertainty", func(t *testing.T) {
		b := NewBudget("")
		require.NoError(t, b.AddSource("nothing", quantity.Of(0, quantity.Meter), TypeB))
		contrib, err := b.Contributions()
		require.NoError(t, err)
		assert.Equal(t, 0.0, contrib[0].Value)
	})
}

func TestBudgetSensitivity(t *testing.T) {
	b := NewBudget("resistor")
	require.NoError(t, b.AddSourceWithSensitivity("voltage", quantity.Of(0.1, quantity.Volt), TypeB, numeric.NewReal(-2)))
	require.NoError(t, b.AddSource("current", quantity.Of(0.1, quantity.Volt), TypeA))

	uc, err := b.CombinedUncertainty()
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.04+0.01), uc.Float64(), 1e-12)

	coeffs := b.SensitivityCoefficients()
	require.Len(t, coeffs, 2)
	assert.Equal(t, Entry{Name: "voltage", Value: -2}, coeffs[0])
	assert.Equal(t, Entry{Name: "current", Value: 1}, coeffs[1])

	contrib, err := b.Contributions()
	require.NoError(t, err)
	assert.InDelta(t, 80.0, contrib[0].Value, 1e-9)
	assert.InDelta(t, 20.0, contrib[1].Value, 1e-9)
}

func TestBudgetSummary(t *testing.T) {
	sum, err := gaugeBudget(t).Summary()
	require.NoError(t, err)
	require.Len(t, sum.Sources, 3)
	assert.InDelta(t, math.Sqrt(0.0129), sum.Combined.Float64(), 1e-12)
	require.Len(t, sum.Contributions, 3)
	require.Len(t, sum.Sensitivities, 3)
	assert.Equal(t, "calibration", sum.Contributions[1].Name)
	assert.Equal(t, 1.0, sum.Sensitivities[2].Value)

	_, err = NewBudget("").Summary()
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestBudgetConcurrentSummary(t *testing.T) {
	b := NewBudget("busy")
	require.NoError(t, b.AddSource("base", quantity.Of(1, quantity.Meter), TypeB))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = b.AddSource(fmt.Sprintf("w%d-%d", w, j), quantity.Of(1, quantity.Meter), TypeA)
			}
		}(i)
	}

	// each source is 1 m, so combined must be √n for the n sources seen
	inconsistent := make(chan string, 1)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sum, err := b.Summary()
				if err != nil {
					continue
				}
				n := len(sum.Sources)
				total := 0.0
				for _, c := range sum.Contributions {
					total += c.Value
				}
				if len(sum.Contributions) != n || len(sum.Sensitivities) != n ||
					math.Abs(sum.Combined.Float64()-math.Sqrt(float64(n))) > 1e-9 ||
					math.Abs(total-100) > 1e-6 {
					select {
					case inconsistent <- fmt.Sprintf("n=%d contributions=%d combined=%v", n, len(sum.Contributions), sum.Combined):
					default:
					}
				}
			}
		}()
	}
	wg.Wait()
	close(inconsistent)

	for msg := range inconsistent {
		t.Errorf("inconsistent summary: %s", msg)
	}
	assert.Equal(t, 201, b.Len())
}

func TestBudgetOverwrite(t *testing.T) {
	b := gaugeBudget(t)
	require.NoError(t, b.AddSource("repeatability", quantity.Of(0.03, quantity.Millimeter), TypeA))

	assert.Equal(t, 3, b.Len())
	sources := b.Sources()
	assert.Equal(t, "repeatability", sources[0].Name)
	assert.InDelta(t, 0.03, sources[0].Uncertainty.Float64(), 1e-15)
}

func TestBudgetErrors(t *testing.T) {
	b := NewBudget("empty")

	_, err := b.CombinedUncertainty()
	assert.ErrorIs(t, err, ErrIllegalState)
	_, err = b.ExpandedUncertainty(2)
	assert.ErrorIs(t, err, ErrIllegalState)
	_, err = b.Contributions()
	assert.ErrorIs(t, err, ErrIllegalState)
	_, err = b.Report()
	assert.ErrorIs(t, err, ErrIllegalState)
	assert.Empty(t, b.SensitivityCoefficients())

	assert.ErrorIs(t, b.AddSource("", quantity.Of(1, quantity.Meter), TypeA), ErrInvalidArgument)
	assert.ErrorIs(t, b.AddSource("   ", quantity.Of(1, quantity.Meter), TypeA), ErrInvalidArgument)
	assert.ErrorIs(t, b.AddSource("x", quantity.Quantity{}, TypeA), ErrInvalidArgument)
	assert.ErrorIs(t, b.AddSourceWithSensitivity("x", quantity.Of(1, quantity.Meter), TypeA, numeric.NaN()), ErrInvalidArgument)
	assert.Equal(t, 0, b.Len())

	require.NoError(t, b.AddSource("x", quantity.Of(1, quantity.Meter), TypeA))
	_, err = b.CombinedUncertainty()
	assert.NoError(t, err)
}

func TestBudgetWorkflow(t *testing.T) {
	readings := seriesOf(t, quantity.Millimeter, 25.01, 25.03, 24.99, 25.02, 25.00)

	b := NewBudget("length")
	require.NoError(t, b.AddSeries("repeatability", readings))
	require.NoError(t, b.AddSource("calibration", quantity.Of(0.01, quantity.Millimeter), TypeB))

	sources := b.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, TypeA, sources[0].Type)
	se, err := readings.StandardError()
	require.NoError(t, err)
	assert.InDelta(t, se.Float64(), sources[0].Uncertainty.Float64(), 1e-15)

	mean, err := readings.Mean()
	require.NoError(t, err)
	result, err := b.Result(mean, 0.954)
	require.NoError(t, err)

	uc, err := b.CombinedUncertainty()
	require.NoError(t, err)
	assert.InDelta(t, 2*uc.Float64(), result.Uncertainty().Float64(), 1e-15)
	assert.InDelta(t, 25.01, result.Value().Float64(), 1e-12)
	assert.Equal(t, 0.954, result.ConfidenceLevel())

	_, err = b.Result(mean, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.ErrorIs(t, b.AddSeries("short", seriesOf(t, quantity.Millimeter, 1)), ErrIllegalState)
}

func TestBudgetReport(t *testing.T) {
	report, err := gaugeBudget(t).Report()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(report, "Uncertainty Budget: gauge block\n"))
	for _, want := range []string{
		"repeatability", "calibration", "resolution",
		"Type A", "Type B",
		"Combined standard uncertainty",
		"Expanded uncertainty (k=2)",
		"0.113578 mm", "0.227156 mm",
	} {
		assert.Contains(t, report, want)
	}

	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	assert.Len(t, lines, 10)

	k3, err := gaugeBudget(t).ReportWithCoverage(3)
	require.NoError(t, err)
	assert.Contains(t, k3, "Expanded uncertainty (k=3)")
}

func TestParseSourceType(t *testing.T) {
	for in, want := range map[string]SourceType{
		"A": TypeA, "type_a": TypeA, "TYPE A": TypeA,
		"b": TypeB, "TYPE_B": TypeB, "Type-B": TypeB,
	} {
		got, err := ParseSourceType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSourceType("C")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
