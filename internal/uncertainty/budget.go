package uncertainty

import (
	"fmt"
	"strings"
	"sync"

	"github.com/GriffinCanCode/Metrology/internal/numeric"
	"github.com/GriffinCanCode/Metrology/internal/quantity"
)

// SourceType classifies how an uncertainty component was evaluated.
type SourceType int

const (
	// TypeA components come from statistical analysis of repeated measurements.
	TypeA SourceType = iota
	// TypeB components come from other information such as calibration certificates.
	TypeB
)

func (t SourceType) String() string {
	switch t {
	case TypeA:
		return "Type A"
	case TypeB:
		return "Type B"
	default:
		return "unknown"
	}
}

// ParseSourceType parses "A", "B", "TYPE_A", "type b" and similar.
func ParseSourceType(s string) (SourceType, error) {
	norm := strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToUpper(s))
	switch norm {
	case "A", "TYPEA":
		return TypeA, nil
	case "B", "TYPEB":
		return TypeB, nil
	default:
		return 0, fmt.Errorf("%w: unknown source type %q", ErrInvalidArgument, s)
	}
}

// DefaultReportCoverage is the coverage factor of the expanded line in Report.
const DefaultReportCoverage = 2.0

// Source is one uncertainty component of a budget.
type Source struct {
	Name        string
	Uncertainty quantity.Quantity
	Type        SourceType
	// Sensitivity is ∂output/∂input. Only its square contributes.
	Sensitivity numeric.Real
}

// weighted returns c·u in the source's own unit.
func (s Source) weighted() numeric.Real {
	return s.Sensitivity.Mul(s.Uncertainty.Value())
}

// Entry is a named number; budgets return ordered slices of entries.
type Entry struct {
	Name  string
	Value float64
}

// Budget combines independent uncertainty sources per the GUM.
//
// Sources keep insertion order; re-adding a name overwrites it in place.
// Budget is safe for concurrent use.
type Budget struct {
	mu      sync.RWMutex
	name    string
	order   []string
	sources map[string]Source
}

// NewBudget creates an empty budget.
func NewBudget(name string) *Budget {
	return &Budget{name: name, sources: make(map[string]Source)}
}

func (b *Budget) Name() string { return b.name }

// AddSource adds or replaces a source with sensitivity coefficient 1.
func (b *Budget) AddSource(name string, u quantity.Quantity, typ SourceType) error {
	return b.AddSourceWithSensitivity(name, u, typ, numeric.One)
}

// AddSourceWithSensitivity adds or replaces a source with an explicit coefficient.
func (b *Budget) AddSourceWithSensitivity(name string, u quantity.Quantity, typ SourceType, c numeric.Real) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: source name is required", ErrInvalidArgument)
	}
	if !u.IsValid() {
		return fmt.Errorf("%w: uncertainty for source %q is required", ErrInvalidArgument, name)
	}
	if c.IsNaN() {
		return fmt.Errorf("%w: sensitivity coefficient for source %q is NaN", ErrInvalidArgument, name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.sources[name]; !exists {
		b.order = append(b.order, name)
	}
	b.sources[name] = Source{Name: name, Uncertainty: u.Abs(), Type: typ, Sensitivity: c}
	return nil
}

// AddSeries adds a series' standard error as a Type A source.
func (b *Budget) AddSeries(name string, s *Series) error {
	se, err := s.StandardError()
	if err != nil {
		return err
	}
	return b.AddSource(name, se, TypeA)
}

// Len returns the number of sources.
func (b *Budget) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Sources returns the sources in insertion order.
func (b *Budget) Sources() []Source {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot()
}

func (b *Budget) snapshot() []Source {
	out := make([]Source, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.sources[name])
	}
	return out
}

// combine returns u_c = √Σ(cᵢuᵢ)² in the first source's unit.
func combine(sources []Source) (quantity.Quantity, error) {
	if len(sources) == 0 {
		return quantity.Quantity{}, fmt.Errorf("%w: budget has no uncertainty sources", ErrIllegalState)
	}
	weighted := make([]numeric.Real, len(sources))
	for i, s := range sources {
		weighted[i] = s.weighted()
	}
	return quantity.New(numeric.Hypot(weighted...), sources[0].Uncertainty.Unit()), nil
}

// CombinedUncertainty returns √Σ(cᵢuᵢ)², each uᵢ taken in its own unit and
// the result reported in the first source's unit.
func (b *Budget) CombinedUncertainty() (quantity.Quantity, error) {
	return combine(b.Sources())
}

// ExpandedUncertainty returns k × CombinedUncertainty.
func (b *Budget) ExpandedUncertainty(k float64) (quantity.Quantity, error) {
	uc, err := b.CombinedUncertainty()
	if err != nil {
		return quantity.Quantity{}, err
	}
	return uc.Scale(numeric.NewReal(k)), nil
}

// SensitivityCoefficients returns name → coefficient in insertion order.
func (b *Budget) SensitivityCoefficients() []Entry {
	return sensitivities(b.Sources())
}

func sensitivities(sources []Source) []Entry {
	out := make([]Entry, len(sources))
	for i, s := range sources {
		out[i] = Entry{Name: s.Name, Value: s.Sensitivity.Float64()}
	}
	return out
}

// Contributions returns name → (cᵢuᵢ)²/u_c² × 100 in insertion order. When
// u_c is zero every contribution is zero.
func (b *Budget) Contributions() ([]Entry, error) {
	return contributions(b.Sources())
}

func contributions(sources []Source) ([]Entry, error) {
	uc, err := combine(sources)
	if err != nil {
		return nil, err
	}
	total := uc.Value().Square()
	hundred := numeric.FromInt(100)
	out := make([]Entry, len(sources))
	for i, s := range sources {
		pct := numeric.Zero
		if !total.IsZero() {
			pct = s.weighted().Square().Quo(total).Mul(hundred)
		}
		out[i] = Entry{Name: s.Name, Value: pct.Float64()}
	}
	return out, nil
}

// BudgetSummary is the combined uncertainty with its breakdown, all taken
// from one snapshot of the sources.
type BudgetSummary struct {
	Sources       []Source
	Combined      quantity.Quantity
	Contributions []Entry
	Sensitivities []Entry
}

// Summary returns sources, combined uncertainty, contributions and
// sensitivity coefficients computed from the same snapshot.
func (b *Budget) Summary() (BudgetSummary, error) {
	sources := b.Sources()
	uc, err := combine(sources)
	if err != nil {
		return BudgetSummary{}, err
	}
	contrib, err := contributions(sources)
	if err != nil {
		return BudgetSummary{}, err
	}
	return BudgetSummary{
		Sources:       sources,
		Combined:      uc,
		Contributions: contrib,
		Sensitivities: sensitivities(sources),
	}, nil
}

// Result packages the expanded uncertainty, with k taken from confidence,
// around a measured value.
func (b *Budget) Result(value quantity.Quantity, confidence float64) (MeasuredValue, error) {
	if !validConfidence(confidence) {
		return MeasuredValue{}, fmt.Errorf("%w: confidence level %v outside (0,1]", ErrInvalidArgument, confidence)
	}
	expanded, err := b.ExpandedUncertainty(CoverageFactor(confidence))
	if err != nil {
		return MeasuredValue{}, err
	}
	return NewMeasuredValue(value, expanded, confidence)
}

// Report renders the budget as a fixed-width table with combined and
// expanded (k=2) lines.
func (b *Budget) Report() (string, error) {
	return b.ReportWithCoverage(DefaultReportCoverage)
}

// ReportWithCoverage is Report with an explicit coverage factor.
func (b *Budget) ReportWithCoverage(k float64) (string, error) {
	sources := b.Sources()
	contrib, err := contributions(sources)
	if err != nil {
		return "", err
	}
	uc, _ := combine(sources)

	var sb strings.Builder
	title := "Uncertainty Budget"
	if b.name != "" {
		title += ": " + b.name
	}
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", 78) + "\n")
	fmt.Fprintf(&sb, "%-24s %-8s %18s %12s %12s\n", "Source", "Type", "Uncertainty", "Coeff", "Contrib %")
	sb.WriteString(strings.Repeat("-", 78) + "\n")
	for i, s := range sources {
		fmt.Fprintf(&sb, "%-24s %-8s %18s %12.4g %11.2f%%\n",
			truncate(s.Name, 24), s.Type, formatQuantity(s.Uncertainty), s.Sensitivity.Float64(), contrib[i].Value)
	}
	sb.WriteString(strings.Repeat("-", 78) + "\n")
	fmt.Fprintf(&sb, "%-33s %18s\n", "Combined standard uncertainty", formatQuantity(uc))
	fmt.Fprintf(&sb, "%-33s %18s\n", fmt.Sprintf("Expanded uncertainty (k=%g)", k), formatQuantity(uc.Scale(numeric.NewReal(k))))
	return sb.String(), nil
}

func formatQuantity(q quantity.Quantity) string {
	return formatNumber(q.Float64()) + " " + q.Unit().Symbol()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
