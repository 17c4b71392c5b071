// Package id generates prefixed ULIDs for workspace objects and requests.
//
// IDs are lexicographically sortable by creation time and carry a short
// type prefix so that logs stay readable: series_01J..., budget_01J...
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SeriesID identifies a measurement series held in a workspace
type SeriesID string

// BudgetID identifies an uncertainty budget held in a workspace
type BudgetID string

// RequestID identifies an API request
type RequestID string

const (
	SeriesPrefix  = "series"
	BudgetPrefix  = "budget"
	RequestPrefix = "req"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// entropy, so IDs minted in the same millisecond still sort in order.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests pass a deterministic reader.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewSeriesID generates a new series ID
func NewSeriesID() SeriesID {
	return SeriesID(Default().GenerateWithPrefix(SeriesPrefix))
}

// NewBudgetID generates a new budget ID
func NewBudgetID() BudgetID {
	return BudgetID(Default().GenerateWithPrefix(BudgetPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id SeriesID) String() string  { return string(id) }
func (id BudgetID) String() string  { return string(id) }
func (id RequestID) String() string { return string(id) }

// IsValid checks if an ID string is a valid bare ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

// Split separates a prefixed ID into its prefix and ULID. It fails when the
// ID has no prefix or the ULID part is malformed.
func Split(id string) (string, ulid.ULID, error) {
	prefix, raw, ok := strings.Cut(id, "_")
	if !ok || prefix == "" {
		return "", ulid.ULID{}, fmt.Errorf("id %q has no prefix", id)
	}
	u, err := ulid.Parse(raw)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("id %q: %w", id, err)
	}
	return prefix, u, nil
}

// HasPrefix reports whether id is a well-formed ID of the given type.
func HasPrefix(id, prefix string) bool {
	p, _, err := Split(id)
	return err == nil && p == prefix
}

// Timestamp extracts the creation time from a bare or prefixed ULID
func Timestamp(id string) (time.Time, error) {
	if _, raw, ok := strings.Cut(id, "_"); ok {
		id = raw
	}
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
