package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	assert.NotEqual(t, id1.String(), id2.String())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{SeriesPrefix, BudgetPrefix, RequestPrefix} {
		id := gen.GenerateWithPrefix(prefix)
		assert.True(t, strings.HasPrefix(id, prefix+"_"), id)

		p, u, err := Split(id)
		require.NoError(t, err)
		assert.Equal(t, prefix, p)
		assert.True(t, IsValid(u.String()))
	}
}

func TestTypedIDGeneration(t *testing.T) {
	assert.True(t, HasPrefix(NewSeriesID().String(), SeriesPrefix))
	assert.True(t, HasPrefix(NewBudgetID().String(), BudgetPrefix))
	assert.True(t, HasPrefix(NewRequestID().String(), RequestPrefix))

	assert.False(t, HasPrefix(NewSeriesID().String(), BudgetPrefix))
}

func TestSplit(t *testing.T) {
	for _, bad := range []string{
		"",
		"series",
		"_01ARZ3NDEKTSV4RRFFQ69G5FAV",
		"series_invalid",
		"series_zzzzzzzzzzzzzzzzzzzzzzzzzz",
	} {
		_, _, err := Split(bad)
		assert.Error(t, err, bad)
		assert.False(t, HasPrefix(bad, SeriesPrefix), bad)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(NewGenerator().GenerateString()))

	for _, id := range []string{"", "invalid", "1234567890", "zzzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		assert.False(t, IsValid(id), id)
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now()
	bare := NewGenerator().GenerateString()
	prefixed := NewBudgetID().String()
	after := time.Now()

	for _, id := range []string{bare, prefixed} {
		ts, err := Timestamp(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ts.UnixMilli(), before.UnixMilli())
		assert.LessOrEqual(t, ts.UnixMilli(), after.UnixMilli())
	}

	_, err := Timestamp("series_nope")
	assert.Error(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const perGoroutine = 100

	var wg sync.WaitGroup
	ids := make(chan string, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				ids <- gen.GenerateWithPrefix(SeriesPrefix)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestMonotonicWithinMillisecond(t *testing.T) {
	gen := NewGenerator()

	prev := gen.GenerateString()
	for i := 0; i < 1000; i++ {
		next := gen.GenerateString()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestDefaultGenerator(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.True(t, IsValid(Default().GenerateString()))
}

func BenchmarkGenerateWithPrefix(b *testing.B) {
	gen := NewGenerator()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = gen.GenerateWithPrefix(SeriesPrefix)
	}
}
