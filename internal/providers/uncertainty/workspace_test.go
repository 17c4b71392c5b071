package uncertainty

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Metrology/internal/quantity"
	"github.com/GriffinCanCode/Metrology/internal/shared/id"
	core "github.com/GriffinCanCode/Metrology/internal/uncertainty"
)

func newSeries(t *testing.T, values ...float64) *core.Series {
	t.Helper()
	s, err := core.NewSeries()
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, s.Add(quantity.Of(v, quantity.Meter)))
	}
	return s
}

func TestWorkspaceStore(t *testing.T) {
	ws := NewWorkspace(0)

	sid, err := ws.AddSeries("diameter", newSeries(t, 1, 2, 3))
	require.NoError(t, err)
	assert.True(t, id.HasPrefix(sid.String(), id.SeriesPrefix))

	bid, err := ws.AddBudget(core.NewBudget("length"))
	require.NoError(t, err)
	assert.True(t, id.HasPrefix(bid.String(), id.BudgetPrefix))

	s, err := ws.Series(sid.String())
	require.NoError(t, err)
	assert.Equal(t, 3, s.Count())

	_, err = ws.Series(bid.String())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ws.Budget(sid.String())
	assert.ErrorIs(t, err, ErrNotFound)

	entries := ws.List()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{ID: sid.String(), Kind: "series", Name: "diameter", Size: 3, CreatedAt: entries[0].CreatedAt}, entries[0])
	assert.Equal(t, "budget", entries[1].Kind)
	assert.Equal(t, "length", entries[1].Name)

	require.NoError(t, ws.Delete(sid.String()))
	assert.ErrorIs(t, ws.Delete(sid.String()), ErrNotFound)
	assert.ErrorIs(t, ws.Delete("bogus"), ErrNotFound)

	series, budgets := ws.Len()
	assert.Equal(t, 0, series)
	assert.Equal(t, 1, budgets)
}

func TestWorkspaceLimit(t *testing.T) {
	ws := NewWorkspace(2)

	var counts [][2]int
	ws.OnChange(func(series, budgets int) { counts = append(counts, [2]int{series, budgets}) })

	_, err := ws.AddSeries("", newSeries(t))
	require.NoError(t, err)
	bid, err := ws.AddBudget(core.NewBudget(""))
	require.NoError(t, err)

	_, err = ws.AddSeries("", newSeries(t))
	assert.ErrorIs(t, err, ErrWorkspaceFull)
	_, err = ws.AddBudget(core.NewBudget(""))
	assert.ErrorIs(t, err, ErrWorkspaceFull)

	require.NoError(t, ws.Delete(bid.String()))
	_, err = ws.AddBudget(core.NewBudget(""))
	assert.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 0}, {1, 1}, {1, 0}, {1, 1}}, counts)
}

func TestWorkspaceConcurrentAccess(t *testing.T) {
	ws := NewWorkspace(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s, _ := core.NewSeries(quantity.Of(1, quantity.Meter))
				sid, err := ws.AddSeries("", s)
				if err != nil {
					t.Error(err)
					return
				}
				_ = ws.List()
				if j%2 == 0 {
					_ = ws.Delete(sid.String())
				}
			}
		}()
	}
	wg.Wait()

	series, _ := ws.Len()
	assert.Equal(t, 100, series)
}
