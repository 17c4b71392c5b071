package uncertainty

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/Metrology/internal/shared/id"
	core "github.com/GriffinCanCode/Metrology/internal/uncertainty"
)

var (
	// ErrNotFound is returned for unknown workspace IDs.
	ErrNotFound = errors.New("not found")
	// ErrWorkspaceFull is returned when the object limit is reached.
	ErrWorkspaceFull = errors.New("workspace full")
)

// DefaultMaxObjects bounds the number of live series plus budgets.
const DefaultMaxObjects = 1000

// Entry describes one workspace object
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type seriesEntry struct {
	name      string
	series    *core.Series
	createdAt time.Time
}

type budgetEntry struct {
	budget    *core.Budget
	createdAt time.Time
}

// Workspace holds named series and budgets between tool calls. The objects
// themselves are safe for concurrent use; the lock only guards the maps.
type Workspace struct {
	mu         sync.RWMutex
	series     map[id.SeriesID]*seriesEntry
	budgets    map[id.BudgetID]*budgetEntry
	maxObjects int
	onChange   func(series, budgets int)
}

// NewWorkspace creates an empty workspace holding at most maxObjects objects.
func NewWorkspace(maxObjects int) *Workspace {
	if maxObjects <= 0 {
		maxObjects = DefaultMaxObjects
	}
	return &Workspace{
		series:     make(map[id.SeriesID]*seriesEntry),
		budgets:    make(map[id.BudgetID]*budgetEntry),
		maxObjects: maxObjects,
	}
}

// OnChange registers a callback fired with the object counts after every
// insert or delete. It runs under the workspace lock and must not call back
// into the workspace.
func (w *Workspace) OnChange(fn func(series, budgets int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

func (w *Workspace) changed() {
	if w.onChange != nil {
		w.onChange(len(w.series), len(w.budgets))
	}
}

func (w *Workspace) full() error {
	if len(w.series)+len(w.budgets) >= w.maxObjects {
		return fmt.Errorf("%w: limit of %d objects reached", ErrWorkspaceFull, w.maxObjects)
	}
	return nil
}

// AddSeries stores a series and returns its new ID.
func (w *Workspace) AddSeries(name string, s *core.Series) (id.SeriesID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.full(); err != nil {
		return "", err
	}
	sid := id.NewSeriesID()
	w.series[sid] = &seriesEntry{name: name, series: s, createdAt: time.Now()}
	w.changed()
	return sid, nil
}

// Series looks up a series by ID.
func (w *Workspace) Series(sid string) (*core.Series, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.series[id.SeriesID(sid)]
	if !ok {
		return nil, fmt.Errorf("series %q: %w", sid, ErrNotFound)
	}
	return e.series, nil
}

// AddBudget stores a budget and returns its new ID.
func (w *Workspace) AddBudget(b *core.Budget) (id.BudgetID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.full(); err != nil {
		return "", err
	}
	bid := id.NewBudgetID()
	w.budgets[bid] = &budgetEntry{budget: b, createdAt: time.Now()}
	w.changed()
	return bid, nil
}

// Budget looks up a budget by ID.
func (w *Workspace) Budget(bid string) (*core.Budget, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.budgets[id.BudgetID(bid)]
	if !ok {
		return nil, fmt.Errorf("budget %q: %w", bid, ErrNotFound)
	}
	return e.budget, nil
}

// Delete removes a series or budget, dispatching on the ID prefix.
func (w *Workspace) Delete(objID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case id.HasPrefix(objID, id.SeriesPrefix):
		if _, ok := w.series[id.SeriesID(objID)]; ok {
			delete(w.series, id.SeriesID(objID))
			w.changed()
			return nil
		}
	case id.HasPrefix(objID, id.BudgetPrefix):
		if _, ok := w.budgets[id.BudgetID(objID)]; ok {
			delete(w.budgets, id.BudgetID(objID))
			w.changed()
			return nil
		}
	}
	return fmt.Errorf("object %q: %w", objID, ErrNotFound)
}

// List returns all objects in creation order.
func (w *Workspace) List() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Entry, 0, len(w.series)+len(w.budgets))
	for sid, e := range w.series {
		out = append(out, Entry{ID: sid.String(), Kind: "series", Name: e.name, Size: e.series.Count(), CreatedAt: e.createdAt})
	}
	for bid, e := range w.budgets {
		out = append(out, Entry{ID: bid.String(), Kind: "budget", Name: e.budget.Name(), Size: e.budget.Len(), CreatedAt: e.createdAt})
	}
	// IDs share one monotonic generator, so their ULID parts order by creation.
	sort.Slice(out, func(i, j int) bool {
		_, ui, _ := id.Split(out[i].ID)
		_, uj, _ := id.Split(out[j].ID)
		return ui.Compare(uj) < 0
	})
	return out
}

// Len returns the number of stored series and budgets.
func (w *Workspace) Len() (series, budgets int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.series), len(w.budgets)
}
