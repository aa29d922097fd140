package components

import (
	"sort"
	"sync"
	"time"

	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
)

// QueriesTable holds the rows of the queries table and the checked rows.
// Inherited rows are read-only and never selectable.
type QueriesTable struct {
	rows      []viewmodels.EnhancedQuery
	canSelect bool

	mu       sync.Mutex
	selected map[uint]bool
}

// NewQueriesTable restores a table. Previously selected ids that are not
// selectable rows are dropped.
func NewQueriesTable(rows []viewmodels.EnhancedQuery, canSelect bool, selected []uint) *QueriesTable {
	t := &QueriesTable{rows: rows, canSelect: canSelect, selected: map[uint]bool{}}
	for _, id := range selected {
		if t.selectable(id) {
			t.selected[id] = true
		}
	}
	return t
}

func (t *QueriesTable) selectable(id uint) bool {
	if !t.canSelect {
		return false
	}
	for _, r := range t.rows {
		if r.ID == id {
			return !r.Inherited
		}
	}
	return false
}

func (t *QueriesTable) selectableIDs() []uint {
	if !t.canSelect {
		return nil
	}
	ids := make([]uint, 0, len(t.rows))
	for _, r := range t.rows {
		if !r.Inherited {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Toggle flips one row and reports whether the row is selectable.
func (t *QueriesTable) Toggle(id uint) bool {
	if !t.selectable(id) {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected[id] {
		delete(t.selected, id)
	} else {
		t.selected[id] = true
	}
	return true
}

// ToggleAll checks every selectable row, or clears the selection when all
// of them are already checked.
func (t *QueriesTable) ToggleAll() {
	ids := t.selectableIDs()
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(ids) > 0 && len(t.selected) == len(ids) {
		t.selected = map[uint]bool{}
		return
	}
	for _, id := range ids {
		t.selected[id] = true
	}
}

func (t *QueriesTable) IsChecked(id uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected[id]
}

// AllChecked reports whether every selectable row is checked.
func (t *QueriesTable) AllChecked() bool {
	ids := t.selectableIDs()
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(ids) > 0 && len(t.selected) == len(ids)
}

// Selected returns the checked ids in ascending order.
func (t *QueriesTable) Selected() []uint {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]uint, 0, len(t.selected))
	for id := range t.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Checkboxes is the number of rendered checkboxes: one per selectable row plus
// the select-all box, or none when nothing is selectable.
func (t *QueriesTable) Checkboxes() int {
	n := len(t.selectableIDs())
	if n == 0 {
		return 0
	}
	return n + 1
}

// Rows renders the table rows.
func (t *QueriesTable) Rows(now time.Time) []viewmodels.QueryRow {
	out := make([]viewmodels.QueryRow, 0, len(t.rows))
	for _, q := range t.rows {
		out = append(out, viewmodels.QueryRow{
			ID:                q.ID,
			Name:              q.Name,
			Description:       q.Description,
			Inherited:         q.Inherited,
			ObserverCanRun:    q.ObserverCanRun,
			PerformanceImpact: q.PerformanceImpact,
			Platforms:         q.Platforms,
			Interval:          viewmodels.FormatInterval(q.Interval),
			AutomationsOn:     q.AutomationsEnabled,
			AuthorName:        q.AuthorName,
			UpdatedAt:         viewmodels.ParseActivityTime(q.UpdatedAt, now),
			Selectable:        t.selectable(q.ID),
			Checked:           t.IsChecked(q.ID),
		})
	}
	return out
}
