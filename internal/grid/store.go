// Package grid holds the editable assignment grid: a saved baseline of
// proportions per (work item, column) and an overlay of pending edits.
package grid

import (
	"sort"
	"sync"
)

// Key addresses one grid cell.
type Key struct {
	WorkItemID string
	ColumnID   string
}

// Cell is a key with its effective proportion.
type Cell struct {
	Key
	Proportion float64
	Modified   bool
}

// Store keeps saved and modified proportions. Only SetSaved, SetModified,
// Commit and Reset mutate it; reads always see the modified value over the
// saved one.
type Store struct {
	mu       sync.RWMutex
	saved    map[Key]float64
	modified map[Key]float64
}

func NewStore() *Store {
	return &Store{
		saved:    make(map[Key]float64),
		modified: make(map[Key]float64),
	}
}

// Clone returns an independent copy of the store, pending edits included.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := NewStore()
	for k, v := range s.saved {
		c.saved[k] = v
	}
	for k, v := range s.modified {
		c.modified[k] = v
	}
	return c
}

// Get returns the effective proportion of a cell, 0 when absent.
func (s *Store) Get(workItemID, columnID string) float64 {
	k := Key{WorkItemID: workItemID, ColumnID: columnID}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.modified[k]; ok {
		return v
	}
	return s.saved[k]
}

// Saved returns the persisted proportion of a cell, ignoring pending edits.
func (s *Store) Saved(workItemID, columnID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved[Key{WorkItemID: workItemID, ColumnID: columnID}]
}

// SetSaved writes a baseline value, as loaded from storage. Zero removes the
// entry.
func (s *Store) SetSaved(workItemID, columnID string, value float64) {
	k := Key{WorkItemID: workItemID, ColumnID: columnID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == 0 {
		delete(s.saved, k)
		return
	}
	s.saved[k] = value
}

// SetModified records a pending edit. An edit equal to the saved value
// (absent counting as zero) removes the overlay entry instead, so the dirty
// set only holds real changes.
func (s *Store) SetModified(workItemID, columnID string, value float64) {
	k := Key{WorkItemID: workItemID, ColumnID: columnID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved[k] == value {
		delete(s.modified, k)
		return
	}
	s.modified[k] = value
}

// Commit moves every pending edit into the saved map and clears the overlay.
// It returns the committed keys in sorted order.
func (s *Store) Commit() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]Key, 0, len(s.modified))
	for k, v := range s.modified {
		if v == 0 {
			delete(s.saved, k)
		} else {
			s.saved[k] = v
		}
		keys = append(keys, k)
	}
	s.modified = make(map[Key]float64)
	sortKeys(keys)
	return keys
}

// Reset discards pending edits.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modified = make(map[Key]float64)
}

func (s *Store) IsDirty() bool {
	return s.DirtyCount() > 0
}

func (s *Store) DirtyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.modified)
}

// DirtyKeys returns the keys with pending edits in sorted order.
func (s *Store) DirtyKeys() []Key {
	s.mu.RLock()
	keys := make([]Key, 0, len(s.modified))
	for k := range s.modified {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sortKeys(keys)
	return keys
}

// DirtyWorkItems returns the distinct work items with pending edits, sorted.
func (s *Store) DirtyWorkItems() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, k := range s.DirtyKeys() {
		if !seen[k.WorkItemID] {
			seen[k.WorkItemID] = true
			ids = append(ids, k.WorkItemID)
		}
	}
	return ids
}

// Snapshot returns every cell with its effective value, sorted by work item
// then column. Cells edited down to zero are included with Modified set so
// callers can tell a cleared cell from an untouched one.
func (s *Store) Snapshot() []Cell {
	s.mu.RLock()
	cells := make([]Cell, 0, len(s.saved)+len(s.modified))
	for k, v := range s.saved {
		if _, ok := s.modified[k]; ok {
			continue
		}
		cells = append(cells, Cell{Key: k, Proportion: v})
	}
	for k, v := range s.modified {
		cells = append(cells, Cell{Key: k, Proportion: v, Modified: true})
	}
	s.mu.RUnlock()

	sort.Slice(cells, func(i, j int) bool { return keyLess(cells[i].Key, cells[j].Key) })
	return cells
}

// Row returns the effective cells of one work item, sorted by column.
func (s *Store) Row(workItemID string) []Cell {
	var row []Cell
	for _, c := range s.Snapshot() {
		if c.WorkItemID == workItemID {
			row = append(row, c)
		}
	}
	return row
}

// Len returns the number of cells with a saved value.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.saved)
}

func keyLess(a, b Key) bool {
	if a.WorkItemID != b.WorkItemID {
		return a.WorkItemID < b.WorkItemID
	}
	return a.ColumnID < b.ColumnID
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
}
