// Package reactive implements the notebook session layer: a definition
// registry with copy-on-write checkpoints, per-cell provenance, a
// dependency graph driving cascade recomputation, transactions, and a
// serializable session state.
package reactive

import (
	"sync"

	"github.com/paiml/ruchy-sub014/internal/value"
)

// DefId identifies one named definition. Ids are allocated from a
// monotonic counter; 0 is reserved and never assigned.
type DefId uint64

// Entry is one registry row: the definition's id, current value, and
// the cell that last defined it.
type Entry struct {
	ID   DefId
	Val  value.Value
	Cell string
}

// Registry maps definition names to entries and supports copy-on-write
// snapshots: a snapshot copies the name→entry map while sharing the
// underlying values by reference.
type Registry struct {
	mu       sync.RWMutex
	names    map[string]Entry
	nextID   uint64
	freeList []DefId
	memory   uint64
}

func NewRegistry() *Registry {
	return &Registry{names: map[string]Entry{}}
}

// Define inserts or replaces name. A replacement keeps the existing
// DefId so downstream provenance stays stable; the bool reports
// whether the stored value actually changed (structural equality).
func (r *Registry) Define(name string, v value.Value, cell string) (DefId, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.names[name]; ok {
		changed := !value.Equal(old.Val, v)
		r.names[name] = Entry{ID: old.ID, Val: v, Cell: cell}
		if changed {
			r.memory += approxSize(v)
		}
		return old.ID, changed
	}
	r.nextID++
	id := DefId(r.nextID)
	r.names[name] = Entry{ID: id, Val: v, Cell: cell}
	r.memory += approxSize(v)
	return id, true
}

// Get returns the entry bound to name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.names[name]
	return e, ok
}

// Has reports whether name is defined.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns all defined names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	return out
}

// Entries returns a copy of the full name→entry map.
func (r *Registry) Entries() map[string]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Entry, len(r.names))
	for k, v := range r.names {
		out[k] = v
	}
	return out
}

// snapshot captures the current registry state for checkpointing. The
// map is copied; values are shared by reference (copy-on-write).
type snapshot struct {
	names  map[string]Entry
	nextID uint64
}

func (r *Registry) snapshot() snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make(map[string]Entry, len(r.names))
	for k, v := range r.names {
		names[k] = v
	}
	return snapshot{names: names, nextID: r.nextID}
}

// restore reverts the registry to a snapshot. The snapshot's map is
// copied again on restore, so restoring the same handle twice yields
// the same state as restoring it once.
func (r *Registry) restore(s snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, e := range r.names {
		if _, kept := s.names[name]; !kept {
			r.freeList = append(r.freeList, e.ID)
		}
	}
	names := make(map[string]Entry, len(s.names))
	for k, v := range s.names {
		names[k] = v
	}
	r.names = names
	if s.nextID > r.nextID {
		r.nextID = s.nextID
	}
}

// CompactFreeList drops retired ids accumulated by restores; safe to
// call at any idle point, repeatedly.
func (r *Registry) CompactFreeList() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.freeList)
	r.freeList = nil
	return n
}

// Memory returns the monotone allocation tally.
func (r *Registry) Memory() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.memory
}

func (r *Registry) setMemory(n uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memory = n
}

// approxSize estimates a value's footprint for the session's memory
// counter; precision is not a goal, monotonicity is.
func approxSize(v value.Value) uint64 {
	if v == nil {
		return 0
	}
	return uint64(len(v.Inspect())) + 16
}
