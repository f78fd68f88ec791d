// ABOUTME: In-memory authoritative registry for one entity collection
// ABOUTME: Reconciles server fetches against pending deletions and mirrors to the snapshot store
package engine

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/rallyhq/rally/models"
	"github.com/rallyhq/rally/store"
)

// Registry holds the in-memory authoritative list for one tracked view of
// an entity collection. The snapshot store mirrors whatever the registry
// last accepted; it never overrides memory.
type Registry[E models.Entity] struct {
	typ     models.EntityType
	key     string
	cap     int // 0 = unbounded; the sidebar view keeps a bounded slice
	store   store.Store
	pending *PendingTracker

	mu       sync.RWMutex
	items    []E
	hydrated bool
}

// NewRegistry creates an empty registry mirrored at the given snapshot key.
// A positive cap bounds the list after every reconcile (sidebar views).
func NewRegistry[E models.Entity](typ models.EntityType, key string, st store.Store, pending *PendingTracker, cap int) *Registry[E] {
	return &Registry[E]{typ: typ, key: key, cap: cap, store: st, pending: pending}
}

// Hydrate loads the persisted snapshot, if any, as the initial in-memory
// value so the UI can render immediately while a background fetch runs.
// Missing or corrupt snapshots leave the registry cold.
func (r *Registry[E]) Hydrate() bool {
	data, ok := r.store.Read(r.key)
	if !ok {
		return false
	}
	var items []E
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("registry %s: discarding corrupt snapshot %q: %v", r.typ, r.key, err)
		return false
	}

	r.mu.Lock()
	r.items = dedupe(items, r.cap)
	r.hydrated = true
	r.mu.Unlock()
	return true
}

// Hydrated reports whether the registry holds a usable list (from snapshot
// or from a completed reconcile).
func (r *Registry[E]) Hydrated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hydrated
}

// List returns a copy of the current list, server order preserved.
func (r *Registry[E]) List() []E {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]E, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the current list length.
func (r *Registry[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Get returns the entity with the given id, if present.
func (r *Registry[E]) Get(id int) (E, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.items {
		if e.EntityID() == id {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// Reconcile replaces the list with serverList, minus any id whose delete is
// still in flight. The filter is the step that stops a stale fetch from
// resurrecting a row the user just deleted. The server response is
// authoritative for every field it returns; nothing is merged field-by-field
// with the previous value. The result is mirrored to the snapshot store.
func (r *Registry[E]) Reconcile(serverList []E) {
	filtered := make([]E, 0, len(serverList))
	seen := make(map[int]struct{}, len(serverList))
	for _, e := range serverList {
		id := e.EntityID()
		if r.pending.IsPending(r.typ, id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		filtered = append(filtered, e)
	}
	if r.cap > 0 && len(filtered) > r.cap {
		filtered = filtered[:r.cap]
	}

	r.mu.Lock()
	r.items = filtered
	r.hydrated = true
	r.mu.Unlock()

	r.persist()
}

// OptimisticRemove drops the entity with the given id ahead of server
// confirmation and rewrites the snapshot. The removed entity is returned
// so the caller can restore it on rollback.
func (r *Registry[E]) OptimisticRemove(id int) (E, bool) {
	r.mu.Lock()
	var removed E
	found := false
	for i, e := range r.items {
		if e.EntityID() == id {
			removed = e
			r.items = append(r.items[:i], r.items[i+1:]...)
			found = true
			break
		}
	}
	r.mu.Unlock()

	if found {
		r.persist()
	}
	return removed, found
}

// OptimisticRestore re-inserts a previously removed entity after a failed
// delete. Position is not a correctness concern; the next reconcile
// re-sorts from server order.
func (r *Registry[E]) OptimisticRestore(entity E) {
	r.mu.Lock()
	exists := false
	for _, e := range r.items {
		if e.EntityID() == entity.EntityID() {
			exists = true
			break
		}
	}
	if !exists {
		r.items = append(r.items, entity)
	}
	r.mu.Unlock()

	r.persist()
}

// Clear empties the registry without touching the snapshot store; logout
// clears the store wholesale.
func (r *Registry[E]) Clear() {
	r.mu.Lock()
	r.items = nil
	r.hydrated = false
	r.mu.Unlock()
}

func (r *Registry[E]) persist() {
	r.mu.RLock()
	snapshot := make([]E, len(r.items))
	copy(snapshot, r.items)
	r.mu.RUnlock()

	store.WriteJSON(r.store, r.key, snapshot)
}

func dedupe[E models.Entity](items []E, cap int) []E {
	out := make([]E, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for _, e := range items {
		if _, dup := seen[e.EntityID()]; dup {
			continue
		}
		seen[e.EntityID()] = struct{}{}
		out = append(out, e)
	}
	if cap > 0 && len(out) > cap {
		out = out[:cap]
	}
	return out
}
