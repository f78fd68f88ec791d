// ABOUTME: Pending-deletion tracking for in-flight destructive mutations
// ABOUTME: Ids marked here must not reappear through a concurrent reconcile
package engine

import (
	"sync"

	"github.com/rallyhq/rally/models"
)

// PendingTracker holds, per entity type, the set of ids currently under an
// in-flight delete. An id enters the set the instant a delete is initiated
// and leaves only when that delete call terminates, success or failure.
// The tracker is in-memory only: a restart mid-delete may let the entity
// reappear once, and the next reconcile after the server processes the
// delete corrects it.
type PendingTracker struct {
	mu  sync.Mutex
	ids map[models.EntityType]map[int]struct{}
}

func NewPendingTracker() *PendingTracker {
	return &PendingTracker{ids: make(map[models.EntityType]map[int]struct{})}
}

// Mark records an in-flight delete for id. It returns false when the id
// was already pending, in which case the caller must not issue another
// delete for it.
func (t *PendingTracker) Mark(typ models.EntityType, id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.ids[typ]
	if !ok {
		set = make(map[int]struct{})
		t.ids[typ] = set
	}
	if _, exists := set[id]; exists {
		return false
	}
	set[id] = struct{}{}
	return true
}

// Unmark clears the in-flight record for id.
func (t *PendingTracker) Unmark(typ models.EntityType, id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if set, ok := t.ids[typ]; ok {
		delete(set, id)
	}
}

// IsPending reports whether id has an unresolved delete.
func (t *PendingTracker) IsPending(typ models.EntityType, id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.ids[typ][id]
	return ok
}

// Pending returns the ids currently marked for a type.
func (t *PendingTracker) Pending(typ models.EntityType) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]int, 0, len(t.ids[typ]))
	for id := range t.ids[typ] {
		out = append(out, id)
	}
	return out
}
