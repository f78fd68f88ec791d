package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rallyhq/rally/models"
	"github.com/rallyhq/rally/store"
)

func conv(id int, title string) models.Conversation {
	return models.Conversation{ID: id, Title: title}
}

func newConvRegistry(t *testing.T, cap int) (*Registry[models.Conversation], *PendingTracker, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	pending := NewPendingTracker()
	r := NewRegistry[models.Conversation](models.TypeConversations, store.KeyConversationsList, st, pending, cap)
	return r, pending, st
}

func TestReconcileReplacesList(t *testing.T) {
	r, _, _ := newConvRegistry(t, 0)
	r.Reconcile([]models.Conversation{conv(3, "c"), conv(2, "b"), conv(1, "a")})

	items := r.List()
	require.Len(t, items, 3)
	assert.Equal(t, 3, items[0].ID, "server order is preserved")
	assert.True(t, r.Hydrated())
}

func TestReconcileFiltersPendingDeletes(t *testing.T) {
	// P1: an id in the pending set never survives a reconcile, no matter
	// what the fetched payload contains.
	r, pending, _ := newConvRegistry(t, 0)
	pending.Mark(models.TypeConversations, 2)

	r.Reconcile([]models.Conversation{conv(1, "a"), conv(2, "b"), conv(3, "c")})

	for _, item := range r.List() {
		assert.NotEqual(t, 2, item.ID)
	}
	assert.Equal(t, 2, r.Len())
}

func TestStaleReconcileDoesNotResurrect(t *testing.T) {
	// Scenario A: delete id 2, then a stale pre-delete fetch lands while
	// the delete is still pending.
	r, pending, _ := newConvRegistry(t, 0)
	r.Reconcile([]models.Conversation{conv(1, "a"), conv(2, "b"), conv(3, "c")})

	pending.Mark(models.TypeConversations, 2)
	removed, ok := r.OptimisticRemove(2)
	require.True(t, ok)
	assert.Equal(t, "b", removed.Title)

	r.Reconcile([]models.Conversation{conv(1, "a"), conv(2, "b"), conv(3, "c")})

	items := r.List()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 3, items[1].ID)
}

func TestReconcileDropsDuplicateIDs(t *testing.T) {
	r, _, _ := newConvRegistry(t, 0)
	r.Reconcile([]models.Conversation{conv(1, "first"), conv(1, "dup"), conv(2, "b")})

	items := r.List()
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Title)
}

func TestReconcileRespectsCap(t *testing.T) {
	r, _, _ := newConvRegistry(t, 2)
	r.Reconcile([]models.Conversation{conv(1, "a"), conv(2, "b"), conv(3, "c")})

	assert.Equal(t, 2, r.Len())
}

func TestSnapshotMirrorsMemory(t *testing.T) {
	// P5: after any mutation the persisted snapshot equals the in-memory
	// list.
	r, pending, st := newConvRegistry(t, 0)

	checkMirror := func() {
		t.Helper()
		snapshot, ok := store.ReadJSON[[]models.Conversation](st, store.KeyConversationsList)
		require.True(t, ok)
		assert.Equal(t, r.List(), snapshot)
	}

	r.Reconcile([]models.Conversation{conv(1, "a"), conv(2, "b")})
	checkMirror()

	pending.Mark(models.TypeConversations, 1)
	removed, _ := r.OptimisticRemove(1)
	checkMirror()

	pending.Unmark(models.TypeConversations, 1)
	r.OptimisticRestore(removed)
	checkMirror()
}

func TestOptimisticRemoveAbsentID(t *testing.T) {
	r, _, _ := newConvRegistry(t, 0)
	r.Reconcile([]models.Conversation{conv(1, "a")})

	_, ok := r.OptimisticRemove(99)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestOptimisticRestoreIsIdempotent(t *testing.T) {
	r, _, _ := newConvRegistry(t, 0)
	r.Reconcile([]models.Conversation{conv(1, "a")})

	r.OptimisticRestore(conv(2, "b"))
	r.OptimisticRestore(conv(2, "b"))

	assert.Equal(t, 2, r.Len())
}

func TestHydrateFromSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	pending := NewPendingTracker()
	store.WriteJSON(st, store.KeyConversationsList, []models.Conversation{conv(5, "persisted")})

	r := NewRegistry[models.Conversation](models.TypeConversations, store.KeyConversationsList, st, pending, 0)
	require.True(t, r.Hydrate())
	assert.True(t, r.Hydrated())

	items := r.List()
	require.Len(t, items, 1)
	assert.Equal(t, "persisted", items[0].Title)
}

func TestHydrateReappliesCap(t *testing.T) {
	// An oversized snapshot (written before the cap shrank, or by
	// another device) must be trimmed on load, not just on reconcile.
	st := store.NewMemoryStore()
	pending := NewPendingTracker()
	store.WriteJSON(st, store.KeyConversationsList, []models.Conversation{
		conv(1, "a"), conv(2, "b"), conv(3, "c"), conv(4, "d"),
	})

	r := NewRegistry[models.Conversation](models.TypeConversations, store.KeyConversationsList, st, pending, 2)
	require.True(t, r.Hydrate())

	items := r.List()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 2, items[1].ID)
}

func TestHydrateColdStart(t *testing.T) {
	r, _, _ := newConvRegistry(t, 0)
	assert.False(t, r.Hydrate())
	assert.False(t, r.Hydrated())
	assert.Zero(t, r.Len())
}

func TestHydrateCorruptSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	st.Write(store.KeyConversationsList, []byte(`{{{garbage`))
	pending := NewPendingTracker()

	r := NewRegistry[models.Conversation](models.TypeConversations, store.KeyConversationsList, st, pending, 0)
	assert.False(t, r.Hydrate(), "corrupt snapshot must behave like a cold start")
	assert.False(t, r.Hydrated())
}

func TestClearEmptiesRegistryOnly(t *testing.T) {
	r, _, st := newConvRegistry(t, 0)
	r.Reconcile([]models.Conversation{conv(1, "a")})

	r.Clear()

	assert.Zero(t, r.Len())
	assert.False(t, r.Hydrated())
	_, ok := st.Read(store.KeyConversationsList)
	assert.True(t, ok, "Clear must not touch the snapshot store")
}
