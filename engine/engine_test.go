package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rallyhq/rally/api"
	"github.com/rallyhq/rally/models"
	"github.com/rallyhq/rally/store"
)

// fakeAPI is an in-memory stand-in for the remote backend.
type fakeAPI struct {
	mu            sync.Mutex
	conversations []models.Conversation
	campaigns     []models.Campaign
	credits       models.Credits
	dashboard     models.DashboardStats

	listErr   error
	deleteErr error

	deleteCalls atomic.Int32
	deleteGate  chan struct{} // when set, deletes block until closed

	listCalls atomic.Int32
	listGate  chan struct{} // when set, conversation lists block until closed
}

func (f *fakeAPI) setConversations(items []models.Conversation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conversations = items
}

func (f *fakeAPI) setCampaigns(items []models.Campaign) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns = items
}

func (f *fakeAPI) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Conversation, len(f.conversations))
	copy(out, f.conversations)
	return out, nil
}

func (f *fakeAPI) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Campaign, len(f.campaigns))
	copy(out, f.campaigns)
	return out, nil
}

func (f *fakeAPI) FetchCredits(ctx context.Context) (*models.Credits, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	credits := f.credits
	return &credits, nil
}

func (f *fakeAPI) FetchDashboard(ctx context.Context) (*models.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	dashboard := f.dashboard
	return &dashboard, nil
}

func (f *fakeAPI) doDelete(ctx context.Context) error {
	f.deleteCalls.Add(1)
	f.mu.Lock()
	gate := f.deleteGate
	err := f.deleteErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeAPI) DeleteConversation(ctx context.Context, id int) error { return f.doDelete(ctx) }
func (f *fakeAPI) DeleteCampaign(ctx context.Context, id int) error    { return f.doDelete(ctx) }

type expiredFlag struct{ fired atomic.Bool }

func (e *expiredFlag) SessionExpired() { e.fired.Store(true) }

func newTestEngine(t *testing.T, remote *fakeAPI, opts Options) (*SyncEngine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	if opts.Interval == 0 {
		opts.Interval = time.Hour
	}
	return New(remote, st, opts), st
}

func TestHydrateThenReconcile(t *testing.T) {
	remote := &fakeAPI{}
	remote.setConversations([]models.Conversation{conv(1, "fresh")})

	st := store.NewMemoryStore()
	store.WriteJSON(st, store.KeyConversationsList, []models.Conversation{conv(9, "stale")})
	store.WriteJSON(st, store.KeyConversationsSidebar, []models.Conversation{conv(9, "stale")})

	e := New(remote, st, Options{Interval: time.Hour})
	e.Hydrate()

	// Stale snapshot renders immediately.
	items := e.Conversations.List()
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].ID)

	// Background fetch replaces it with server truth.
	require.NoError(t, e.RefreshNow(context.Background(), TargetConversations))
	items = e.Conversations.List()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 1, e.Sidebar.Len(), "one fetch feeds both conversation views")
}

func TestRefreshDashboardPersistsBothDocuments(t *testing.T) {
	remote := &fakeAPI{
		credits:   models.Credits{Balance: 42},
		dashboard: models.DashboardStats{TotalCampaigns: 3},
	}
	e, _ := newTestEngine(t, remote, Options{})

	require.NoError(t, e.RefreshNow(context.Background(), TargetDashboard))

	credits, ok := e.Credits()
	require.True(t, ok)
	assert.Equal(t, 42, credits.Balance)

	dashboard, ok := e.Dashboard()
	require.True(t, ok)
	assert.Equal(t, 3, dashboard.TotalCampaigns)
}

func TestUnauthorizedNotifiesSessionHandler(t *testing.T) {
	remote := &fakeAPI{listErr: api.ClassifyStatus(401, "token expired")}
	expired := &expiredFlag{}
	e, _ := newTestEngine(t, remote, Options{Session: expired})

	err := e.RefreshNow(context.Background(), TargetConversations)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.True(t, expired.fired.Load())
}

func TestSilentRefreshKeepsLastSnapshotOnFailure(t *testing.T) {
	remote := &fakeAPI{}
	remote.setCampaigns([]models.Campaign{{ID: 1, Name: "Keep me"}})
	e, _ := newTestEngine(t, remote, Options{})

	require.NoError(t, e.RefreshNow(context.Background(), TargetCampaigns))
	require.Equal(t, 1, e.Campaigns.Len())

	remote.mu.Lock()
	remote.listErr = &api.Fault{Kind: api.FaultServerError, Status: 500, Err: assert.AnError}
	remote.mu.Unlock()

	e.Scheduler.Kick(TargetCampaigns)
	e.Scheduler.Stop()

	assert.Equal(t, 1, e.Campaigns.Len(), "failed silent refresh must retain the last good list")
}

func TestResetClearsEverything(t *testing.T) {
	remote := &fakeAPI{}
	remote.setConversations([]models.Conversation{conv(1, "a")})
	remote.setCampaigns([]models.Campaign{{ID: 2, Name: "b"}})
	e, st := newTestEngine(t, remote, Options{})

	require.NoError(t, e.RefreshNow(context.Background(), TargetAll))
	require.NotZero(t, e.Conversations.Len())

	require.NoError(t, e.Reset())

	assert.Zero(t, e.Conversations.Len())
	assert.Zero(t, e.Sidebar.Len())
	assert.Zero(t, e.Campaigns.Len())
	_, ok := st.Read(store.KeyConversationsList)
	assert.False(t, ok, "Reset must wipe persisted snapshots")
}

func TestForegroundRefreshDroppedWhileSilentPassOutstanding(t *testing.T) {
	remote := &fakeAPI{listGate: make(chan struct{})}
	remote.setConversations([]models.Conversation{conv(1, "a")})
	e, _ := newTestEngine(t, remote, Options{})

	e.Scheduler.Kick(TargetConversations)
	require.Eventually(t, func() bool { return remote.listCalls.Load() == 1 },
		time.Second, time.Millisecond)

	// The silent fetch is still blocked; a foreground refresh for the same
	// target must not start a second one.
	require.NoError(t, e.RefreshNow(context.Background(), TargetConversations))
	assert.Equal(t, int32(1), remote.listCalls.Load())

	close(remote.listGate)
	e.Scheduler.Stop()

	assert.Equal(t, 1, e.Conversations.Len(), "the outstanding pass's result still lands")
}

func TestStartIssuesInitialFetch(t *testing.T) {
	remote := &fakeAPI{}
	remote.setConversations([]models.Conversation{conv(1, "a")})
	e, _ := newTestEngine(t, remote, Options{})

	e.Start()
	defer e.Shutdown()

	require.Eventually(t, func() bool { return e.Conversations.Len() == 1 },
		time.Second, 5*time.Millisecond)
}
