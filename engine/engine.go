// ABOUTME: SyncEngine dependency-injection root
// ABOUTME: Owns registries, pending tracker, bus, scheduler, and delete orchestration
package engine

import (
	"context"
	"time"

	"github.com/rallyhq/rally/api"
	"github.com/rallyhq/rally/models"
	"github.com/rallyhq/rally/store"
)

// DefaultSidebarCap bounds the persistent sidebar's conversation slice.
const DefaultSidebarCap = 20

// API is the remote collaborator surface the engine depends on.
type API interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	FetchCredits(ctx context.Context) (*models.Credits, error)
	FetchDashboard(ctx context.Context) (*models.DashboardStats, error)
	Deleter
}

// SessionHandler is notified when the backend rejects the current token.
// The engine never retries an unauthorized call; session recovery is the
// host's concern.
type SessionHandler interface {
	SessionExpired()
}

// Options configures a SyncEngine. Zero values pick defaults.
type Options struct {
	Interval   time.Duration
	SidebarCap int
	Focus      <-chan struct{}
	Recorder   RefreshRecorder
	Session    SessionHandler
}

// SyncEngine keeps every on-screen view of the conversation and campaign
// collections consistent: it hydrates from the snapshot store, refreshes
// silently in the background, applies destructive mutations optimistically,
// and keeps a stale fetch from resurrecting a just-deleted entity.
type SyncEngine struct {
	remote  API
	store   store.Store
	session SessionHandler

	Pending       *PendingTracker
	Bus           *Bus
	Sidebar       *Registry[models.Conversation]
	Conversations *Registry[models.Conversation]
	Campaigns     *Registry[models.Campaign]
	Scheduler     *Scheduler
	Deletes       *DeleteOrchestrator
}

// New constructs an engine over the given API client and snapshot store.
func New(remote API, st store.Store, opts Options) *SyncEngine {
	if opts.SidebarCap <= 0 {
		opts.SidebarCap = DefaultSidebarCap
	}

	pending := NewPendingTracker()
	bus := NewBus()

	e := &SyncEngine{
		remote:  remote,
		store:   st,
		session: opts.Session,
		Pending: pending,
		Bus:     bus,
	}

	e.Sidebar = NewRegistry[models.Conversation](
		models.TypeConversations, store.KeyConversationsSidebar, st, pending, opts.SidebarCap)
	e.Conversations = NewRegistry[models.Conversation](
		models.TypeConversations, store.KeyConversationsList, st, pending, 0)
	e.Campaigns = NewRegistry[models.Campaign](
		models.TypeCampaigns, store.KeyCampaigns, st, pending, 0)

	e.Scheduler = NewScheduler(opts.Interval, bus, opts.Focus, opts.Recorder)
	e.Scheduler.Register(TargetConversations, e.refreshConversations)
	e.Scheduler.Register(TargetCampaigns, e.refreshCampaigns)
	e.Scheduler.Register(TargetDashboard, e.refreshDashboard)

	e.Deletes = NewDeleteOrchestrator(remote, pending, bus, st,
		e.Sidebar, e.Conversations, e.Campaigns)

	return e
}

// Hydrate loads persisted snapshots into every registry so views can
// render immediately. Cold registries stay empty until the first fetch.
func (e *SyncEngine) Hydrate() {
	e.Sidebar.Hydrate()
	e.Conversations.Hydrate()
	e.Campaigns.Hydrate()
}

// Start launches the scheduler and issues the initial background fetch.
func (e *SyncEngine) Start() {
	e.Scheduler.Start()
	e.Scheduler.KickAll()
}

// Shutdown stops background work. The snapshot store is owned by the
// caller and stays open.
func (e *SyncEngine) Shutdown() {
	e.Scheduler.Stop()
	e.Bus.Close()
}

// Reset clears all in-memory state and wipes the snapshot store; invoked
// on logout or an explicit new-session action.
func (e *SyncEngine) Reset() error {
	e.Sidebar.Clear()
	e.Conversations.Clear()
	e.Campaigns.Clear()
	return e.store.Clear()
}

// RefreshNow runs a foreground refresh for one target (or all) and returns
// the classified error for the caller to surface. User-initiated, unlike
// the scheduler's silent passes, but it shares their per-target overlap
// suppression: when a fetch for the target is already outstanding the call
// returns nil and the outstanding pass's result lands.
func (e *SyncEngine) RefreshNow(ctx context.Context, target Target) error {
	switch target {
	case TargetConversations:
		return e.runNow(ctx, TargetConversations, e.refreshConversations)
	case TargetCampaigns:
		return e.runNow(ctx, TargetCampaigns, e.refreshCampaigns)
	case TargetDashboard:
		return e.runNow(ctx, TargetDashboard, e.refreshDashboard)
	case TargetAll:
		if err := e.runNow(ctx, TargetConversations, e.refreshConversations); err != nil {
			return err
		}
		if err := e.runNow(ctx, TargetCampaigns, e.refreshCampaigns); err != nil {
			return err
		}
		return e.runNow(ctx, TargetDashboard, e.refreshDashboard)
	}
	return nil
}

func (e *SyncEngine) runNow(ctx context.Context, target Target, fn RefreshFunc) error {
	release, ok := e.Scheduler.acquire(target)
	if !ok {
		return nil
	}
	defer release()
	return fn(ctx)
}

// Credits returns the last-known credit balance, if any.
func (e *SyncEngine) Credits() (models.Credits, bool) {
	return store.ReadJSON[models.Credits](e.store, store.KeyCredits)
}

// Dashboard returns the last-known dashboard aggregate, if any.
func (e *SyncEngine) Dashboard() (models.DashboardStats, bool) {
	return store.ReadJSON[models.DashboardStats](e.store, store.KeyDashboard)
}

func (e *SyncEngine) refreshConversations(ctx context.Context) error {
	items, err := e.remote.ListConversations(ctx)
	if err != nil {
		return e.noteSession(err)
	}
	// One fetch feeds both conversation views.
	e.Conversations.Reconcile(items)
	e.Sidebar.Reconcile(items)
	return nil
}

func (e *SyncEngine) refreshCampaigns(ctx context.Context) error {
	items, err := e.remote.ListCampaigns(ctx)
	if err != nil {
		return e.noteSession(err)
	}
	e.Campaigns.Reconcile(items)
	return nil
}

func (e *SyncEngine) refreshDashboard(ctx context.Context) error {
	stats, err := e.remote.FetchDashboard(ctx)
	if err != nil {
		return e.noteSession(err)
	}
	store.WriteJSON(e.store, store.KeyDashboard, stats)

	credits, err := e.remote.FetchCredits(ctx)
	if err != nil {
		return e.noteSession(err)
	}
	store.WriteJSON(e.store, store.KeyCredits, credits)
	return nil
}

func (e *SyncEngine) noteSession(err error) error {
	if api.IsUnauthorized(err) && e.session != nil {
		e.session.SessionExpired()
	}
	return err
}
