// ABOUTME: Shared command wiring for the rally CLI
// ABOUTME: Builds the store, API client, sync-state database, and engine
package cli

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/rallyhq/rally/api"
	"github.com/rallyhq/rally/config"
	"github.com/rallyhq/rally/db"
	"github.com/rallyhq/rally/engine"
	"github.com/rallyhq/rally/store"
)

// App carries the wired-up dependencies every command works against.
type App struct {
	Config *config.Config
	Store  store.Store
	DB     *sql.DB
	Client *api.Client
	Engine *engine.SyncEngine
	Focus  chan struct{}
}

// sessionNotice is the auth layer the engine delegates to on 401: it
// clears the stale token and local snapshots and tells the user to log
// in again. The engine itself never touches auth state.
type sessionNotice struct {
	app *App
}

func (n *sessionNotice) SessionExpired() {
	log.Println("session expired: run 'rally login' to authenticate again")
	if err := api.ClearToken(); err != nil {
		log.Printf("warning: failed to clear token: %v", err)
	}
	if n.app != nil {
		if err := n.app.Engine.Reset(); err != nil {
			log.Printf("warning: failed to clear local snapshots: %v", err)
		}
	}
}

// NewApp loads config and wires every component. The caller owns Close.
func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	database, err := db.OpenDatabase(db.DefaultPath())
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to open sync-state database: %w", err)
	}

	client := api.NewClient(cfg.APIURL, api.WithTokenSource(api.TokenValue))

	notice := &sessionNotice{}
	focus := make(chan struct{}, 1)
	eng := engine.New(client, st, engine.Options{
		Interval:   cfg.RefreshInterval,
		SidebarCap: cfg.SidebarCap,
		Focus:      focus,
		Recorder:   db.NewRecorder(database),
		Session:    notice,
	})
	eng.Hydrate()

	app := &App{
		Config: cfg,
		Store:  st,
		DB:     database,
		Client: client,
		Engine: eng,
		Focus:  focus,
	}
	notice.app = app
	return app, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendCharm:
		return store.OpenCharm(cfg.CharmHost, cfg.CharmAutoSync)
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendBadger, "":
		return store.OpenBadger(store.DefaultBadgerPath())
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

// Close releases everything NewApp opened.
func (a *App) Close() {
	a.Engine.Shutdown()
	if err := a.Store.Close(); err != nil {
		log.Printf("warning: snapshot store close failed: %v", err)
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("warning: database close failed: %v", err)
	}
}
