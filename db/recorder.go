// ABOUTME: RefreshRecorder implementation backed by the sync-state tables
// ABOUTME: Lets the scheduler leave an auditable trail for the status command
package db

import (
	"database/sql"
	"log"

	"github.com/oklog/ulid/v2"
)

// Recorder persists refresh outcomes. Recording failures are logged and
// swallowed: bookkeeping must never break a refresh pass.
type Recorder struct {
	db *sql.DB
}

func NewRecorder(database *sql.DB) *Recorder {
	return &Recorder{db: database}
}

// RecordRefresh implements engine.RefreshRecorder.
func (r *Recorder) RecordRefresh(collection string, refreshErr error) {
	if refreshErr == nil {
		if err := RecordRefreshOK(r.db, collection); err != nil {
			log.Printf("sync-state: %v", err)
		}
		if err := LogRefresh(r.db, ulid.Make().String(), collection, "ok", nil); err != nil {
			log.Printf("sync-state: %v", err)
		}
		return
	}

	message := refreshErr.Error()
	if err := RecordRefreshError(r.db, collection, message); err != nil {
		log.Printf("sync-state: %v", err)
	}
	if err := LogRefresh(r.db, ulid.Make().String(), collection, "error", &message); err != nil {
		log.Printf("sync-state: %v", err)
	}
}
