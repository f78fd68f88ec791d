// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_state (
	collection TEXT PRIMARY KEY,
	last_refresh_time DATETIME,
	status TEXT CHECK(status IN ('idle', 'refreshing', 'error')),
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS refresh_log (
	id TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	refreshed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	status TEXT NOT NULL CHECK(status IN ('ok', 'error')),
	error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_refresh_log_collection ON refresh_log(collection);
CREATE INDEX IF NOT EXISTS idx_refresh_log_refreshed_at ON refresh_log(refreshed_at DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
