// ABOUTME: Database operations for sync_state and refresh_log tables
// ABOUTME: Tracks per-collection refresh outcomes for the status command
package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SyncState is the recorded refresh state for one tracked collection.
type SyncState struct {
	Collection      string
	LastRefreshTime *time.Time
	Status          string
	ErrorMessage    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GetSyncState retrieves the sync state for a collection. Returns nil when
// the collection has never refreshed.
func GetSyncState(db *sql.DB, collection string) (*SyncState, error) {
	var state SyncState
	var lastRefresh sql.NullTime
	var errorMessage sql.NullString

	err := db.QueryRow(`
		SELECT collection, last_refresh_time, status, error_message, created_at, updated_at
		FROM sync_state
		WHERE collection = ?
	`, collection).Scan(
		&state.Collection,
		&lastRefresh,
		&state.Status,
		&errorMessage,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if lastRefresh.Valid {
		state.LastRefreshTime = &lastRefresh.Time
	}
	if errorMessage.Valid {
		state.ErrorMessage = &errorMessage.String
	}

	return &state, nil
}

// RecordRefreshOK marks a collection as freshly refreshed.
func RecordRefreshOK(db *sql.DB, collection string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (collection, last_refresh_time, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(collection) DO UPDATE SET
			last_refresh_time = CURRENT_TIMESTAMP,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, collection)

	if err != nil {
		return fmt.Errorf("failed to record refresh: %w", err)
	}
	return nil
}

// RecordRefreshError marks a collection's last refresh as failed without
// touching last_refresh_time: the snapshot on screen is still the one from
// the last successful pass.
func RecordRefreshError(db *sql.DB, collection, message string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (collection, status, error_message, created_at, updated_at)
		VALUES (?, 'error', ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(collection) DO UPDATE SET
			status = 'error',
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, collection, message)

	if err != nil {
		return fmt.Errorf("failed to record refresh error: %w", err)
	}
	return nil
}

// LogRefresh appends a refresh_log entry.
func LogRefresh(db *sql.DB, id, collection, status string, errorMessage *string) error {
	var msg sql.NullString
	if errorMessage != nil {
		msg = sql.NullString{String: *errorMessage, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO refresh_log (id, collection, refreshed_at, status, error_message)
		VALUES (?, ?, CURRENT_TIMESTAMP, ?, ?)
	`, id, collection, status, msg)

	if err != nil {
		return fmt.Errorf("failed to log refresh: %w", err)
	}
	return nil
}

// GetAllSyncStates retrieves the sync state for every tracked collection.
func GetAllSyncStates(db *sql.DB) ([]SyncState, error) {
	rows, err := db.Query(`
		SELECT collection, last_refresh_time, status, error_message, created_at, updated_at
		FROM sync_state
		ORDER BY collection
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []SyncState
	for rows.Next() {
		var state SyncState
		var lastRefresh sql.NullTime
		var errorMessage sql.NullString

		err := rows.Scan(
			&state.Collection,
			&lastRefresh,
			&state.Status,
			&errorMessage,
			&state.CreatedAt,
			&state.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}

		if lastRefresh.Valid {
			state.LastRefreshTime = &lastRefresh.Time
		}
		if errorMessage.Valid {
			state.ErrorMessage = &errorMessage.String
		}

		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync states: %w", err)
	}

	return states, nil
}
