// ABOUTME: Persistent snapshot store interface and fixed view keys
// ABOUTME: Local mirrors of server-owned collections that survive restarts
package store

import (
	"encoding/json"
	"log"
)

// Snapshot keys, one per tracked view. Process-wide constants, not
// session-scoped: a logout must clear them explicitly.
const (
	KeyConversationsSidebar = "conversations-sidebar-view"
	KeyConversationsList    = "conversations-list-view"
	KeyCampaigns            = "campaigns"
	KeyCredits              = "credits"
	KeyDashboard            = "dashboard"
)

// Store mirrors the last-known-good snapshot of each tracked collection.
// It is a continuity optimization, never a source of truth: the network
// always wins, so reads never fail visibly and writes are fire-and-forget.
type Store interface {
	// Read returns the stored snapshot for key. A missing or corrupt entry
	// yields ok=false, which callers treat identically to a cold start.
	Read(key string) (data []byte, ok bool)

	// Write persists a snapshot. Failures are logged and swallowed.
	Write(key string, data []byte)

	// Delete removes a single key.
	Delete(key string)

	// Clear wipes every snapshot (logout / new session).
	Clear() error

	Close() error
}

// ReadJSON reads and decodes a snapshot. Corrupt entries are discarded
// as if absent.
func ReadJSON[T any](s Store, key string) (T, bool) {
	var v T
	data, ok := s.Read(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("store: discarding corrupt snapshot %q: %v", key, err)
		return v, false
	}
	return v, true
}

// WriteJSON encodes and persists a snapshot. Serialization failures are
// logged and swallowed, matching the store's write contract.
func WriteJSON(s Store, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("store: failed to encode snapshot %q: %v", key, err)
		return
	}
	s.Write(key, data)
}
