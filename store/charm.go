// ABOUTME: Charm KV-backed snapshot store with cloud sync
// ABOUTME: Optional backend that replicates snapshots through a charm server
package store

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/charm/kv"
)

const charmDBName = "rally"

// CharmStore keeps snapshots in charm cloud KV. Writes sync to the server
// when autoSync is enabled, which narrows (but does not close) the
// last-writer-wins window between devices.
type CharmStore struct {
	mu       sync.RWMutex
	kv       *kv.KV
	autoSync bool
}

// OpenCharm opens the charm KV database against the given host.
func OpenCharm(host string, autoSync bool) (*CharmStore, error) {
	// charm/kv reads the host from the environment.
	_ = os.Setenv("CHARM_HOST", host)

	db, err := kv.OpenWithDefaults(charmDBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	s := &CharmStore{kv: db, autoSync: autoSync}
	if autoSync {
		// Pull remote snapshots on startup; stale local data is fine.
		_ = db.Sync()
	}
	return s, nil
}

func (s *CharmStore) Read(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.kv.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *CharmStore) Write(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set([]byte(key), data); err != nil {
		log.Printf("store: charm write %q failed: %v", key, err)
		return
	}
	if s.autoSync {
		_ = s.kv.Sync()
	}
}

func (s *CharmStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete([]byte(key)); err != nil {
		log.Printf("store: charm delete %q failed: %v", key, err)
		return
	}
	if s.autoSync {
		_ = s.kv.Sync()
	}
}

func (s *CharmStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Reset(); err != nil {
		return fmt.Errorf("failed to reset charm kv: %w", err)
	}
	return nil
}

// Close is a no-op; charm/kv does not expose Close and the underlying
// badger instance is cleaned up on process exit.
func (s *CharmStore) Close() error { return nil }

// Sync performs a manual sync with the charm server.
func (s *CharmStore) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Sync()
}
