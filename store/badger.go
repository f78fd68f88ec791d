// ABOUTME: Badger-backed snapshot store
// ABOUTME: Default persistent backend under the XDG data directory
package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v3"
)

// BadgerStore persists snapshots in a local badger database.
type BadgerStore struct {
	db *badger.DB
}

// DefaultBadgerPath returns the XDG-compliant location for the snapshot
// database.
func DefaultBadgerPath() string {
	return filepath.Join(xdg.DataHome, "rally", "snapshots")
}

// OpenBadger opens (creating if needed) a badger-backed store at path.
func OpenBadger(path string) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Read(key string) ([]byte, bool) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("store: read %q failed: %v", key, err)
		}
		return nil, false
	}
	return data, true
}

func (s *BadgerStore) Write(key string, data []byte) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		log.Printf("store: write %q failed: %v", key, err)
	}
}

func (s *BadgerStore) Delete(key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		log.Printf("store: delete %q failed: %v", key, err)
	}
}

func (s *BadgerStore) Clear() error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("failed to clear snapshot store: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
