// ABOUTME: Persisted "last synced at" marker that drives the staleness gate.
// ABOUTME: BadgerStore keeps it in a local badger KV; MemoryStore is for tests.
package syncstate

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v3"
)

const lastRefreshKey = "last_data_refresh"

// Store records when the schedule cache was last refreshed from remote.
type Store interface {
	// LastSync returns the recorded time and whether one exists.
	LastSync() (time.Time, bool, error)
	SetLastSync(t time.Time) error
	Reset() error
	Close() error
}

// BadgerStore persists sync state in a badger database.
type BadgerStore struct {
	db *badger.DB
}

// Compile-time check that BadgerStore implements Store.
var _ Store = (*BadgerStore)(nil)

// OpenBadger opens or creates the state database in dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return openBadger(badger.DefaultOptions(dir))
}

// OpenInMemory opens a badger store that lives only as long as the process.
func OpenInMemory() (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// LastSync returns the last recorded refresh time.
func (s *BadgerStore) LastSync() (time.Time, bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lastRefreshKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read last sync: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last sync: %w", err)
	}
	return t, true, nil
}

// SetLastSync records t as the last refresh time.
func (s *BadgerStore) SetLastSync(t time.Time) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(lastRefreshKey), []byte(t.UTC().Format(time.RFC3339Nano)))
	})
	if err != nil {
		return fmt.Errorf("write last sync: %w", err)
	}
	return nil
}

// Reset forgets the last refresh time.
func (s *BadgerStore) Reset() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(lastRefreshKey))
	})
	if err != nil {
		return fmt.Errorf("reset last sync: %w", err)
	}
	return nil
}

// Close closes the badger database.
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// MemoryStore keeps sync state in memory.
type MemoryStore struct {
	mu   sync.Mutex
	last time.Time
	set  bool
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LastSync() (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.set, nil
}

func (m *MemoryStore) SetLastSync(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last, m.set = t, true
	return nil
}

func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last, m.set = time.Time{}, false
	return nil
}

func (m *MemoryStore) Close() error { return nil }
