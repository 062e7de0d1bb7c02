package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/buntdb"
)

// BuntStore implements Store on top of an embedded BuntDB file.
type BuntStore struct {
	db *buntdb.DB
}

// Open opens (or creates) the BuntDB file at path. Writes are synced to
// disk on every Set so a crash never loses an acknowledged update.
func Open(path string) (*BuntStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open buntdb: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{SyncPolicy: buntdb.Always}); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure buntdb: %w", err)
	}

	return &BuntStore{db: db}, nil
}

// OpenMemory returns a Store backed by an in-memory BuntDB. Used as the
// fallback when the on-disk file cannot be opened: reads and writes keep
// working for the lifetime of the process, nothing survives exit.
func OpenMemory() (*BuntStore, error) {
	return Open(":memory:")
}

// Get returns the record stored under key, or found=false on a miss.
func (s *BuntStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set durably writes value under key.
func (s *BuntStore) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(value), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BuntStore) Close() error {
	return s.db.Close()
}
