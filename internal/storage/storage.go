package storage

import "context"

// Store is a durable key-value record store. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the value stored under key. The second return value is
	// false when no record exists; that is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set durably writes value under key. When Set returns nil the record
	// has been handed to the filesystem.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the underlying file handle.
	Close() error
}
