package port

import "context"

// KVStore is the durable key-value collaborator backing the test store. It is
// an outbound port; implementations wrap PostgreSQL, SQLite or memory.
// Implementations must be safe for concurrent use, although callers do not
// get read-modify-write atomicity across Get and Put.
type KVStore interface {
	// Get returns the value stored under key, or nil and no error when the
	// key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}
