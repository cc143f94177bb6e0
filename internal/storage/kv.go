package storage

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// KVEngine defines the interface for embedded key-value storage.
//
// Implementations must be safe for concurrent use and must make a Set
// durable before returning, so a later process observes it.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Close releases the engine.
	Close() error
}

// KVConfig configures the on-disk engine.
type KVConfig struct {
	// Dir is the storage directory.
	Dir string

	// InMemory runs Badger without touching disk. Dir is ignored.
	InMemory bool

	// GCInterval is the interval between value log GC runs.
	// Empty disables the background loop.
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB; the session record is tiny.
	ValueLogFileSize int64

	// SyncWrites fsyncs after each write.
	// Default: true, a committed session must survive a crash.
	SyncWrites bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Dir:              dir,
		GCThreshold:      0.5,
		ValueLogFileSize: 16 << 20,
		SyncWrites:       true,
	}
}
