// Package store provides byte stores for serialized snapshots.
//
// A [Store] maps string keys to opaque byte slices with an optional expiry.
// Backends:
//   - [NullStore]: stores nothing, for disabling persistence
//   - [MemoryStore]: in-process map, for tests and the HTTP service in dev mode
//   - [FileStore]: sharded JSON entry files, for CLI usage
//   - [RedisStore]: Redis, for shared multi-instance deployments
//   - [MongoStore]: MongoDB with a TTL index on expires_at
//
// [CompressedStore] wraps any backend with snappy block compression.
//
// Keys are produced by a [Keyer]; [ScopedKeyer] adds a tenant prefix.
// Backends that can enumerate their keys implement [Lister].
//
// All backends are safe for concurrent use. Transport failures from the
// network backends are marked [Retryable] so callers can use
// [RetryWithBackoff].
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store is a key/value byte store with optional expiry.
type Store interface {
	// Get returns the stored bytes and whether the key was present and
	// unexpired. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	// Keys returns the unexpired keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// DefaultDir returns the default FileStore directory,
// ~/.cache/objgraph/snapshots.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("get cache dir: %w", err)
		}
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "objgraph", "snapshots"), nil
}
