// Package cache provides pluggable byte-level caching backends for HTTP
// response caching.
//
// Three backends are available:
//   - FileCache: file-based storage for CLI usage (~/.cache/depvet/)
//   - RedisCache: Redis-backed storage for shared or long-lived caches
//   - NullCache: no-op backend for tests and --refresh runs
//
// Entries carry an expiration timestamp; expired entries are treated as
// misses and removed lazily on read.
package cache

import (
	"context"
	"time"
)

// Cache is the storage backend used by the HTTP clients in pkg/integrations.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was found and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
