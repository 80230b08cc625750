// Package cache stores encoded artifacts so a date is rendered only once.
//
// Generation is deterministic, so an artifact keyed by every input that
// affects its pixels (date, size, style, palette choice, palette registry,
// format) never goes stale. TTLs exist only to bound disk and memory use.
//
// Backends:
//   - FileCache: sharded files with an expiry header, for CLI use
//   - RedisCache: shared cache for the HTTP server
//   - NullCache: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long an encoded image is kept.
const TTLArtifact = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache stores nothing. Every Get is a miss.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache {
	return &NullCache{}
}

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
