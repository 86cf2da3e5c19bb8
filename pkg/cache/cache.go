// Package cache provides caching for rendered assets.
//
// Rendering the same (template, style, row, format) combination always
// produces identical bytes, so rendered outputs are safe to cache by
// content hash. The preview path and repeated batch runs both benefit:
// a row previewed moments before a full render is served from cache.
//
// Two implementations are provided: FileCache for persistent on-disk
// caching and NullCache to disable caching entirely.
package cache

import (
	"context"
	"time"
)

// TTL values for cached entries.
const (
	// TTLAsset is how long rendered asset bytes stay valid. Rendering is
	// deterministic, so this is bounded only to keep disk usage in check.
	TTLAsset = 24 * time.Hour
)

// Cache stores binary values by key with optional expiration.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. Zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// AssetKey builds the cache key for one rendered asset from the content
// hash of its resolved record and the output format.
func AssetKey(recordHash, format string) string {
	return hashKey("asset", recordHash, format)
}
