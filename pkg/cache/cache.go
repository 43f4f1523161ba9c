// Package cache provides result caching for the slicing pipeline.
//
// Slicing the same source with the same profile is deterministic, so
// whole pipeline results are cached keyed by a hash of the source bytes
// and the profile. Backends:
//   - FileCache: directory-backed, for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface for cached slice results.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (0 means no expiry).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for pipeline results.
type Keyer interface {
	// RunKey generates a key for a complete slicing run, from the
	// source document hash and the profile hash.
	RunKey(sourceHash, profileHash string) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RunKey generates a key for a complete slicing run.
func (k *DefaultKeyer) RunKey(sourceHash, profileHash string) string {
	return hashKey("run", sourceHash, profileHash)
}
