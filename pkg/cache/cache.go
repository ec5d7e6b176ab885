// Package cache provides pluggable byte caches and cache key generation
// for the topology pipeline. Render models and export artifacts are cached
// keyed by a content hash of the raw topology, so an unchanged scan never
// recomputes.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached stage. Models are cheap to recompute, artifacts
// less so.
const (
	DefaultModelTTL    = 24 * time.Hour
	DefaultArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ModelKeyOpts are the layout parameters that participate in render model
// cache keys. Two renders of the same topology with different spacing must
// not share an entry.
type ModelKeyOpts struct {
	RankSep float64
	NodeSep float64
	NoMerge bool
}

// ArtifactKeyOpts are the export parameters that participate in artifact
// cache keys.
type ArtifactKeyOpts struct {
	Format string
}

// Keyer generates cache keys for each cacheable stage.
type Keyer interface {
	// ModelKey generates a key for a computed render model.
	ModelKey(topologyHash string, opts ModelKeyOpts) string

	// ArtifactKey generates a key for an export artifact.
	ArtifactKey(topologyHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates hash-based cache keys with stage prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ModelKey generates a key for a computed render model.
func (k *DefaultKeyer) ModelKey(topologyHash string, opts ModelKeyOpts) string {
	return hashKey("model", topologyHash, opts)
}

// ArtifactKey generates a key for an export artifact.
func (k *DefaultKeyer) ArtifactKey(topologyHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", topologyHash, opts)
}
