// Package cache provides byte caching for computed label results.
//
// Labeling a complex polygon at tight precision is pure but not free, so
// results are cached keyed by a content hash of the polygon plus the search
// precision. Backends:
//   - FileCache: hash-sharded JSON files for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLLabel is how long computed label results stay cached. Labels are pure
// functions of their key, so the TTL exists only to bound storage.
const TTLLabel = 30 * 24 * time.Hour

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LabelKeyOpts are the search parameters that shape a label result and so
// must participate in its cache key.
type LabelKeyOpts struct {
	Precision float64 `json:"precision"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LabelKey returns the key for a label result. geomHash is the content
	// hash of the polygon's canonical GeoJSON bytes.
	LabelKey(geomHash string, opts LabelKeyOpts) string
}

// DefaultKeyer is the standard key derivation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LabelKey generates a key for a label result.
func (k *DefaultKeyer) LabelKey(geomHash string, opts LabelKeyOpts) string {
	return hashKey("label", geomHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g. when
// several datasets share one redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LabelKey generates a prefixed key for a label result.
func (k *ScopedKeyer) LabelKey(geomHash string, opts LabelKeyOpts) string {
	return k.prefix + k.inner.LabelKey(geomHash, opts)
}
