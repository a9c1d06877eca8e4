// Package cache stores encoded layer payloads so unchanged buffers are not
// re-encoded on every state push.
//
// Backends:
//   - file: directory-backed cache for CLI usage
//   - redis: shared cache for multi-instance serve deployments
//   - null: disables caching
//
// Keys are derived from the content hash of the raw buffer plus the
// encoding options, so a stale entry can never be returned for changed
// data. See [Keyer].
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (0 means no expiration).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for the payload kinds the encoders produce.
type Keyer interface {
	// PayloadKey keys an encoded layer payload by layer kind and the
	// content hash of its source buffer and encoding options.
	PayloadKey(kind, contentHash string) string
}

// DefaultKeyer is the stateless default key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PayloadKey implements Keyer. contentHash is already a digest, so the key
// just namespaces it by kind.
func (DefaultKeyer) PayloadKey(kind, contentHash string) string {
	return "payload:" + kind + ":" + contentHash
}

// ScopedKeyer wraps a Keyer with a prefix so several views (or tenants)
// sharing one backend get separate namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PayloadKey implements Keyer.
func (k *ScopedKeyer) PayloadKey(kind, contentHash string) string {
	return k.prefix + k.inner.PayloadKey(kind, contentHash)
}
