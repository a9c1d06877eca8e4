// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about layer collection changes, payload
// encoding and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not by
// libraries) and keeps the core library free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEncoderHooks(&myEncoderHooks{})
//	    observability.SetLayerHooks(&myLayerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Encoder().OnEncodeStart(ctx, kind)
//	// ... encode payload ...
//	observability.Encoder().OnEncodeComplete(ctx, kind, size, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Encoder Hooks
// =============================================================================

// EncoderHooks receives events from layer data encoding.
type EncoderHooks interface {
	// OnEncodeStart records the start of a payload encoding.
	OnEncodeStart(ctx context.Context, kind string)

	// OnEncodeComplete records a finished encoding with the payload size.
	OnEncodeComplete(ctx context.Context, kind string, size int, duration time.Duration, err error)
}

// =============================================================================
// Layer Hooks
// =============================================================================

// LayerHooks receives events from layer collection change dispatch.
type LayerHooks interface {
	// OnLayersAdded records layers joining a collection.
	OnLayersAdded(ctx context.Context, count int)

	// OnLayersRemoved records layers leaving a collection.
	OnLayersRemoved(ctx context.Context, count int)

	// OnDataBatch records an emitted data-changed batch.
	OnDataBatch(ctx context.Context, layerCount int)

	// OnOptionsBatch records an emitted options-changed batch.
	OnOptionsBatch(ctx context.Context, layerCount int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEncoderHooks is a no-op implementation of EncoderHooks.
type NoopEncoderHooks struct{}

func (NoopEncoderHooks) OnEncodeStart(context.Context, string)                                {}
func (NoopEncoderHooks) OnEncodeComplete(context.Context, string, int, time.Duration, error) {}

// NoopLayerHooks is a no-op implementation of LayerHooks.
type NoopLayerHooks struct{}

func (NoopLayerHooks) OnLayersAdded(context.Context, int)   {}
func (NoopLayerHooks) OnLayersRemoved(context.Context, int) {}
func (NoopLayerHooks) OnDataBatch(context.Context, int)     {}
func (NoopLayerHooks) OnOptionsBatch(context.Context, int)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	encoderHooks EncoderHooks = NoopEncoderHooks{}
	layerHooks   LayerHooks   = NoopLayerHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetEncoderHooks registers custom encoder hooks.
// This should be called once at application startup before any encoding.
func SetEncoderHooks(h EncoderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		encoderHooks = h
	}
}

// SetLayerHooks registers custom layer hooks.
// This should be called once at application startup before building views.
func SetLayerHooks(h LayerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Encoder returns the registered encoder hooks.
func Encoder() EncoderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return encoderHooks
}

// Layer returns the registered layer hooks.
func Layer() LayerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	encoderHooks = NoopEncoderHooks{}
	layerHooks = NoopLayerHooks{}
	cacheHooks = NoopCacheHooks{}
}
