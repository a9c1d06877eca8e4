package encoding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/layerview/layerview/pkg/cache"
	"github.com/layerview/layerview/pkg/observability"
)

// Cached wraps an encode function with a payload cache keyed on the content
// fingerprint of the source buffer, so unchanged buffers are encoded once.
// Cache failures degrade to a plain encode; they never fail the request.
type Cached struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCached creates a caching encoder wrapper. A nil cache disables
// caching, a nil keyer falls back to the default key scheme.
func NewCached(c cache.Cache, k cache.Keyer, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &Cached{cache: c, keyer: k, ttl: ttl}
}

// Encode returns the cached payload for (kind, fingerprint) or runs encode
// and stores its result. The fingerprint must cover everything that affects
// the payload: buffer bytes and encoding options.
func (c *Cached) Encode(ctx context.Context, kind string, fingerprint []byte, encode func() (LayerData, error)) (LayerData, error) {
	key := c.keyer.PayloadKey(kind, cache.Hash(fingerprint))

	if raw, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var data LayerData
		if err := json.Unmarshal(raw, &data); err == nil {
			observability.Cache().OnCacheHit(ctx, kind)
			return data, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, kind)

	start := time.Now()
	observability.Encoder().OnEncodeStart(ctx, kind)
	data, err := encode()
	if err != nil {
		observability.Encoder().OnEncodeComplete(ctx, kind, 0, time.Since(start), err)
		return LayerData{}, err
	}

	raw, err := data.JSONBytes()
	if err != nil {
		observability.Encoder().OnEncodeComplete(ctx, kind, 0, time.Since(start), err)
		return LayerData{}, err
	}
	observability.Encoder().OnEncodeComplete(ctx, kind, len(raw), time.Since(start), nil)

	if err := c.cache.Set(ctx, key, raw, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, kind, len(raw))
	}
	return data, nil
}
