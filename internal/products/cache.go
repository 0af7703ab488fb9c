package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const catalogCacheScope = "products"

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	CacheKey(scope string, parts ...string) string
	VersionKey(scope string) string
}

// ListCache stores browse results in Redis keyed by the catalog version and
// the query fingerprint. Bumping the version orphans every cached page.
// Cache failures are logged and never fail the request.
type ListCache struct {
	store cacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewListCache returns nil when store is nil, which disables caching.
func NewListCache(store cacheStore, ttl time.Duration, logg *logger.Logger) *ListCache {
	if store == nil || ttl <= 0 {
		return nil
	}
	return &ListCache{store: store, ttl: ttl, logg: logg}
}

func (c *ListCache) version(ctx context.Context) (string, bool) {
	v, err := c.store.Get(ctx, c.store.VersionKey(catalogCacheScope))
	if errors.Is(err, redis.Nil) {
		return "0", true
	}
	if err != nil {
		c.warn(ctx, "products.cache.version_failed", err)
		return "", false
	}
	return v, true
}

func (c *ListCache) key(ctx context.Context, q ListQuery) (string, bool) {
	v, ok := c.version(ctx)
	if !ok {
		return "", false
	}
	return c.store.CacheKey(catalogCacheScope, "v"+v, q.Fingerprint()), true
}

// Lookup returns a cached page for q.
func (c *ListCache) Lookup(ctx context.Context, q ListQuery) (*ListResult, bool) {
	if c == nil {
		return nil, false
	}
	key, ok := c.key(ctx, q)
	if !ok {
		return nil, false
	}
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn(ctx, "products.cache.get_failed", err)
		}
		return nil, false
	}
	var result ListResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.warn(ctx, "products.cache.decode_failed", err)
		return nil, false
	}
	return &result, true
}

// Store caches the page for q.
func (c *ListCache) Store(ctx context.Context, q ListQuery, result *ListResult) {
	if c == nil || result == nil {
		return
	}
	key, ok := c.key(ctx, q)
	if !ok {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		c.warn(ctx, "products.cache.encode_failed", err)
		return
	}
	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.warn(ctx, "products.cache.set_failed", err)
	}
}

// Invalidate bumps the catalog version.
func (c *ListCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if _, err := c.store.Incr(ctx, c.store.VersionKey(catalogCacheScope)); err != nil {
		c.warn(ctx, "products.cache.invalidate_failed", err)
	}
}

func (c *ListCache) warn(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}
