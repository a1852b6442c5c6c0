package goldprice

import (
	"context"
	"sync"
	"time"

	"github.com/wafirapp/wafir-backend/config"
)

// QuoteCache memoizes the last-known-good quote. Created empty, populated on
// the first successful or fallback fetch, overwritten on later successful
// fetches, never torn down. Implementations must serialize Set against Get so
// the (value, timestamp) pair is never observed torn.
type QuoteCache interface {
	Get() (Quote, bool)
	Set(q Quote)
}

// RefreshLocker is implemented by caches shared across processes. LockRefresh
// try-acquires the refresh lock and reports whether the caller may hit the
// upstream providers; the returned release function is only valid when
// acquisition succeeded.
type RefreshLocker interface {
	LockRefresh(ctx context.Context) (release func(), obtained bool)
}

// MemoryCache is the default process-local cache.
type MemoryCache struct {
	mu    sync.Mutex
	quote Quote
	ok    bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get() (Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quote, c.ok
}

func (c *MemoryCache) Set(q Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quote = q
	c.ok = true
}

const (
	redisQuoteKey       = "GoldPrice:Current"
	redisRefreshLockKey = "GoldPrice:RefreshLock"
	refreshLockTTL      = 10 * time.Second
)

// RedisCache shares the memoized quote across instances via the config redis
// helpers. Degrades to cache-miss behavior when Redis is unavailable; the
// resolver's fallback chain covers that case.
type RedisCache struct{}

func NewRedisCache() *RedisCache {
	return &RedisCache{}
}

func (c *RedisCache) Get() (Quote, bool) {
	var q Quote
	found, err := config.GetRedisObject(redisQuoteKey, &q)
	if err != nil || !found {
		return Quote{}, false
	}
	if q.PricePerGram.IsZero() || q.AsOf.IsZero() {
		return Quote{}, false
	}
	return q, true
}

func (c *RedisCache) Set(q Quote) {
	// No TTL: staleness is judged by AsOf, and a stale last-known-good
	// value is still the preferred fallback tier.
	_ = config.SetRedisObject(redisQuoteKey, q, 0)
}

// LockRefresh serializes refreshes across instances with redislock. A single
// obtain attempt, no retries: losing the race means another instance is
// already fetching. Without a lock client (Redis down or not yet connected)
// refreshes proceed unguarded.
func (c *RedisCache) LockRefresh(ctx context.Context) (func(), bool) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, true
	}
	lock, err := locker.Obtain(ctx, redisRefreshLockKey, refreshLockTTL, nil)
	if err != nil {
		return nil, false
	}
	return func() { _ = lock.Release(context.Background()) }, true
}

var _ QuoteCache = (*MemoryCache)(nil)
var _ QuoteCache = (*RedisCache)(nil)
var _ RefreshLocker = (*RedisCache)(nil)
