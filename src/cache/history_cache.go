package cache

import (
	"context"
	"sync"
	"time"

	"spread-observer/src/logger"
	"spread-observer/src/metrics"
	"spread-observer/src/models"
	"spread-observer/src/utils"
)

// FetchFunc loads the series of one code on a cache miss.
type FetchFunc func(ctx context.Context, code string) models.MFetchResult[[]models.MTimePoint]

type entry struct {
	points    []models.MTimePoint
	fetchedAt time.Time
}

// HistoryCache holds five-day series per qualified code for a fixed TTL.
// Expired entries stay in the map until Purge or the next Get for the same
// code replaces them.
type HistoryCache struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
	mu      sync.Mutex
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewHistoryCache(ttl time.Duration, log *logger.Logger) *HistoryCache {
	if ttl <= 0 {
		ttl = utils.DefaultCacheTTL
	}
	return &HistoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
		Logger:  log,
	}
}

// SetClock replaces the clock used for expiry checks.
func (c *HistoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get returns a copy of the cached series when it is younger than the TTL,
// otherwise calls fetch. Degraded results are returned but not stored.
func (c *HistoryCache) Get(ctx context.Context, code string, fetch FetchFunc) ([]models.MTimePoint, models.MFetchStatus) {
	key := utils.Qualify(code)

	c.mu.Lock()
	e, ok := c.entries[key]
	fresh := ok && c.now().Sub(e.fetchedAt) < c.ttl
	c.mu.Unlock()

	if fresh {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return clonePoints(e.points), models.StatusOK
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	res := fetch(ctx, key)
	if res.Status.Degraded {
		return clonePoints(res.Data), res.Status
	}

	c.mu.Lock()
	c.entries[key] = entry{points: clonePoints(res.Data), fetchedAt: c.now()}
	c.mu.Unlock()

	return clonePoints(res.Data), models.StatusOK
}

// -----------------------------------------------------------------------------

// Evict drops the entry of code, if any.
func (c *HistoryCache) Evict(code string) {
	key := utils.Qualify(code)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge drops expired entries and reports how many were removed.
func (c *HistoryCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 && c.Logger != nil {
		c.Logger.Debug("HistoryCache: purged %d expired entries", removed)
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (c *HistoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// -----------------------------------------------------------------------------

func clonePoints(points []models.MTimePoint) []models.MTimePoint {
	out := make([]models.MTimePoint, len(points))
	copy(out, points)
	return out
}
