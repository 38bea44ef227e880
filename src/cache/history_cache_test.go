package cache

import (
	"context"
	"testing"
	"time"

	"spread-observer/src/logger"
	"spread-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetch struct {
	calls    map[string]int
	degraded bool
}

func (f *countingFetch) fetch(_ context.Context, code string) models.MFetchResult[[]models.MTimePoint] {
	f.calls[code]++
	if f.degraded {
		return models.Degraded([]models.MTimePoint{}, "five_day: network: timeout")
	}
	return models.OK([]models.MTimePoint{{Price: 10, ChangePercent: 0.01}})
}

func newTestCache(ttl time.Duration) (*HistoryCache, *time.Time) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	c := NewHistoryCache(ttl, logger.NewSilentLogger("cache-test"))
	c.SetClock(func() time.Time { return now })
	return c, &now
}

// -----------------------------------------------------------------------------

func TestHistoryCache_HitWithinTTL(t *testing.T) {
	c, now := newTestCache(30 * time.Second)
	f := &countingFetch{calls: map[string]int{}}
	ctx := context.Background()

	first, status := c.Get(ctx, "600000", f.fetch)
	require.False(t, status.Degraded)
	*now = now.Add(29 * time.Second)
	second, _ := c.Get(ctx, "sh600000", f.fetch)

	assert.Equal(t, 1, f.calls["sh600000"], "bare and qualified codes share one entry")
	assert.Equal(t, first, second)
}

func TestHistoryCache_RefetchAfterTTL(t *testing.T) {
	c, now := newTestCache(30 * time.Second)
	f := &countingFetch{calls: map[string]int{}}
	ctx := context.Background()

	c.Get(ctx, "sh600000", f.fetch)
	*now = now.Add(30 * time.Second)
	c.Get(ctx, "sh600000", f.fetch)

	assert.Equal(t, 2, f.calls["sh600000"])
}

func TestHistoryCache_ReturnsCopies(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	f := &countingFetch{calls: map[string]int{}}
	ctx := context.Background()

	first, _ := c.Get(ctx, "sh600000", f.fetch)
	first[0].Price = 999

	second, _ := c.Get(ctx, "sh600000", f.fetch)
	assert.Equal(t, 10.0, second[0].Price)
}

func TestHistoryCache_DegradedNotStored(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	f := &countingFetch{calls: map[string]int{}, degraded: true}
	ctx := context.Background()

	points, status := c.Get(ctx, "sz000001", f.fetch)
	assert.True(t, status.Degraded)
	assert.Empty(t, points)

	c.Get(ctx, "sz000001", f.fetch)
	assert.Equal(t, 2, f.calls["sz000001"])
	assert.Equal(t, 0, c.Len())
}

func TestHistoryCache_EvictForcesRefetch(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	f := &countingFetch{calls: map[string]int{}}
	ctx := context.Background()

	c.Get(ctx, "sh600000", f.fetch)
	c.Evict("600000")
	c.Get(ctx, "sh600000", f.fetch)

	assert.Equal(t, 2, f.calls["sh600000"])
}

func TestHistoryCache_PurgeDropsOnlyExpired(t *testing.T) {
	c, now := newTestCache(30 * time.Second)
	f := &countingFetch{calls: map[string]int{}}
	ctx := context.Background()

	c.Get(ctx, "sh600000", f.fetch)
	*now = now.Add(20 * time.Second)
	c.Get(ctx, "sz000001", f.fetch)
	*now = now.Add(15 * time.Second)

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())

	c.Get(ctx, "sz000001", f.fetch)
	assert.Equal(t, 1, f.calls["sz000001"], "purge never evicts a fresh entry")
}

func TestSweeper_PurgesExpiredEntries(t *testing.T) {
	c := NewHistoryCache(time.Millisecond, logger.NewSilentLogger("cache-test"))
	f := &countingFetch{calls: map[string]int{}}
	c.Get(context.Background(), "sh600000", f.fetch)
	require.Equal(t, 1, c.Len())

	sw := NewSweeper(c, 20*time.Millisecond, logger.NewSilentLogger("sweeper-test"))
	require.NoError(t, sw.Start())
	defer sw.Stop()

	assert.Eventually(t, func() bool { return c.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
