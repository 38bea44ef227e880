package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spread-observer/src/analysis"
	"spread-observer/src/analysis/core"
	"spread-observer/src/cache"
	"spread-observer/src/helpers"
	"spread-observer/src/interfaces"
	"spread-observer/src/logger"
	"spread-observer/src/metrics"
	"spread-observer/src/models"
	"spread-observer/src/utils"
)

// Session owns the tracked pair and computes snapshots on demand. SetPair and
// Snapshot are serialised by one mutex, so a snapshot never mixes two pairs.
type Session struct {
	Config    *models.MConfig
	Feed      interfaces.IQuoteFeed
	Cache     *cache.HistoryCache
	Analyzer  *analysis.AnalysisFacade
	Scheduler *utils.MarketScheduler
	Logger    *logger.Logger

	// OnPairChange, when set, is called after every SetPair with the new pair.
	// It runs under the session lock and must not call back into the session.
	OnPairChange func(models.MTrackedPair)

	pair      models.MTrackedPair
	lastNames [2]string
	last      *models.MSnapshot
	now       func() time.Time
	mu        sync.Mutex
}

// -----------------------------------------------------------------------------

func NewSession(cfg *models.MConfig, feed interfaces.IQuoteFeed, history *cache.HistoryCache, log *logger.Logger) *Session {
	return &Session{
		Config:    cfg,
		Feed:      feed,
		Cache:     history,
		Analyzer:  analysis.NewAnalysisFacade(cfg, log.Named("Analysis")),
		Scheduler: utils.NewMarketScheduler(nil, log.Named("MarketScheduler")),
		Logger:    log,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for generated_at and market_open.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// SetPair switches the tracked pair. Cached history of the previous codes is
// always evicted, even when the pair is unchanged, and all per-pair state is
// reset. Empty codes leave the session unconfigured.
func (s *Session) SetPair(codeA, codeB string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, code := range s.pair.Codes() {
		s.Cache.Evict(code)
	}

	s.pair = models.MTrackedPair{CodeA: utils.Qualify(codeA), CodeB: utils.Qualify(codeB)}
	s.lastNames = [2]string{}
	s.last = nil
	s.Scheduler.UpdateCodes(s.pair.Codes())

	if s.pair.IsConfigured() {
		s.Logger.Info("Tracking pair %s / %s", s.pair.CodeA, s.pair.CodeB)
	} else {
		s.Logger.Info("Pair cleared, session unconfigured")
	}

	if s.OnPairChange != nil {
		s.OnPairChange(s.pair)
	}
}

// Pair returns the tracked pair.
func (s *Session) Pair() models.MTrackedPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

// State reports StateActive when both codes are set.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pair.IsConfigured() {
		return models.StateActive
	}
	return models.StateUnconfigured
}

// LastSnapshot returns the most recent snapshot of the current pair, or nil.
func (s *Session) LastSnapshot() *models.MSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// -----------------------------------------------------------------------------

// Snapshot runs one full cycle. It never fails: an unconfigured session gets
// the default payload without touching the network, and a cycle that panics or
// whose context ends gets the degraded payload.
func (s *Session) Snapshot(ctx context.Context) (snap *models.MSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	began := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("Snapshot cycle panicked: %v", r)
			snap = DegradedPayload(fmt.Sprintf("panic: %v", r))
		}
		snap.GeneratedAt = start
		s.last = snap
		metrics.SnapshotDuration.WithLabelValues(snap.State).Observe(time.Since(began).Seconds())
	}()

	if !s.pair.IsConfigured() {
		return UnconfiguredPayload()
	}

	result, err := s.compute(ctx, start)
	if err != nil {
		s.Logger.Warning("Snapshot degraded: %v", err)
		return DegradedPayload(err.Error())
	}
	return result
}

// -----------------------------------------------------------------------------

func (s *Session) compute(ctx context.Context, now time.Time) (*models.MSnapshot, error) {
	pair := s.pair
	snap := defaultPayload(models.StateActive, "")

	note := func(status models.MFetchStatus) {
		if status.Degraded {
			snap.Diagnostics = append(snap.Diagnostics, status.Reason)
		}
	}

	// 1. Realtime quotes for the pair and the reference indices in one call.
	codes := append(pair.Codes(), utils.ReferenceIndexCodes()...)
	realtime := s.Feed.FetchRealtime(ctx, codes)
	note(realtime.Status)
	if err := ctx.Err(); err != nil {
		return nil, helpers.NewNetworkError("realtime step", err)
	}

	snap.Stock1 = s.resolveQuote(0, pair.CodeA, realtime.Data)
	snap.Stock2 = s.resolveQuote(1, pair.CodeB, realtime.Data)
	snap.Diff = models.MDiff{
		Current: core.Spread(snap.Stock1.ChangePercent, snap.Stock2.ChangePercent),
		Valid:   snap.Stock1.Valid && snap.Stock2.Valid,
	}
	for i, idx := range utils.ReferenceIndices {
		if q, ok := realtime.Data[idx.Code]; ok {
			if q.Name == "" {
				q.Name = idx.Name
			}
			snap.Indices[i] = q
		}
	}

	// 2. Intraday series, uncached.
	intradayA := s.Feed.FetchIntraday(ctx, pair.CodeA)
	intradayB := s.Feed.FetchIntraday(ctx, pair.CodeB)
	note(intradayA.Status)
	note(intradayB.Status)
	if err := ctx.Err(); err != nil {
		return nil, helpers.NewNetworkError("intraday step", err)
	}

	// 3. Five-day series through the cache.
	fiveDayA, statusA := s.Cache.Get(ctx, pair.CodeA, s.Feed.FetchFiveDay)
	fiveDayB, statusB := s.Cache.Get(ctx, pair.CodeB, s.Feed.FetchFiveDay)
	note(statusA)
	note(statusB)
	if err := ctx.Err(); err != nil {
		return nil, helpers.NewNetworkError("five-day step", err)
	}

	// 4 and 5. Align, extract stats, assemble.
	intraday := s.Analyzer.Intraday(intradayA.Data, intradayB.Data)
	snap.Intraday = intraday.Block
	snap.Stock1ChartData = intraday.ChartA
	snap.Stock2ChartData = intraday.ChartB
	snap.FiveDay = s.Analyzer.FiveDay(fiveDayA, fiveDayB)
	snap.MarketOpen = s.Scheduler.AnyMarketOpen(now)

	s.Logger.Debug("Snapshot %s/%s: %d intraday rows, %d five-day rows, %d diagnostics",
		pair.CodeA, pair.CodeB, intraday.PointCount, len(snap.FiveDay.Data), len(snap.Diagnostics))
	return snap, nil
}

// -----------------------------------------------------------------------------

// resolveQuote picks the realtime quote of a tracked code. A code missing from
// the feed keeps its last known name, or gets a placeholder, with zero values.
func (s *Session) resolveQuote(slot int, code string, quotes map[string]models.MQuote) models.MQuote {
	if q, ok := quotes[code]; ok {
		if q.Name == "" {
			q.Name = placeholderName(code)
		}
		s.lastNames[slot] = q.Name
		return q
	}

	name := s.lastNames[slot]
	if name == "" {
		name = placeholderName(code)
	}
	return models.MQuote{Code: code, Name: name}
}

func placeholderName(code string) string {
	return "股票" + utils.Bare(code)
}
