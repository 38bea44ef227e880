package utils

import (
	"sync"
	"time"

	"spread-observer/src/logger"
)

type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(codes []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
	}
	ms.MapCodesToCalendars(codes)
	return ms
}

// -----------------------------------------------------------------------------

// MapCodesToCalendars replaces the code → calendar mapping.
func (ms *MarketScheduler) MapCodesToCalendars(codes []string) {
	calendars := make(map[string]*TradingCalendar)
	byMarket := make(map[string]*TradingCalendar)

	for _, code := range codes {
		q := Qualify(code)
		if q == "" {
			continue
		}
		market := q[:2]
		if _, ok := byMarket[market]; !ok {
			byMarket[market] = GetCalendar(q)
		}
		calendars[q] = byMarket[market]
	}

	ms.mu.Lock()
	ms.Calendars = calendars
	ms.mu.Unlock()

	ms.Logger.Debug("MarketScheduler: Mapped %d codes to %d unique calendars.", len(calendars), len(byMarket))
}

// UpdateCodes updates the scheduler with a new list of codes
func (ms *MarketScheduler) UpdateCodes(codes []string) {
	ms.MapCodesToCalendars(codes)
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked market is open at t
func (ms *MarketScheduler) AnyMarketOpen(t time.Time) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(t) {
			return true
		}
	}
	return false
}
