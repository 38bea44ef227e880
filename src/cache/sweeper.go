package cache

import (
	"time"

	"spread-observer/src/logger"

	"github.com/go-co-op/gocron"
)

// Sweeper purges expired history entries on a fixed interval.
type Sweeper struct {
	cache    *HistoryCache
	interval time.Duration
	cron     *gocron.Scheduler
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSweeper(c *HistoryCache, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		cache:    c,
		interval: interval,
		cron:     gocron.NewScheduler(time.UTC),
		Logger:   log,
	}
}

// Start schedules the purge job and returns immediately.
func (s *Sweeper) Start() error {
	_, err := s.cron.Every(s.interval).Do(func() {
		if n := s.cache.Purge(); n > 0 {
			s.Logger.Debug("Sweeper: %d expired entries removed, %d left", n, s.cache.Len())
		}
	})
	if err != nil {
		return err
	}
	s.cron.StartAsync()
	s.Logger.Info("Cache sweeper running every %s", s.interval)
	return nil
}

// Stop halts the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}
