package tencent

import (
	"context"
	"strings"
	"time"

	"spread-observer/src/helpers"
	"spread-observer/src/interfaces"
	"spread-observer/src/logger"
	"spread-observer/src/metrics"
	"spread-observer/src/models"
	"spread-observer/src/utils"
)

// Default upstream endpoints.
const (
	DefaultRealtimeURL = "http://qt.gtimg.cn/q="
	DefaultIntradayURL = "https://web.ifzq.gtimg.cn/appstock/app/minute/query"
	DefaultFiveDayURL  = "https://web.ifzq.gtimg.cn/appstock/app/day/query"

	DefaultRealtimeTimeout = 5 * time.Second
	DefaultHistoryTimeout  = 10 * time.Second
)

// TencentSource implements interfaces.IQuoteFeed against the Tencent quote
// endpoints. Every call is bounded by its own timeout and never fails: errors
// come back as degraded results with empty data.
type TencentSource struct {
	Config          *models.MConfig
	Network         interfaces.INetworkManager
	Logger          *logger.Logger
	realtimeURL     string
	intradayURL     string
	fiveDayURL      string
	realtimeTimeout time.Duration
	historyTimeout  time.Duration
	now             func() time.Time
}

var _ interfaces.IQuoteFeed = (*TencentSource)(nil)

// -----------------------------------------------------------------------------

func NewTencentSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *TencentSource {
	s := &TencentSource{
		Config:          cfg,
		Network:         netMgr,
		Logger:          log,
		realtimeURL:     DefaultRealtimeURL,
		intradayURL:     DefaultIntradayURL,
		fiveDayURL:      DefaultFiveDayURL,
		realtimeTimeout: DefaultRealtimeTimeout,
		historyTimeout:  DefaultHistoryTimeout,
		now:             time.Now,
	}

	if cfg != nil {
		if cfg.Feeds.RealtimeURL != "" {
			s.realtimeURL = cfg.Feeds.RealtimeURL
		}
		if cfg.Feeds.IntradayURL != "" {
			s.intradayURL = cfg.Feeds.IntradayURL
		}
		if cfg.Feeds.FiveDayURL != "" {
			s.fiveDayURL = cfg.Feeds.FiveDayURL
		}
		if cfg.Feeds.RealtimeTimeout > 0 {
			s.realtimeTimeout = time.Duration(cfg.Feeds.RealtimeTimeout) * time.Second
		}
		if cfg.Feeds.HistoryTimeout > 0 {
			s.historyTimeout = time.Duration(cfg.Feeds.HistoryTimeout) * time.Second
		}
	}
	return s
}

// SetClock replaces the wall clock used for intraday dates.
func (s *TencentSource) SetClock(now func() time.Time) {
	s.now = now
}

// -----------------------------------------------------------------------------

// FetchRealtime requests all codes in one call. Unknown codes are simply absent.
func (s *TencentSource) FetchRealtime(ctx context.Context, codes []string) models.MFetchResult[map[string]models.MQuote] {
	empty := map[string]models.MQuote{}

	qualified := make([]string, 0, len(codes))
	for _, c := range codes {
		if q := utils.Qualify(c); q != "" {
			qualified = append(qualified, q)
		}
	}
	if len(qualified) == 0 {
		return models.OK(empty)
	}

	ctx, cancel := context.WithTimeout(ctx, s.realtimeTimeout)
	defer cancel()

	body, err := s.Network.Get(ctx, s.realtimeURL+strings.Join(qualified, ","), nil)
	if err != nil {
		return degradeWith(s, metrics.FeedRealtime, empty, err)
	}

	text, err := decodeGBK(body)
	if err != nil {
		return degradeWith(s, metrics.FeedRealtime, empty, err)
	}

	quotes, skipped := parseRealtime(text)
	if skipped > 0 {
		s.Logger.Debug("Realtime: skipped %d malformed records", skipped)
	}
	metrics.ObserveFetch(metrics.FeedRealtime, false)
	return models.OK(quotes)
}

// -----------------------------------------------------------------------------

// FetchIntraday returns today's minute samples relative to the previous close.
func (s *TencentSource) FetchIntraday(ctx context.Context, code string) models.MFetchResult[[]models.MTimePoint] {
	code = utils.Qualify(code)
	if code == "" {
		return degradeWith(s, metrics.FeedIntraday, []models.MTimePoint{}, helpers.NewValidationError("empty code"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.historyTimeout)
	defer cancel()

	body, err := s.Network.Get(ctx, s.intradayURL, map[string]string{"code": code})
	if err != nil {
		return degradeWith(s, metrics.FeedIntraday, []models.MTimePoint{}, err)
	}

	today := s.now().In(utils.ShanghaiLocation)
	points, skipped, err := parseIntraday(body, code, today)
	if err != nil {
		return degradeWith(s, metrics.FeedIntraday, []models.MTimePoint{}, err)
	}
	if skipped > 0 {
		s.Logger.Debug("Intraday %s: skipped %d malformed samples", code, skipped)
	}
	metrics.ObserveFetch(metrics.FeedIntraday, false)
	return models.OK(points)
}

// -----------------------------------------------------------------------------

// FetchFiveDay returns the last five trading days, oldest first.
func (s *TencentSource) FetchFiveDay(ctx context.Context, code string) models.MFetchResult[[]models.MTimePoint] {
	code = utils.Qualify(code)
	if code == "" {
		return degradeWith(s, metrics.FeedFiveDay, []models.MTimePoint{}, helpers.NewValidationError("empty code"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.historyTimeout)
	defer cancel()

	params := map[string]string{
		"_var": "fdays_data_" + code,
		"code": code,
	}
	body, err := s.Network.Get(ctx, s.fiveDayURL, params)
	if err != nil {
		return degradeWith(s, metrics.FeedFiveDay, []models.MTimePoint{}, err)
	}

	points, skipped, err := parseFiveDay(body, code, utils.ShanghaiLocation)
	if err != nil {
		return degradeWith(s, metrics.FeedFiveDay, []models.MTimePoint{}, err)
	}
	if skipped > 0 {
		s.Logger.Debug("Five-day %s: skipped %d malformed samples", code, skipped)
	}
	metrics.ObserveFetch(metrics.FeedFiveDay, false)
	return models.OK(points)
}

// -----------------------------------------------------------------------------

func degradeWith[T any](s *TencentSource, feed string, empty T, err error) models.MFetchResult[T] {
	status := helpers.Degrade(feed, err)
	s.Logger.Warning("%s", status.Reason)
	metrics.ObserveFetch(feed, true)
	return models.MFetchResult[T]{Data: empty, Status: status}
}
