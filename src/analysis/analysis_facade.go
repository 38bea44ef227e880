package analysis

import (
	"time"

	"spread-observer/src/analysis/core"
	"spread-observer/src/logger"
	"spread-observer/src/models"
	"spread-observer/src/utils"
)

type AnalysisFacade struct {
	Config            *models.MConfig
	IntradayTolerance time.Duration
	FiveDayTolerance  time.Duration
	Logger            *logger.Logger
}

// IntradayResult is the intraday block plus the per-stock chart arrays built
// from the same aligned rows.
type IntradayResult struct {
	Block      models.MSeriesBlock
	ChartA     models.MChartData
	ChartB     models.MChartData
	PointCount int
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	a := &AnalysisFacade{
		Config:            cfg,
		IntradayTolerance: utils.DefaultIntradayTolerance,
		FiveDayTolerance:  utils.DefaultFiveDayTolerance,
		Logger:            log,
	}
	if cfg == nil {
		return a
	}

	if cfg.Monitor.IntradayTolerance != "" {
		if dur, err := time.ParseDuration(cfg.Monitor.IntradayTolerance); err == nil && dur > 0 {
			a.IntradayTolerance = dur
		} else {
			log.Warning("Invalid intraday tolerance %q, using %s", cfg.Monitor.IntradayTolerance, a.IntradayTolerance)
		}
	}
	if cfg.Monitor.FiveDayTolerance != "" {
		if dur, err := time.ParseDuration(cfg.Monitor.FiveDayTolerance); err == nil && dur > 0 {
			a.FiveDayTolerance = dur
		} else {
			log.Warning("Invalid five-day tolerance %q, using %s", cfg.Monitor.FiveDayTolerance, a.FiveDayTolerance)
		}
	}
	return a
}

// -----------------------------------------------------------------------------

// Intraday aligns today's series of both stocks and formats the rows as HH:MM.
func (a *AnalysisFacade) Intraday(seriesA, seriesB []models.MTimePoint) IntradayResult {
	rows := Align(seriesA, seriesB, a.IntradayTolerance)

	chartA := models.NewChartData()
	chartB := models.NewChartData()
	for _, r := range rows {
		label := formatTime(r.Timestamp, utils.IntradayTimeLayout)

		chartA.Prices = append(chartA.Prices, r.Price1)
		chartA.Times = append(chartA.Times, label)
		chartA.ChangePercent = append(chartA.ChangePercent, r.Value1)

		chartB.Prices = append(chartB.Prices, r.Price2)
		chartB.Times = append(chartB.Times, label)
		chartB.ChangePercent = append(chartB.ChangePercent, r.Value2)
	}

	return IntradayResult{
		Block:      buildBlock(rows, utils.IntradayTimeLayout),
		ChartA:     chartA,
		ChartB:     chartB,
		PointCount: len(rows),
	}
}

// -----------------------------------------------------------------------------

// FiveDay aligns the five-day series of both stocks. Rows carry an MM-DD HH:MM
// datetime and the stats report dates in the same layout.
func (a *AnalysisFacade) FiveDay(seriesA, seriesB []models.MTimePoint) models.MFiveDayBlock {
	rows := Align(seriesA, seriesB, a.FiveDayTolerance)

	data := make([]models.MFiveDayPoint, 0, len(rows))
	for _, r := range rows {
		data = append(data, models.MFiveDayPoint{
			Datetime: formatTime(r.Timestamp, utils.FiveDayTimeLayout),
			Value:    r.Diff,
		})
	}

	return models.MFiveDayBlock{
		Data:  data,
		Stats: FiveDayStatsView(core.ExtractStats(rows)),
	}
}

// -----------------------------------------------------------------------------

func buildBlock(rows []models.MAlignedPoint, layout string) models.MSeriesBlock {
	data := make([]models.MSeriesPoint, 0, len(rows))
	for _, r := range rows {
		data = append(data, models.MSeriesPoint{
			Time:  formatTime(r.Timestamp, layout),
			Value: r.Diff,
		})
	}

	return models.MSeriesBlock{
		Data:  data,
		Stats: StatsView(core.ExtractStats(rows), layout),
	}
}

// StatsView formats the timestamps of stats. Invalid stats keep empty labels.
func StatsView(stats models.MSeriesStats, layout string) models.MStatsView {
	if !stats.Valid {
		return models.MStatsView{}
	}
	return models.MStatsView{
		Current:     stats.Current,
		CurrentTime: formatTime(stats.CurrentTime, layout),
		LatestTime:  formatTime(stats.CurrentTime, layout),
		Max:         stats.Max,
		MaxTime:     formatTime(stats.MaxTime, layout),
		Min:         stats.Min,
		MinTime:     formatTime(stats.MinTime, layout),
		Valid:       true,
	}
}

// FiveDayStatsView is StatsView for the five-day block.
func FiveDayStatsView(stats models.MSeriesStats) models.MFiveDayStatsView {
	if !stats.Valid {
		return models.MFiveDayStatsView{}
	}
	layout := utils.FiveDayTimeLayout
	return models.MFiveDayStatsView{
		Current:     stats.Current,
		CurrentDate: formatTime(stats.CurrentTime, layout),
		Max:         stats.Max,
		MaxDate:     formatTime(stats.MaxTime, layout),
		Min:         stats.Min,
		MinDate:     formatTime(stats.MinTime, layout),
		Valid:       true,
	}
}

func formatTime(t time.Time, layout string) string {
	return t.In(utils.ShanghaiLocation).Format(layout)
}
