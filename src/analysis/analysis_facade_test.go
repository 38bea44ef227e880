package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"spread-observer/src/logger"
	"spread-observer/src/models"
	"spread-observer/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shanghai(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2024, month, day, hour, minute, 0, 0, utils.ShanghaiLocation)
}

func TestNewAnalysisFacade_Tolerances(t *testing.T) {
	log := logger.NewSilentLogger("analysis-test")

	a := NewAnalysisFacade(&models.MConfig{}, log)
	assert.Equal(t, time.Minute, a.IntradayTolerance)
	assert.Equal(t, 5*time.Minute, a.FiveDayTolerance)

	cfg := &models.MConfig{Monitor: models.MMonitorConfig{IntradayTolerance: "2m", FiveDayTolerance: "bogus"}}
	a = NewAnalysisFacade(cfg, log)
	assert.Equal(t, 2*time.Minute, a.IntradayTolerance)
	assert.Equal(t, 5*time.Minute, a.FiveDayTolerance)
}

func TestIntraday_BlockAndCharts(t *testing.T) {
	a := NewAnalysisFacade(nil, logger.NewSilentLogger("analysis-test"))

	seriesA := []models.MTimePoint{
		{Timestamp: shanghai(1, 5, 9, 30), Price: 10.1, ChangePercent: 0.5},
		{Timestamp: shanghai(1, 5, 9, 31), Price: 10.3, ChangePercent: 1.0},
		{Timestamp: shanghai(1, 5, 9, 35), Price: 10.2, ChangePercent: 0.75},
	}
	seriesB := []models.MTimePoint{
		{Timestamp: shanghai(1, 5, 9, 30), Price: 20.0, ChangePercent: 0.25},
		{Timestamp: shanghai(1, 5, 9, 31), Price: 20.2, ChangePercent: 0.5},
	}

	res := a.Intraday(seriesA, seriesB)
	require.Equal(t, 2, res.PointCount)

	assert.Equal(t, []models.MSeriesPoint{{Time: "09:30", Value: 0.25}, {Time: "09:31", Value: 0.5}}, res.Block.Data)
	assert.True(t, res.Block.Stats.Valid)
	assert.Equal(t, "09:31", res.Block.Stats.MaxTime)
	assert.Equal(t, "09:30", res.Block.Stats.MinTime)
	assert.Equal(t, "09:31", res.Block.Stats.CurrentTime)

	assert.Equal(t, []float64{10.1, 10.3}, res.ChartA.Prices)
	assert.Equal(t, []float64{20.0, 20.2}, res.ChartB.Prices)
	assert.Equal(t, []string{"09:30", "09:31"}, res.ChartB.Times)
	assert.Equal(t, []float64{0.25, 0.5}, res.ChartB.ChangePercent)
}

func TestFiveDay_FormatsWithDate(t *testing.T) {
	a := NewAnalysisFacade(nil, logger.NewSilentLogger("analysis-test"))

	seriesA := []models.MTimePoint{{Timestamp: shanghai(1, 4, 14, 58), ChangePercent: 0.05}}
	seriesB := []models.MTimePoint{{Timestamp: shanghai(1, 4, 14, 55), ChangePercent: 0.01}}

	block := a.FiveDay(seriesA, seriesB)
	require.Len(t, block.Data, 1)
	assert.Equal(t, "01-04 14:58", block.Data[0].Datetime)
	assert.Equal(t, "01-04 14:58", block.Stats.MaxDate)
	assert.Equal(t, "01-04 14:58", block.Stats.CurrentDate)
}

func TestFiveDay_JSONKeys(t *testing.T) {
	a := NewAnalysisFacade(nil, logger.NewSilentLogger("analysis-test"))

	seriesA := []models.MTimePoint{{Timestamp: shanghai(1, 5, 10, 0), ChangePercent: 0.5}}
	seriesB := []models.MTimePoint{{Timestamp: shanghai(1, 5, 10, 0), ChangePercent: 0.25}}

	body, err := json.Marshal(a.FiveDay(seriesA, seriesB))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data": [{"datetime": "01-05 10:00", "value": 0.25}],
		"stats": {
			"current": 0.25, "current_date": "01-05 10:00",
			"max": 0.25, "max_date": "01-05 10:00",
			"min": 0.25, "min_date": "01-05 10:00",
			"valid": true
		}
	}`, string(body))
}

func TestIntraday_StatsCarryLatestTime(t *testing.T) {
	a := NewAnalysisFacade(nil, logger.NewSilentLogger("analysis-test"))

	seriesA := []models.MTimePoint{{Timestamp: shanghai(1, 5, 9, 45), ChangePercent: 0.5}}
	seriesB := []models.MTimePoint{{Timestamp: shanghai(1, 5, 9, 45), ChangePercent: 0.25}}

	body, err := json.Marshal(a.Intraday(seriesA, seriesB).Block.Stats)
	require.NoError(t, err)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, "09:45", stats["latest_time"])
	assert.Equal(t, "09:45", stats["current_time"])
}

func TestIntraday_EmptySeriesGivesEmptyArrays(t *testing.T) {
	a := NewAnalysisFacade(nil, logger.NewSilentLogger("analysis-test"))

	res := a.Intraday(nil, nil)
	assert.NotNil(t, res.Block.Data)
	assert.Empty(t, res.Block.Data)
	assert.False(t, res.Block.Stats.Valid)
	assert.Equal(t, "", res.Block.Stats.MaxTime)
	assert.NotNil(t, res.ChartA.Prices)
}
