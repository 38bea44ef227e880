package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Snapshot payload returned to callers (flat, zero-filled, never nil slices)
// -----------------------------------------------------------------------------

const (
	StateUnconfigured = "unconfigured"
	StateActive       = "active"
	StateDegraded     = "degraded"
)

// MSnapshot is one complete response covering the tracked pair.
type MSnapshot struct {
	Stock1          MQuote        `json:"stock1"`
	Stock2          MQuote        `json:"stock2"`
	Diff            MDiff         `json:"diff"`
	Intraday        MSeriesBlock  `json:"intraday"`
	FiveDay         MFiveDayBlock `json:"fiveDay"`
	Stock1ChartData MChartData    `json:"stock1ChartData"`
	Stock2ChartData MChartData    `json:"stock2ChartData"`
	Indices         [8]MQuote     `json:"-"`
	MarketOpen      bool          `json:"market_open"`
	State           string        `json:"state"`
	Diagnostics     []string      `json:"diagnostics"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// MarshalJSON flattens Indices into index1..index8 keys.
func (s MSnapshot) MarshalJSON() ([]byte, error) {
	type plain MSnapshot
	body, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	for i, q := range s.Indices {
		raw, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		fields[fmt.Sprintf("index%d", i+1)] = raw
	}
	return json.Marshal(fields)
}

// MDiff is the instantaneous spread taken from the realtime quotes.
type MDiff struct {
	Current float64 `json:"current"`
	Valid   bool    `json:"valid"`
}

// MSeriesBlock is an aligned series with the stats computed over it.
type MSeriesBlock struct {
	Data  []MSeriesPoint `json:"data"`
	Stats MStatsView     `json:"stats"`
}

// MSeriesPoint is a formatted aligned point for charting.
type MSeriesPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// MStatsView is MSeriesStats with formatted timestamps. LatestTime repeats
// CurrentTime under the key the intraday panel reads first.
type MStatsView struct {
	Current     float64 `json:"current"`
	CurrentTime string  `json:"current_time"`
	LatestTime  string  `json:"latest_time"`
	Max         float64 `json:"max"`
	MaxTime     string  `json:"max_time"`
	Min         float64 `json:"min"`
	MinTime     string  `json:"min_time"`
	Valid       bool    `json:"valid"`
}

// MFiveDayBlock is the five-day counterpart of MSeriesBlock. Its rows are
// keyed by datetime and its stats by date.
type MFiveDayBlock struct {
	Data  []MFiveDayPoint   `json:"data"`
	Stats MFiveDayStatsView `json:"stats"`
}

// MFiveDayPoint is one aligned five-day row, Datetime formatted MM-DD HH:MM.
type MFiveDayPoint struct {
	Datetime string  `json:"datetime"`
	Value    float64 `json:"value"`
}

type MFiveDayStatsView struct {
	Current     float64 `json:"current"`
	CurrentDate string  `json:"current_date"`
	Max         float64 `json:"max"`
	MaxDate     string  `json:"max_date"`
	Min         float64 `json:"min"`
	MinDate     string  `json:"min_date"`
	Valid       bool    `json:"valid"`
}

// MChartData holds per-stock chart arrays built from the intraday aligned rows.
type MChartData struct {
	Prices        []float64 `json:"prices"`
	Times         []string  `json:"times"`
	ChangePercent []float64 `json:"change_percent"`
}

// NewChartData returns empty, non-nil chart arrays.
func NewChartData() MChartData {
	return MChartData{Prices: []float64{}, Times: []string{}, ChangePercent: []float64{}}
}
