package models

import "time"

// MAlignedPoint is one row of an asof merge of two series.
// Value1/Value2 are the change-percents of the left and right series and
// Diff is always Value1 - Value2.
type MAlignedPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value1    float64   `json:"value1"`
	Value2    float64   `json:"value2"`
	Price1    float64   `json:"price1"`
	Price2    float64   `json:"price2"`
	Diff      float64   `json:"diff"`
}

// MSeriesStats holds the extrema of an aligned series.
// Valid is false when the series was empty and every field is zero.
type MSeriesStats struct {
	Current     float64   `json:"current"`
	CurrentTime time.Time `json:"current_time"`
	Max         float64   `json:"max"`
	MaxTime     time.Time `json:"max_time"`
	Min         float64   `json:"min"`
	MinTime     time.Time `json:"min_time"`
	Valid       bool      `json:"valid"`
}
