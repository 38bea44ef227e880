package core

import "spread-observer/src/models"

// -----------------------------------------------------------------------------

// ExtractStats returns the last, highest and lowest diff of an aligned series
// with their timestamps. Ties keep the earliest point. An empty series yields
// the zero value with Valid unset.
func ExtractStats(points []models.MAlignedPoint) models.MSeriesStats {
	if len(points) == 0 {
		return models.MSeriesStats{}
	}

	first := points[0]
	stats := models.MSeriesStats{
		Max:     first.Diff,
		MaxTime: first.Timestamp,
		Min:     first.Diff,
		MinTime: first.Timestamp,
		Valid:   true,
	}

	for _, p := range points[1:] {
		if p.Diff > stats.Max {
			stats.Max = p.Diff
			stats.MaxTime = p.Timestamp
		}
		if p.Diff < stats.Min {
			stats.Min = p.Diff
			stats.MinTime = p.Timestamp
		}
	}

	last := points[len(points)-1]
	stats.Current = last.Diff
	stats.CurrentTime = last.Timestamp
	return stats
}

// -----------------------------------------------------------------------------

// Spread is the difference of two change-percents.
func Spread(changeA, changeB float64) float64 {
	return changeA - changeB
}
