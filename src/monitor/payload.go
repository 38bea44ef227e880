package monitor

import (
	"spread-observer/src/models"
	"spread-observer/src/utils"
)

// Name markers of the two fallback payloads.
const (
	NameNotConfigured = "Not Configured"
	NameError         = "Error"
)

// -----------------------------------------------------------------------------

// defaultPayload returns a zero-filled snapshot: empty arrays, both stocks named
// by marker, and every index slot carrying its display name.
func defaultPayload(state, marker string) *models.MSnapshot {
	snap := &models.MSnapshot{
		Stock1:          models.MQuote{Name: marker},
		Stock2:          models.MQuote{Name: marker},
		Intraday:        emptyBlock(),
		FiveDay:         models.MFiveDayBlock{Data: []models.MFiveDayPoint{}},
		Stock1ChartData: models.NewChartData(),
		Stock2ChartData: models.NewChartData(),
		State:           state,
		Diagnostics:     []string{},
	}
	for i, idx := range utils.ReferenceIndices {
		snap.Indices[i] = models.MQuote{Code: idx.Code, Name: idx.Name}
	}
	return snap
}

// UnconfiguredPayload is returned while no pair is tracked.
func UnconfiguredPayload() *models.MSnapshot {
	return defaultPayload(models.StateUnconfigured, NameNotConfigured)
}

// DegradedPayload replaces a snapshot cycle that could not complete.
func DegradedPayload(reason string) *models.MSnapshot {
	snap := defaultPayload(models.StateDegraded, NameError)
	snap.Diagnostics = append(snap.Diagnostics, reason)
	return snap
}

func emptyBlock() models.MSeriesBlock {
	return models.MSeriesBlock{Data: []models.MSeriesPoint{}}
}
