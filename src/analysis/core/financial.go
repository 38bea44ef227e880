package core

// -----------------------------------------------------------------------------

// CalculateChangePercent returns the fractional change of current against
// previous, or 0 when previous is 0.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}
