package analysis

import (
	"sort"
	"time"

	"spread-observer/src/analysis/core"
	"spread-observer/src/models"
)

// -----------------------------------------------------------------------------

// Align pairs every point of left with the latest point of right at or before
// it, no more than tolerance earlier. Left points without such a partner are
// dropped. Neither input needs to be sorted and neither is modified.
func Align(left, right []models.MTimePoint, tolerance time.Duration) []models.MAlignedPoint {
	if len(left) == 0 || len(right) == 0 {
		return []models.MAlignedPoint{}
	}

	a := sortedCopy(left)
	b := sortedCopy(right)

	out := make([]models.MAlignedPoint, 0, len(a))
	j := -1 // index of the last b point with timestamp <= current a point

	for _, pa := range a {
		for j+1 < len(b) && !b[j+1].Timestamp.After(pa.Timestamp) {
			j++
		}
		if j < 0 {
			continue
		}

		pb := b[j]
		if pa.Timestamp.Sub(pb.Timestamp) > tolerance {
			continue
		}

		out = append(out, models.MAlignedPoint{
			Timestamp: pa.Timestamp,
			Value1:    pa.ChangePercent,
			Value2:    pb.ChangePercent,
			Price1:    pa.Price,
			Price2:    pb.Price,
			Diff:      core.Spread(pa.ChangePercent, pb.ChangePercent),
		})
	}

	return out
}

// -----------------------------------------------------------------------------

func sortedCopy(points []models.MTimePoint) []models.MTimePoint {
	out := make([]models.MTimePoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
