package trend

import (
	"gonum.org/v1/gonum/stat"

	"ComputeStats/internal/model"
)

// SlopeWindow is how far back the least-squares fit reaches.
const SlopeWindow = 30

// minSlopePoints is the fewest samples a fit is reported for.
const minSlopePoints = 3

// Slope fits value = alpha + beta*day over entries from the last SlopeWindow
// days that carry p, and returns beta (units per day).
func Slope(series model.Series, p model.Path, today model.Date) (float64, bool) {
	since := today.AddDays(-SlopeWindow)
	var xs, ys []float64
	for _, snap := range series {
		if snap.Date.Before(since) {
			continue
		}
		v, ok := snap.Lookup(p)
		if !ok {
			continue
		}
		xs = append(xs, float64(snap.Date.DaysSince(since)))
		ys = append(ys, float64(v))
	}
	if len(xs) < minSlopePoints {
		return 0, false
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, true
}
