package trend

import (
	"math"

	"ComputeStats/internal/model"
)

// Windows are the fixed lookback lengths, in days.
var Windows = []int{7, 30, 90}

// roundDiv divides and rounds half away from zero.
func roundDiv(n int64, days int) int64 {
	return int64(math.Round(float64(n) / float64(days)))
}

// WindowStats computes delta and average per day for every window that has
// enough history. Windows without a lookback value are omitted.
func WindowStats(series model.Series, p model.Path, current int64, today model.Date) []model.WindowStat {
	var out []model.WindowStat
	for _, days := range Windows {
		past, ok := ValueAtOrBefore(series, p, days, today)
		if !ok {
			continue
		}
		delta := current - past
		out = append(out, model.WindowStat{Days: days, Delta: delta, AvgPerDay: roundDiv(delta, days)})
	}
	return out
}

// AllTimeStat measures change since the earliest entry carrying p. It is
// omitted when that entry is dated today.
func AllTimeStat(series model.Series, p model.Path, current int64, today model.Date) (model.WindowStat, bool) {
	first, past, ok := earliestWith(series, p)
	if !ok {
		return model.WindowStat{}, false
	}
	days := today.DaysSince(first.Date)
	if days <= 0 {
		return model.WindowStat{}, false
	}
	delta := current - past
	return model.WindowStat{Days: days, Delta: delta, AvgPerDay: roundDiv(delta, days)}, true
}

// BestAverage picks the daily average used for projections: 30-day, then
// 7-day, then all-time.
func BestAverage(windows []model.WindowStat, allTime *model.WindowStat) (int64, model.AverageSource, bool) {
	for _, pick := range []struct {
		days   int
		source model.AverageSource
	}{{30, model.Source30Day}, {7, model.Source7Day}} {
		for _, w := range windows {
			if w.Days == pick.days {
				return w.AvgPerDay, pick.source, true
			}
		}
	}
	if allTime != nil {
		return allTime.AvgPerDay, model.SourceAllTime, true
	}
	return 0, "", false
}
