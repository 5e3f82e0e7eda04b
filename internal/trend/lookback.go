package trend

import "ComputeStats/internal/model"

// ValueAtOrBefore returns the value at p of the latest entry dated on or
// before today minus daysAgo. It reports false when no entry is that old, or
// when that entry does not carry p.
func ValueAtOrBefore(series model.Series, p model.Path, daysAgo int, today model.Date) (int64, bool) {
	target := today.AddDays(-daysAgo)
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Date.After(target) {
			continue
		}
		return series[i].Lookup(p)
	}
	return 0, false
}

// earliestWith returns the oldest entry that carries p.
func earliestWith(series model.Series, p model.Path) (model.Snapshot, int64, bool) {
	for _, snap := range series {
		if v, ok := snap.Lookup(p); ok {
			return snap, v, true
		}
	}
	return model.Snapshot{}, 0, false
}
