package trend

import (
	"sort"

	"ComputeStats/internal/model"
)

// MostActiveLimit caps the activity ranking.
const MostActiveLimit = 5

// ActivityWindow is the lookback used to rank sub-projects.
const ActivityWindow = 30

// RankProjects orders the current snapshot's projects by their 30-day gain.
// Projects without a 30-day lookback value or without a positive gain are
// left out. Ties keep ascending project key order.
func RankProjects(series model.Series, current model.Snapshot, today model.Date) []model.ProjectActivity {
	var out []model.ProjectActivity
	for _, key := range current.ProjectKeys() {
		value := current.Projects[key]
		if value <= 0 {
			continue
		}
		past, ok := ValueAtOrBefore(series, model.Project(key), ActivityWindow, today)
		if !ok {
			continue
		}
		gain := value - past
		if gain <= 0 {
			continue
		}
		out = append(out, model.ProjectActivity{Project: key, Current: value, Gain30d: gain})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Gain30d > out[j].Gain30d })
	if len(out) > MostActiveLimit {
		out = out[:MostActiveLimit]
	}
	return out
}
