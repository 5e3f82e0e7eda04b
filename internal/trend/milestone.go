package trend

import "ComputeStats/internal/model"

// ProjectMilestones estimates when each threshold above current will be
// reached at dailyAvg per day. Nothing is projected when dailyAvg <= 0, and
// thresholds that would land after model.MaxDate are dropped. Thresholds are
// expected in ascending order and the output keeps that order.
func ProjectMilestones(current, dailyAvg int64, thresholds []int64, today model.Date) []model.Milestone {
	if dailyAvg <= 0 {
		return nil
	}
	horizon := int64(model.MaxDate.DaysSince(today))
	var out []model.Milestone
	for _, threshold := range thresholds {
		if threshold <= current {
			continue
		}
		remaining := threshold - current
		days := remaining / dailyAvg
		if days > horizon {
			// Ascending thresholds only get further away.
			break
		}
		out = append(out, model.Milestone{
			Threshold:     threshold,
			Remaining:     remaining,
			DaysToReach:   days,
			EstimatedDate: today.AddDays(int(days)),
		})
	}
	return out
}
