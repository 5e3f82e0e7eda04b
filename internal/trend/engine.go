// Package trend derives rolling deltas, daily averages, milestone projections
// and project activity from a history series. Everything here is a pure
// function of its inputs; the current day is always passed in.
package trend

import "ComputeStats/internal/model"

// Engine computes trend reports for a fixed milestone configuration.
type Engine struct {
	// Milestones maps a metric name to ascending thresholds.
	Milestones map[string][]int64
}

// NewEngine creates an Engine.
func NewEngine(milestones map[string][]int64) *Engine {
	return &Engine{Milestones: milestones}
}

// Evaluate builds the report for current against series. series is expected
// to already contain current (the store appends it before trends run).
func (e *Engine) Evaluate(series model.Series, current model.Snapshot, today model.Date) *model.Report {
	report := &model.Report{Today: today, Points: len(series)}
	if series.DistinctDates() < 2 {
		report.Status = model.StatusInsufficientData
		return report
	}
	report.Status = model.StatusOK

	for _, name := range current.MetricNames() {
		report.Metrics = append(report.Metrics, e.metricTrend(series, name, current.Metrics[name], today))
	}
	report.MostActive = RankProjects(series, current, today)
	return report
}

func (e *Engine) metricTrend(series model.Series, name string, current int64, today model.Date) model.MetricTrend {
	p := model.Metric(name)
	mt := model.MetricTrend{
		Metric:  name,
		Current: current,
		Windows: WindowStats(series, p, current, today),
	}
	if at, ok := AllTimeStat(series, p, current, today); ok {
		mt.AllTime = &at
	}
	if avg, source, ok := BestAverage(mt.Windows, mt.AllTime); ok {
		mt.BestAvg = avg
		mt.BestSource = source
		mt.Milestones = ProjectMilestones(current, avg, e.Milestones[name], today)
	}
	if beta, ok := Slope(series, p, today); ok {
		mt.Slope = &beta
	}
	return mt
}
