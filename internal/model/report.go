package model

import "time"

// ReportStatus tells consumers whether trend figures were computed.
type ReportStatus string

const (
	StatusOK               ReportStatus = "ok"
	StatusInsufficientData ReportStatus = "insufficient_data"
)

// Report is the Trend Engine output. It is recomputed every run.
type Report struct {
	Status     ReportStatus      `json:"status"`
	Today      Date              `json:"today"`
	Points     int               `json:"points"`
	Metrics    []MetricTrend     `json:"metrics,omitempty"`
	MostActive []ProjectActivity `json:"most_active,omitempty"`
}

// Trend returns the trend for a metric name, or nil.
func (r *Report) Trend(metric string) *MetricTrend {
	if r == nil {
		return nil
	}
	for i := range r.Metrics {
		if r.Metrics[i].Metric == metric {
			return &r.Metrics[i]
		}
	}
	return nil
}

// WindowStat is the change of one metric over a lookback window.
type WindowStat struct {
	Days      int   `json:"days"`
	Delta     int64 `json:"delta"`
	AvgPerDay int64 `json:"avg_per_day"`
}

// AverageSource names the window a best daily average was taken from.
type AverageSource string

const (
	Source30Day   AverageSource = "30d"
	Source7Day    AverageSource = "7d"
	SourceAllTime AverageSource = "all_time"
)

// MetricTrend holds every derived figure for a single metric.
type MetricTrend struct {
	Metric     string        `json:"metric"`
	Current    int64         `json:"current"`
	Windows    []WindowStat  `json:"windows,omitempty"`
	AllTime    *WindowStat   `json:"all_time,omitempty"`
	BestAvg    int64         `json:"best_avg,omitempty"`
	BestSource AverageSource `json:"best_source,omitempty"`
	Milestones []Milestone   `json:"milestones,omitempty"`
	Slope      *float64      `json:"slope_per_day,omitempty"`
}

// Window returns the stat for the given window length, if computed.
func (m *MetricTrend) Window(days int) (WindowStat, bool) {
	for _, w := range m.Windows {
		if w.Days == days {
			return w, true
		}
	}
	return WindowStat{}, false
}

// Milestone is a projected arrival at a configured threshold.
type Milestone struct {
	Threshold     int64 `json:"threshold"`
	Remaining     int64 `json:"remaining"`
	DaysToReach   int64 `json:"days_to_reach"`
	EstimatedDate Date  `json:"estimated_date"`
}

// ProjectActivity is a sub-project ranked by its 30-day gain.
type ProjectActivity struct {
	Project string `json:"project"`
	Current int64  `json:"current"`
	Gain30d int64  `json:"gain_30d"`
}

// ProviderStatus is the outcome of one provider fetch.
type ProviderStatus string

const (
	ProviderOK            ProviderStatus = "ok"
	ProviderFailed        ProviderStatus = "failed"
	ProviderNotConfigured ProviderStatus = "not_configured"
)

// ProviderRecord is the normalized result of one provider fetch.
type ProviderRecord struct {
	Key       string           // metric prefix, e.g. "fah"
	Name      string           // display name, e.g. "Folding@home"
	Identity  string           // account the stats belong to
	Status    ProviderStatus
	Err       string
	Metrics   map[string]int64 // provider-local names, e.g. "score"
	Credit    int64            // contribution to total_credits
	Projects  map[string]int64
	FetchedAt time.Time

	// Windowed marks Metrics that summarize a bounded page of recent
	// results rather than lifetime counters. They are shown but never
	// stored in a snapshot.
	Windowed bool
}
