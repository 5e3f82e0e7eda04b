package model

import "sort"

// Well-known aggregate metric names.
const (
	MetricTotalCredits       = "total_credits"
	MetricProvidersReporting = "providers_reporting"
)

// Snapshot is one day's cumulative counters across all tracked providers.
// A missing key means "not reported", which is not the same as zero.
type Snapshot struct {
	Date     Date             `json:"date"`
	Metrics  map[string]int64 `json:"metrics"`
	Projects map[string]int64 `json:"projects,omitempty"`
}

// NewSnapshot returns an empty snapshot for the given day.
func NewSnapshot(date Date) Snapshot {
	return Snapshot{Date: date, Metrics: map[string]int64{}, Projects: map[string]int64{}}
}

// Lookup returns the value addressed by p and whether it was present.
func (s Snapshot) Lookup(p Path) (int64, bool) {
	src := s.Metrics
	if p.Project {
		src = s.Projects
	}
	v, ok := src[p.Key]
	return v, ok
}

// MetricNames returns the metric keys in ascending order.
func (s Snapshot) MetricNames() []string { return sortedKeys(s.Metrics) }

// ProjectKeys returns the project keys in ascending order.
func (s Snapshot) ProjectKeys() []string { return sortedKeys(s.Projects) }

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Date: s.Date, Metrics: make(map[string]int64, len(s.Metrics))}
	for k, v := range s.Metrics {
		out.Metrics[k] = v
	}
	if s.Projects != nil {
		out.Projects = make(map[string]int64, len(s.Projects))
		for k, v := range s.Projects {
			out.Projects[k] = v
		}
	}
	return out
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path addresses either a top-level metric or a per-project counter.
type Path struct {
	Project bool
	Key     string
}

// Metric addresses a top-level metric such as "total_credits".
func Metric(name string) Path { return Path{Key: name} }

// Project addresses the cumulative counter of one sub-project.
func Project(key string) Path { return Path{Project: true, Key: key} }

func (p Path) String() string {
	if p.Project {
		return "projects." + p.Key
	}
	return p.Key
}

// Series is a date-ordered list of snapshots with at most one entry per day.
type Series []Snapshot

// DistinctDates counts unique dates in the series.
func (s Series) DistinctDates() int {
	seen := make(map[Date]struct{}, len(s))
	for _, snap := range s {
		seen[snap.Date] = struct{}{}
	}
	return len(seen)
}

// Latest returns the most recent snapshot, if any.
func (s Series) Latest() (Snapshot, bool) {
	if len(s) == 0 {
		return Snapshot{}, false
	}
	return s[len(s)-1], true
}
