package recorder

import "ComputeStats/internal/model"

// Recorder mirrors run results into a queryable store for dashboards.
type Recorder interface {
	RecordSnapshot(snap *model.Snapshot) error
	RecordReport(report *model.Report) error
	Close() error
}
