package recorder

import "ComputeStats/internal/model"

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(_ *model.Snapshot) error { return nil }
func (n *NoopRecorder) RecordReport(_ *model.Report) error     { return nil }
func (n *NoopRecorder) Close() error                           { return nil }
