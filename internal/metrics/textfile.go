// Package metrics writes the latest counters in Prometheus text exposition
// format for node_exporter's textfile collector.
package metrics

import (
	"bytes"
	"fmt"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"ComputeStats/internal/atomicfile"
	"ComputeStats/internal/model"
)

const namespace = "computestats"

// Families builds the metric families for a snapshot and its report. report may be nil.
func Families(snap model.Snapshot, report *model.Report) []*dto.MetricFamily {
	metricFam := gaugeFamily(namespace+"_metric", "Cumulative counter reported by a provider.")
	for _, name := range snap.MetricNames() {
		metricFam.Metric = append(metricFam.Metric, gauge(float64(snap.Metrics[name]), "name", name))
	}

	projectFam := gaugeFamily(namespace+"_project_credit", "Cumulative credit per sub-project.")
	for _, key := range snap.ProjectKeys() {
		projectFam.Metric = append(projectFam.Metric, gauge(float64(snap.Projects[key]), "project", key))
	}

	out := []*dto.MetricFamily{metricFam, projectFam}

	if report != nil && report.Status == model.StatusOK {
		avgFam := gaugeFamily(namespace+"_avg_per_day", "Average daily gain over a lookback window.")
		for _, mt := range report.Metrics {
			for _, w := range mt.Windows {
				avgFam.Metric = append(avgFam.Metric, gauge(float64(w.AvgPerDay), "name", mt.Metric, "window", fmt.Sprintf("%dd", w.Days)))
			}
			if mt.AllTime != nil {
				avgFam.Metric = append(avgFam.Metric, gauge(float64(mt.AllTime.AvgPerDay), "name", mt.Metric, "window", "all_time"))
			}
		}
		out = append(out, avgFam)
	}

	points := gaugeFamily(namespace+"_history_points", "Snapshots in the retained history.")
	if report != nil {
		points.Metric = append(points.Metric, gauge(float64(report.Points)))
	}
	out = append(out, points)

	// Empty families are not valid exposition output.
	kept := out[:0]
	for _, f := range out {
		if len(f.Metric) > 0 {
			kept = append(kept, f)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].GetName() < kept[j].GetName() })
	return kept
}

// Encode renders families in the text exposition format.
func Encode(families []*dto.MetricFamily) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, f); err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

// WriteTextfile atomically replaces path with the exposition of snap and report.
func WriteTextfile(path string, snap model.Snapshot, report *model.Report) error {
	data, err := Encode(Families(snap, report))
	if err != nil {
		return err
	}
	return atomicfile.Write(path, data, 0o644)
}

func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// gauge builds a sample; labels are name/value pairs.
func gauge(v float64, labels ...string) *dto.Metric {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(v)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{Name: proto.String(labels[i]), Value: proto.String(labels[i+1])})
	}
	return m
}
