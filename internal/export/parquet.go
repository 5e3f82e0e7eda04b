// Package export flattens the history series into Parquet for offline analysis.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"ComputeStats/internal/model"
)

const (
	KindMetric  = "metric"
	KindProject = "project"
)

// Row is one counter value on one day.
type Row struct {
	Date  string `parquet:"date,snappy,dict"`
	Kind  string `parquet:"kind,snappy,dict"`
	Name  string `parquet:"name,snappy,dict"`
	Value int64  `parquet:"value,snappy"`
}

// Rows flattens series in date order, metrics before projects, keys ascending.
func Rows(series model.Series) []Row {
	var rows []Row
	for _, snap := range series {
		date := snap.Date.String()
		for _, name := range snap.MetricNames() {
			rows = append(rows, Row{Date: date, Kind: KindMetric, Name: name, Value: snap.Metrics[name]})
		}
		for _, key := range snap.ProjectKeys() {
			rows = append(rows, Row{Date: date, Kind: KindProject, Name: key, Value: snap.Projects[key]})
		}
	}
	return rows
}

// WriteParquet writes the flattened series to path and returns the row count.
func WriteParquet(path string, series model.Series) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	rows := Rows(series)
	writer := parquet.NewGenericWriter[Row](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return 0, fmt.Errorf("write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("close parquet writer: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("close output file: %w", err)
	}
	return len(rows), nil
}
