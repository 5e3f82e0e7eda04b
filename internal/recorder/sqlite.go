package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"ComputeStats/internal/model"
)

// Row kinds in snapshot_metrics.
const (
	KindMetric  = "metric"
	KindProject = "project"
)

// SQLiteRecorder persists snapshots and reports to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshot_metrics (
			date  TEXT    NOT NULL,
			kind  TEXT    NOT NULL,
			name  TEXT    NOT NULL,
			value INTEGER NOT NULL,
			PRIMARY KEY (date, kind, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_name ON snapshot_metrics(kind, name, date)`,

		`CREATE TABLE IF NOT EXISTS trend_reports (
			date   TEXT PRIMARY KEY,
			status TEXT    NOT NULL,
			points INTEGER NOT NULL,
			body   TEXT    NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSnapshot replaces every row of the snapshot's date, so a re-run on
// the same day leaves exactly one copy.
func (r *SQLiteRecorder) RecordSnapshot(snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	date := snap.Date.String()
	if _, err := tx.Exec(`DELETE FROM snapshot_metrics WHERE date = ?`, date); err != nil {
		return fmt.Errorf("clear %s: %w", date, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO snapshot_metrics (date, kind, name, value) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for name, v := range snap.Metrics {
		if _, err := stmt.Exec(date, KindMetric, name, v); err != nil {
			return fmt.Errorf("insert metric %s: %w", name, err)
		}
	}
	for key, v := range snap.Projects {
		if _, err := stmt.Exec(date, KindProject, key, v); err != nil {
			return fmt.Errorf("insert project %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordReport(report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = r.db.Exec(`INSERT INTO trend_reports (date, status, points, body) VALUES (?,?,?,?)
		ON CONFLICT(date) DO UPDATE SET status = excluded.status, points = excluded.points, body = excluded.body`,
		report.Today.String(), string(report.Status), report.Points, string(body),
	)
	return err
}

// Point is one archived value.
type Point struct {
	Date  model.Date
	Value int64
}

// MetricHistory returns the archived values of one counter, oldest first. The
// archive is not trimmed, so it can reach further back than the history file.
func (r *SQLiteRecorder) MetricHistory(kind, name string) ([]Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT date, value FROM snapshot_metrics WHERE kind = ? AND name = ? ORDER BY date`, kind, name)
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", kind, name, err)
	}
	defer rows.Close()
	var out []Point
	for rows.Next() {
		var day string
		var p Point
		if err := rows.Scan(&day, &p.Value); err != nil {
			return nil, err
		}
		if p.Date, err = model.ParseDate(day); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
