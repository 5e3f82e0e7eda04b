// Package history persists the rolling daily Series of snapshots together with
// the last computed trend report.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"ComputeStats/internal/atomicfile"
	"ComputeStats/internal/model"
)

// DefaultRetentionDays bounds how far back the series reaches.
const DefaultRetentionDays = 365

// File is the on-disk document.
type File struct {
	Series     model.Series  `json:"series"`
	LastReport *model.Report `json:"last_report,omitempty"`
}

// Store owns the history file.
type Store struct {
	path          string
	retentionDays int
}

// NewStore creates a Store for path. A non-positive retention uses DefaultRetentionDays.
func NewStore(path string, retentionDays int) *Store {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Store{path: path, retentionDays: retentionDays}
}

func (s *Store) Path() string        { return s.path }
func (s *Store) RetentionDays() int { return s.retentionDays }

// Load reads the history file. A missing or unreadable file yields an empty
// history; that is logged and never returned as an error.
func (s *Store) Load() File {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("path", s.path).Msg("no history file yet, starting empty")
		} else {
			log.Warn().Err(err).Str("path", s.path).Msg("read history failed, starting empty")
		}
		return File{Series: model.Series{}}
	}
	// The report is decoded separately so a bad report never costs the series.
	var raw struct {
		Series     model.Series    `json:"series"`
		LastReport json.RawMessage `json:"last_report"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("history file is corrupt, starting empty")
		return File{Series: model.Series{}}
	}
	f := File{Series: normalize(raw.Series)}
	if len(raw.LastReport) > 0 && string(raw.LastReport) != "null" {
		var report model.Report
		if err := json.Unmarshal(raw.LastReport, &report); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("last report is unreadable, dropping it")
		} else {
			f.LastReport = &report
		}
	}
	return f
}

// AppendOrReplace inserts snap into series, replacing any entry of the same
// date, and trims entries older than today minus the retention window. The
// input slice is not modified.
func (s *Store) AppendOrReplace(series model.Series, snap model.Snapshot, today model.Date) model.Series {
	out := make(model.Series, 0, len(series)+1)
	out = append(out, series...)
	out = append(out, snap)
	out = normalize(out)

	cutoff := today.AddDays(-s.retentionDays)
	kept := out[:0]
	for _, e := range out {
		if e.Date.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// Save writes f to a temp file next to the target and renames it into place,
// so an interrupted write never replaces the previous good copy.
func (s *Store) Save(f File) error {
	if f.Series == nil {
		f.Series = model.Series{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	data = append(data, '\n')
	return atomicfile.Write(s.path, data, 0o644)
}

// normalize sorts by date and keeps the last occurrence of each date.
func normalize(series model.Series) model.Series {
	byDate := make(map[model.Date]int, len(series))
	out := make(model.Series, 0, len(series))
	for _, snap := range series {
		if i, ok := byDate[snap.Date]; ok {
			out[i] = snap
			continue
		}
		byDate[snap.Date] = len(out)
		out = append(out, snap)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
