// Package pipeline wires one daily run: collect, snapshot, history, trends,
// README, then the secondary outputs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ComputeStats/internal/collector"
	"ComputeStats/internal/history"
	"ComputeStats/internal/metrics"
	"ComputeStats/internal/model"
	"ComputeStats/internal/notifier"
	"ComputeStats/internal/recorder"
	"ComputeStats/internal/render"
	"ComputeStats/internal/trend"
)

// Notifier delivers the per-run digest.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Readme locates the generated section inside the README.
type Readme struct {
	Path        string
	StartMarker string
	EndMarker   string
}

// Runner executes one collection run. Optional outputs are skipped when nil
// or empty.
type Runner struct {
	Collector    *collector.Collector
	Store        *history.Store
	Engine       *trend.Engine
	Readme       Readme
	Recorder     recorder.Recorder
	TextfilePath string
	Notifier     Notifier
	Now          func() time.Time
}

// Result summarizes a finished run.
type Result struct {
	Records   []*model.ProviderRecord
	Snapshot  model.Snapshot
	Report    *model.Report
	Reporting int
	Appended  bool
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run performs the run for today. Failing to persist history or the README
// is an error; recorder, textfile and notifier failures are only logged.
func (r *Runner) Run(ctx context.Context, today model.Date) (*Result, error) {
	log.Info().Str("date", today.String()).Int("providers", len(r.Collector.Fetchers)).Msg("run started")

	records := r.Collector.Collect(ctx)
	snap := collector.Build(today, records)
	res := &Result{Records: records, Snapshot: snap, Reporting: collector.Reporting(records)}

	file := r.Store.Load()
	series := file.Series
	current := snap
	if res.Reporting > 0 {
		series = r.Store.AppendOrReplace(series, snap, today)
		res.Appended = true
	} else if latest, ok := series.Latest(); ok {
		log.Warn().Str("latest", latest.Date.String()).Msg("no provider reported, history left unchanged")
		current = latest
	} else {
		log.Warn().Msg("no provider reported and history is empty")
	}

	res.Report = r.Engine.Evaluate(series, current, today)
	log.Info().Str("status", string(res.Report.Status)).Int("points", res.Report.Points).Msg("trends computed")

	if err := r.Store.Save(history.File{Series: series, LastReport: res.Report}); err != nil {
		return res, fmt.Errorf("save history: %w", err)
	}

	if r.Readme.Path != "" {
		section := render.Markdown(render.View{
			GeneratedAt: r.now(),
			Records:     records,
			Snapshot:    current,
			Report:      res.Report,
		})
		if err := render.UpdateFile(r.Readme.Path, section, r.Readme.StartMarker, r.Readme.EndMarker); err != nil {
			return res, fmt.Errorf("update readme: %w", err)
		}
		log.Info().Str("path", r.Readme.Path).Msg("readme updated")
	}

	r.secondary(ctx, res, current)
	return res, nil
}

func (r *Runner) secondary(ctx context.Context, res *Result, current model.Snapshot) {
	if r.Recorder != nil {
		if res.Appended {
			if err := r.Recorder.RecordSnapshot(&res.Snapshot); err != nil {
				log.Error().Err(err).Msg("record snapshot")
			}
		}
		if err := r.Recorder.RecordReport(res.Report); err != nil {
			log.Error().Err(err).Msg("record report")
		}
	}

	if r.TextfilePath != "" {
		if err := metrics.WriteTextfile(r.TextfilePath, current, res.Report); err != nil {
			log.Error().Err(err).Str("path", r.TextfilePath).Msg("write metrics textfile")
		}
	}

	if r.Notifier != nil {
		if err := r.Notifier.Send(ctx, notifier.FormatDigest(res.Snapshot, res.Report, res.Records)); err != nil {
			log.Error().Err(err).Msg("send notification")
		}
	}
}
