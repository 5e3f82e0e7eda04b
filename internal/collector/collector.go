package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ComputeStats/internal/model"
)

// Unconfigured names a provider that was skipped for lack of an identity.
type Unconfigured struct {
	Key    string
	Name   string
	Reason string
}

// Collector runs every configured fetcher in parallel and folds the results
// into a snapshot.
type Collector struct {
	Fetchers     []Fetcher
	Unconfigured []Unconfigured
	Timeout      time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetchers []Fetcher, unconfigured []Unconfigured, timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Collector{Fetchers: fetchers, Unconfigured: unconfigured, Timeout: timeout}
}

// Collect fetches all providers concurrently, each under its own timeout. A
// failing provider yields a failed record; it never cancels the others.
// Records come back in fetcher order followed by unconfigured providers.
func (c *Collector) Collect(ctx context.Context) []*model.ProviderRecord {
	records := make([]*model.ProviderRecord, len(c.Fetchers))
	var g errgroup.Group
	for i, f := range c.Fetchers {
		g.Go(func() error {
			records[i] = c.fetchOne(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	for _, u := range c.Unconfigured {
		records = append(records, &model.ProviderRecord{
			Key:    u.Key,
			Name:   u.Name,
			Status: model.ProviderNotConfigured,
			Err:    u.Reason,
		})
	}
	return records
}

func (c *Collector) fetchOne(ctx context.Context, f Fetcher) *model.ProviderRecord {
	fctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	rec, err := f.Fetch(fctx)
	if err != nil {
		log.Warn().Err(err).Str("provider", f.Key()).Str("identity", f.Identity()).Msg("fetch failed, provider degraded")
		return &model.ProviderRecord{
			Key:       f.Key(),
			Name:      f.Name(),
			Identity:  f.Identity(),
			Status:    model.ProviderFailed,
			Err:       err.Error(),
			FetchedAt: time.Now(),
		}
	}
	log.Info().Str("provider", f.Key()).Int64("credit", rec.Credit).Dur("took", time.Since(start)).Msg("fetched provider stats")
	return rec
}

// Build folds provider records into a snapshot for date. Only successful
// records contribute; failed providers leave their metrics absent. Windowed
// records count as reporting but add no counters.
func Build(date model.Date, records []*model.ProviderRecord) model.Snapshot {
	snap := model.NewSnapshot(date)
	var total, reporting, credited int64
	for _, rec := range records {
		if rec == nil || rec.Status != model.ProviderOK {
			continue
		}
		reporting++
		if rec.Windowed {
			continue
		}
		credited++
		total += rec.Credit
		for name, v := range rec.Metrics {
			snap.Metrics[rec.Key+"_"+name] = v
		}
		for key, v := range rec.Projects {
			snap.Projects[key] = v
		}
	}
	if credited > 0 {
		snap.Metrics[model.MetricTotalCredits] = total
	}
	if reporting > 0 {
		snap.Metrics[model.MetricProvidersReporting] = reporting
	}
	return snap
}

// Reporting counts records that fetched successfully.
func Reporting(records []*model.ProviderRecord) int {
	n := 0
	for _, rec := range records {
		if rec != nil && rec.Status == model.ProviderOK {
			n++
		}
	}
	return n
}
