package main

import (
	"github.com/rs/zerolog/log"

	"ComputeStats/internal/collector"
	"ComputeStats/internal/config"
	"ComputeStats/internal/history"
	"ComputeStats/internal/notifier"
	"ComputeStats/internal/pipeline"
	"ComputeStats/internal/recorder"
	"ComputeStats/internal/trend"
)

// buildCollector constructs a fetcher per configured provider. Providers
// without an identity are listed as unconfigured instead.
func buildCollector(cfg *config.Config) *collector.Collector {
	var fetchers []collector.Fetcher
	var skipped []collector.Unconfigured

	if cfg.FAHConfigured() {
		fetchers = append(fetchers, collector.NewFAHFetcher(cfg.Providers.FAH.BaseURL, cfg.Providers.FAH.Username, cfg.Proxy))
	} else {
		skipped = append(skipped, collector.Unconfigured{Key: "fah", Name: "Folding@home", Reason: "FAH_USERNAME not set"})
	}

	wcg := cfg.Providers.WCG
	if cfg.WCGConfigured() {
		fetchers = append(fetchers, collector.NewWCGFetcher(wcg.BaseURL, wcg.MemberName, wcg.VerificationCode, cfg.Proxy))
	} else {
		skipped = append(skipped, collector.Unconfigured{Key: "wcg", Name: "World Community Grid", Reason: "WCG_MEMBER_NAME or WCG_VERIFICATION_CODE not set"})
	}

	for _, p := range cfg.Providers.BOINC {
		if p.Configured() {
			fetchers = append(fetchers, collector.NewBOINCFetcher(p.Key, p.Name, p.URL, p.UserID, cfg.Proxy))
			continue
		}
		skipped = append(skipped, collector.Unconfigured{Key: p.Key, Name: p.Name, Reason: "url or user_id not set"})
	}

	for _, u := range skipped {
		log.Warn().Str("provider", u.Key).Str("reason", u.Reason).Msg("provider not configured, skipping")
	}
	return collector.NewCollector(fetchers, skipped, cfg.Fetch.Timeout)
}

// buildRunner wires a pipeline from cfg. The returned close func releases the
// recorder and must be called once the runner is no longer used.
func buildRunner(cfg *config.Config) (*pipeline.Runner, func() error) {
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	runner := &pipeline.Runner{
		Collector: buildCollector(cfg),
		Store:     history.NewStore(cfg.History.File, cfg.History.RetentionDays),
		Engine:    trend.NewEngine(cfg.Milestones),
		Readme: pipeline.Readme{
			Path:        cfg.Readme.Path,
			StartMarker: cfg.Readme.StartMarker,
			EndMarker:   cfg.Readme.EndMarker,
		},
		Recorder:     rec,
		TextfilePath: cfg.Metrics.TextfilePath,
	}
	if cfg.TelegramEnabled() {
		runner.Notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}
	return runner, rec.Close
}
