package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ComputeStats/internal/config"
	"ComputeStats/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run daily on a cron schedule and reload the config when it changes.",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		log.Info().Str("version", version).Msg("computestats starting")

		runner, closeRecorder := buildRunner(cfg)
		var closeMu sync.Mutex
		defer func() {
			closeMu.Lock()
			defer closeMu.Unlock()
			if err := closeRecorder(); err != nil {
				log.Warn().Err(err).Msg("close recorder")
			}
		}()

		// Context for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := scheduler.NewScheduler(ctx, runner)
		if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if cfg.Schedule.RunOnStart {
			log.Info().Msg("run_on_start enabled, executing daily task now")
			go func() {
				if _, err := sched.RunNow(); err != nil {
					log.Error().Err(err).Msg("initial run failed")
				}
			}()
		}

		activeCron := cfg.Schedule.DailyCron
		go func() {
			err := config.Watch(ctx, cfgPath, func(next *config.Config) {
				nextRunner, nextClose := buildRunner(next)
				sched.SetRunner(nextRunner)

				closeMu.Lock()
				prevClose := closeRecorder
				closeRecorder = nextClose
				closeMu.Unlock()
				if err := prevClose(); err != nil {
					log.Warn().Err(err).Msg("close previous recorder")
				}
				if next.Schedule.DailyCron != activeCron {
					log.Warn().Str("daily_cron", next.Schedule.DailyCron).Msg("schedule change takes effect after restart")
				}
			})
			if err != nil {
				log.Warn().Err(err).Msg("config watch disabled")
			}
		}()

		log.Info().Str("daily_cron", activeCron).Msg("computestats is running, press Ctrl+C to stop")
		<-ctx.Done()
		log.Info().Msg("shutdown signal received, stopping")
		return nil
	},
}
