package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ComputeStats/internal/model"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch today's stats once, update history and the README, then exit.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		runner, closeRecorder := buildRunner(cfg)
		defer func() {
			if err := closeRecorder(); err != nil {
				log.Warn().Err(err).Msg("close recorder")
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := runner.Run(ctx, model.DateOf(time.Now()))
		if res != nil {
			if perr := printRunSummary(cmd.OutOrStdout(), res); perr != nil {
				log.Warn().Err(perr).Msg("print summary")
			}
		}
		if err != nil {
			return err
		}
		if res.Reporting == 0 && res.Report.Points == 0 {
			return errors.New("no provider reported and no history is available")
		}
		return nil
	},
}
