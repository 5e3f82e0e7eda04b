package main

import (
	"errors"

	"github.com/spf13/cobra"

	"ComputeStats/internal/history"
	"ComputeStats/internal/recorder"
)

var (
	showHistory string
	showProject bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last computed trend report, or a counter's archived history.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		if showHistory == "" {
			f := history.NewStore(cfg.History.File, cfg.History.RetentionDays).Load()
			return printReport(cmd.OutOrStdout(), f)
		}

		if cfg.Database.SQLitePath == "" {
			return errors.New("--history needs database.sqlite_path (SQLITE_PATH)")
		}
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer rec.Close()

		kind := recorder.KindMetric
		if showProject {
			kind = recorder.KindProject
		}
		points, err := rec.MetricHistory(kind, showHistory)
		if err != nil {
			return err
		}
		return printArchive(cmd.OutOrStdout(), showHistory, points)
	},
}

func init() {
	showCmd.Flags().StringVar(&showHistory, "history", "", "print the archived values of this metric from SQLite")
	showCmd.Flags().BoolVar(&showProject, "project", false, "treat --history as a project key")
}
