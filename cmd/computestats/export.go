package main

import (
	"github.com/spf13/cobra"

	"ComputeStats/internal/export"
	"ComputeStats/internal/history"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the history series to a Parquet file.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		f := history.NewStore(cfg.History.File, cfg.History.RetentionDays).Load()
		n, err := export.WriteParquet(exportOut, f.Series)
		if err != nil {
			return err
		}
		cmd.Printf("Wrote %d rows from %d snapshots to %s\n", n, len(f.Series), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "history.parquet", "output Parquet file")
}
