package main

import (
	"os"

	"github.com/spf13/cobra"

	"ComputeStats/internal/config"
	"ComputeStats/internal/logger"
)

// Set by the linker at release time.
var version = "dev"

var (
	cfgPath string
	pretty  bool
)

var rootCmd = &cobra.Command{
	Use:           "computestats",
	Short:         "Track Folding@home, WCG and BOINC contributions and their trends.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultPath, "config file (env CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "human-readable log output")

	rootCmd.AddCommand(runCmd, serveCmd, showCmd, exportCmd)
}

// loadConfig reads the config and sets up logging. Commands that fetch pass
// validate so a config without any provider fails early.
func loadConfig(validate bool) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger.New(logger.Config{Level: cfg.LogLevel, Pretty: pretty})
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
