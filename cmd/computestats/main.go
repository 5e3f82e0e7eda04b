// Command computestats collects volunteer-computing statistics, keeps a daily
// history and renders trends into a README section.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("computestats failed")
		os.Exit(1)
	}
}
