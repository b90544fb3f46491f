package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("simulation failed")
		os.Exit(1)
	}
}
