package main

import (
	"os"

	"github.com/RoyceAzure/lab/shopcore/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("shopcore exited")
		os.Exit(1)
	}
}
