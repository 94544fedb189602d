package main

import (
	"github.com/rs/zerolog/log"

	"github.com/seedmask/seedmask/cmd/seedmask/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
