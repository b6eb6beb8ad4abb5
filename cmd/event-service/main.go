package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/machi-events/eventfinder/eventservice"
)

func main() {
	if err := eventservice.Run(); err != nil {
		log.Error().Err(err).Msg("event-service exited with error")
		os.Exit(1)
	}
}
