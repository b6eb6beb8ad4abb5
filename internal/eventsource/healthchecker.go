package eventsource

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/machi-events/eventfinder/internal/health"
)

// NewHealthChecker creates a checker named "eventsource" for c.
func NewHealthChecker(c *Client, log zerolog.Logger, probeTimeout time.Duration) *health.PingChecker {
	return health.NewPingChecker("eventsource", c, log, probeTimeout)
}
