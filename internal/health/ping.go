package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger can be implemented by components to expose a specialized
// health check. HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// PingChecker polls a HealthPinger and caches the result. It starts unhealthy
// until the first successful probe.
type PingChecker struct {
	name         string
	target       HealthPinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewPingChecker creates a checker named name that probes target.
func NewPingChecker(name string, target HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &PingChecker{name: name, target: target, log: log, probeTimeout: probeTimeout}
}

func (c *PingChecker) Name() string { return c.name }

// IsHealthy returns the cached health status (non-blocking).
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start begins periodic health checking until ctx is cancelled.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Check runs a single probe and updates the cached status.
func (c *PingChecker) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	if err := c.target.HealthPing(probeCtx); err != nil {
		if c.healthy.Swap(0) == 1 {
			c.log.Error().Stack().Str("checker", c.name).Err(err).Msg("health check failed")
		}
		return false
	}
	if c.healthy.Swap(1) == 0 {
		c.log.Info().Str("checker", c.name).Msg("health check passed")
	}
	return true
}
