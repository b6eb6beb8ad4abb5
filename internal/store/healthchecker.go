package store

import (
	"context"
	"time"

	"github.com/machi-events/eventfinder/internal/health"
	"github.com/rs/zerolog"
)

// storePinger prefers a driver's own HealthPing and otherwise falls back to a
// catalog read, which every driver supports.
type storePinger struct{ st Store }

func (p storePinger) HealthPing(ctx context.Context) error {
	if hp, ok := p.st.(health.HealthPinger); ok {
		return hp.HealthPing(ctx)
	}
	_, err := p.st.Districts().List(ctx)
	return err
}

// NewStoreHealthChecker creates a checker named "store" for st.
func NewStoreHealthChecker(st Store, log zerolog.Logger, probeTimeout time.Duration) *health.PingChecker {
	return health.NewPingChecker("store", storePinger{st: st}, log, probeTimeout)
}
