package health

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by component-level checkers (store, event source).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds its components into one service-level flag.
// The flag is false until the first evaluation.
type ServiceHealthChecker struct {
	up   atomic.Bool
	deps []HealthChecker
	log  zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log}
}

// IsHealthy returns the flag from the last evaluation.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.up.Load() }

// Components returns the cached health of every dependency keyed by name.
func (h *ServiceHealthChecker) Components() map[string]bool {
	out := make(map[string]bool, len(h.deps))
	for _, c := range h.deps {
		out[c.Name()] = c.IsHealthy()
	}
	return out
}

// down lists unhealthy components, sorted.
func (h *ServiceHealthChecker) down() []string {
	var names []string
	for _, c := range h.deps {
		if !c.IsHealthy() {
			names = append(names, c.Name())
		}
	}
	sort.Strings(names)
	return names
}

// evaluate refreshes the flag and logs when it or the set of failing
// components changes. It returns the new down set.
func (h *ServiceHealthChecker) evaluate(prevDown string) string {
	names := h.down()
	key := strings.Join(names, ",")
	wasUp := h.up.Swap(len(names) == 0)

	switch {
	case len(names) == 0 && !wasUp:
		h.log.Info().Msg("service health: UP")
	case len(names) > 0 && (wasUp || key != prevDown):
		h.log.Error().Strs("down", names).Msg("service health: DOWN")
	}
	return key
}

// Start re-evaluates every interval until ctx is cancelled.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// sentinel so the first DOWN is always logged
	last := h.evaluate("\x00")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last = h.evaluate(last)
		}
	}
}
