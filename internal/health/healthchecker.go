// Package health aggregates component probes into one service-level flag.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by component-level checkers (store, remote
// backend). IsHealthy must be non-blocking; Start runs the probe loop.
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds component checkers into a single flag the
// health endpoint reads. The service is healthy only while every component
// is.
type ServiceHealthChecker struct {
	healthy atomic.Bool
	deps    []HealthChecker
	log     zerolog.Logger
}

// NewServiceHealthChecker starts in the unhealthy state; the first
// evaluation in Start flips it once all components report up.
func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log}
}

// IsHealthy returns the cached service health.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() }

// Start re-evaluates component health on the given interval until the
// context is cancelled. Transitions are logged once, not every tick.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := false
	eval := func() {
		up := true
		for _, dep := range h.deps {
			if !dep.IsHealthy() {
				up = false
				h.log.Warn().Str("component", dep.Name()).Msg("component unhealthy")
			}
		}
		h.healthy.Store(up)
		if up != prev {
			if up {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Msg("service health: DOWN")
			}
			prev = up
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
