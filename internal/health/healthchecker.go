package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// StoreChecker periodically pings the session store and caches the result so
// the health endpoint never blocks on a slow database.
type StoreChecker struct {
	pinger  Pinger
	healthy atomic.Int32
	log     zerolog.Logger
}

// NewStoreChecker wraps a Pinger. The checker starts unhealthy until the
// first successful ping.
func NewStoreChecker(log zerolog.Logger, p Pinger) *StoreChecker {
	c := &StoreChecker{pinger: p, log: log}
	c.healthy.Store(0)
	return c
}

// IsHealthy returns the cached store health.
func (c *StoreChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start evaluates store health on the given interval until ctx is done.
func (c *StoreChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(-1)
	eval := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := c.pinger.HealthPing(pingCtx)
		cancel()

		cur := int32(1)
		if err != nil {
			cur = 0
		}
		c.healthy.Store(cur)
		if cur != prev {
			if cur == 1 {
				c.log.Info().Msg("store health: UP")
			} else {
				c.log.Error().Err(err).Msg("store health: DOWN")
			}
			prev = cur
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
