package ttl

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shared-clipboard/internal/logs"
	"shared-clipboard/internal/metrics"
)

// Store defines the minimal contract required by the TTL cleaner
// This keeps the cleaner decoupled from the concrete store implementation
type Store interface {
	RemoveExpired() int
	NextExpiry() (time.Time, bool)
}

// Cleaner removes expired entries from the store.
//
// It sleeps until the earliest pending deadline, but never longer than
// interval, so a deadline is honoured even if the store clock drifts.
type Cleaner struct {
	store    Store
	interval time.Duration
	logger   *logs.Logger
	metrics  *metrics.Registry
	now      func() time.Time
}

// NewCleaner creates a new instance of TTL Cleaner
func NewCleaner(
	store Store,
	interval time.Duration,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Cleaner {
	return &Cleaner{
		store:    store,
		interval: interval,
		logger:   logger.With("ttl"),
		metrics:  reg,
		now:      time.Now,
	}
}

// Start runs the cleanup loop until the context is cancelled.
// It blocks and should typically be run in a separate goroutine.
func (c *Cleaner) Start(ctx context.Context) {
	timer := time.NewTimer(c.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			c.runOnce()
			timer.Reset(c.nextDelay())
		case <-ctx.Done():
			c.logger.Debug("ttl cleaner stopped")
			return
		}
	}
}

// nextDelay is the time until the earliest deadline, capped by interval.
func (c *Cleaner) nextDelay() time.Duration {
	at, ok := c.store.NextExpiry()
	if !ok {
		return c.interval
	}

	d := at.Sub(c.now())
	if d < 0 {
		return 0
	}
	if d > c.interval {
		return c.interval
	}
	return d
}

// runOnce performs a single cleanup cycle
func (c *Cleaner) runOnce() {
	c.metrics.Inc(metrics.TTLCleanupRunsTotal)

	removed := c.store.RemoveExpired()
	if removed > 0 {
		c.metrics.Add(metrics.TTLEntriesRemovedTotal, int64(removed))
		c.logger.Info("ttl cleaner removed expired entries", zap.Int("removed", removed))
	}
}
