// Package reaper runs the single long-lived task that evicts silent peers
// from the Active Peer Table.
package reaper

import (
	"context"
	"time"

	"github.com/nilsio/trackerd/internal/logger"
	"github.com/nilsio/trackerd/pkg/metrics"
	"github.com/nilsio/trackerd/pkg/session"
)

// DefaultInterval and DefaultThreshold match the tracker's fixed eviction
// schedule: every 60 s, drop sessions idle longer than 120 s.
const (
	DefaultInterval  = 60 * time.Second
	DefaultThreshold = 120 * time.Second
)

// Reaper periodically evicts Active Peer Table entries whose last heartbeat
// is older than Threshold. Eviction is silent: no storage mutation occurs,
// and evicted peers simply stop being found by subsequent authentication.
type Reaper struct {
	table     *session.Table
	interval  time.Duration
	threshold time.Duration
	metrics   metrics.TrackerMetrics
	stopCh    chan struct{}
	stopped   chan struct{}
}

// New constructs a Reaper over table. A zero interval or threshold falls
// back to the tracker's defaults. m may be nil to disable metrics.
func New(table *session.Table, interval, threshold time.Duration, m metrics.TrackerMetrics) *Reaper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Reaper{
		table:     table,
		interval:  interval,
		threshold: threshold,
		metrics:   m,
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// Start begins the background eviction loop. It runs until ctx is cancelled
// or Stop is called. A panic inside one sweep is recovered so the loop keeps
// running on subsequent ticks.
func (r *Reaper) Start(ctx context.Context) {
	go func() {
		defer close(r.stopped)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		logger.Info("reaper started", "interval", r.interval, "threshold", r.threshold)

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

// Stop signals the eviction loop to stop and waits for it to exit.
func (r *Reaper) Stop() {
	select {
	case <-r.stopCh:
		return
	default:
		close(r.stopCh)
	}
	<-r.stopped
}

func (r *Reaper) sweep() {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("reaper: recovered from panic during sweep", "panic", rec)
		}
	}()

	evicted := r.table.EvictStale(time.Now(), r.threshold)
	if len(evicted) > 0 {
		logger.Info("reaper evicted idle sessions", logger.EvictedCount(len(evicted)), logger.ActiveCount(r.table.Size()))
	}
	if r.metrics != nil {
		r.metrics.RecordReaperSweep(len(evicted))
		r.metrics.SetActiveSessions(r.table.Size())
	}
}
