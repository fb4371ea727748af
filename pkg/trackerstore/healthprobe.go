package trackerstore

import (
	"context"
	"time"

	"github.com/nilsio/trackerd/internal/logger"
)

// DefaultProbeInterval is how often HealthProbe pings the underlying connection.
const DefaultProbeInterval = 10 * time.Second

// HealthProbe periodically pings the Persistence Gateway's connection and
// keeps GORMStore.IsHealthy current for the /health/ready endpoint. Queries
// are not gated on it: a call made while the connection is down still goes
// to the database and fails with the driver's error. Loss is
// silent: the probe just keeps retrying on its own schedule until the
// connection recovers.
type HealthProbe struct {
	store    *GORMStore
	interval time.Duration
	stopCh   chan struct{}
	stopped  chan struct{}
}

// NewHealthProbe creates a HealthProbe for store. If interval is 0,
// DefaultProbeInterval is used.
func NewHealthProbe(store *GORMStore, interval time.Duration) *HealthProbe {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &HealthProbe{
		store:    store,
		interval: interval,
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins the background polling goroutine. It runs until ctx is
// cancelled or Stop is called.
func (p *HealthProbe) Start(ctx context.Context) {
	go func() {
		defer close(p.stopped)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		logger.Info("storage health probe started", "interval", p.interval)

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.probe(ctx)
			}
		}
	}()
}

// Stop signals the polling goroutine to stop and waits for it to exit.
func (p *HealthProbe) Stop() {
	select {
	case <-p.stopCh:
		return
	default:
		close(p.stopCh)
	}
	<-p.stopped
}

func (p *HealthProbe) probe(ctx context.Context) {
	wasHealthy := p.store.IsHealthy()

	err := p.store.Healthcheck(ctx)
	p.store.setHealthy(err == nil)

	if err != nil && wasHealthy {
		logger.Error("storage health probe: connection lost", logger.Err(err))
	} else if err == nil && !wasHealthy {
		logger.Info("storage health probe: connection recovered")
	}
}
