// Package metrics holds the process-wide Prometheus registry used by the
// tracker's domain metrics packages (pkg/metrics/prometheus). Collectors are
// registered against it lazily via promauto.With(GetRegistry()), so any
// package can declare metrics without needing to plumb the registry through
// constructors by hand.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry enables metrics collection and creates the process-wide
// registry. Safe to call more than once; later calls are no-ops.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(prometheus.NewGoCollector())
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called. Metrics
// constructors check this and return nil when disabled, so collection has
// zero overhead when metrics are off.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the process-wide registry, initializing it on first
// use. Intended for promauto.With(metrics.GetRegistry()) call sites.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return registry
}
