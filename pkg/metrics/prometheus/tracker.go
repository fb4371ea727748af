package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nilsio/trackerd/pkg/metrics"
)

// trackerMetrics is the Prometheus implementation of metrics.TrackerMetrics.
type trackerMetrics struct {
	activeSessions   prometheus.Gauge
	registeredFiles  prometheus.Gauge
	loginTotal       *prometheus.CounterVec
	loginDuration    *prometheus.HistogramVec
	rpcTotal         *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
	reaperSweeps     prometheus.Counter
	reaperEvictTotal prometheus.Counter
}

// NewTrackerMetrics creates a Prometheus-backed TrackerMetrics instance.
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewTrackerMetrics() *trackerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &trackerMetrics{
		activeSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "trackerd_active_sessions",
			Help: "Current number of live sessions in the Active Peer Table.",
		}),
		registeredFiles: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "trackerd_registered_files",
			Help: "Current number of UserFile rows across all owners.",
		}),
		loginTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trackerd_login_total",
			Help: "Total Login/Resume calls by outcome tag.",
		}, []string{"outcome"}),
		loginDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trackerd_login_duration_seconds",
			Help:    "Login/Resume call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		rpcTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trackerd_rpc_total",
			Help: "Total tracker RPC calls by operation and outcome tag.",
		}, []string{"operation", "outcome"}),
		rpcDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trackerd_rpc_duration_seconds",
			Help:    "Tracker RPC latency in seconds by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		reaperSweeps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trackerd_reaper_sweeps_total",
			Help: "Total Reaper sweeps performed.",
		}),
		reaperEvictTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trackerd_reaper_evictions_total",
			Help: "Total sessions evicted by the Reaper.",
		}),
	}
}

func (m *trackerMetrics) SetActiveSessions(count int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(count))
}

func (m *trackerMetrics) RecordLogin(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.loginTotal.WithLabelValues(outcome).Inc()
	m.loginDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *trackerMetrics) RecordRPC(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.rpcTotal.WithLabelValues(operation, outcome).Inc()
	m.rpcDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *trackerMetrics) SetRegisteredFiles(count int) {
	if m == nil {
		return
	}
	m.registeredFiles.Set(float64(count))
}

func (m *trackerMetrics) RecordReaperSweep(evicted int) {
	if m == nil {
		return
	}
	m.reaperSweeps.Inc()
	if evicted > 0 {
		m.reaperEvictTotal.Add(float64(evicted))
	}
}
