// Package metrics exposes the runtime core's operational surface: whether
// the upstream channel is connected, how deep the command queue is running,
// how many commands have been dispatched, and how long configuration syncs
// take.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agentcore"

// Metrics bundles the core's prometheus collectors behind a struct so they
// can be constructed once and handed to every subsystem that reports
// against them, rather than registered as package-level globals.
type Metrics struct {
	Connected          prometheus.Gauge
	CommandQueueDepth  prometheus.Gauge
	CommandsDispatched *prometheus.CounterVec
	ConfigSyncDuration prometheus.Histogram
}

// New builds the collector set without registering it. Call Register to
// attach it to a prometheus.Registerer.
func New() *Metrics {
	return &Metrics{
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channel_connected",
			Help:      "1 when the upstream collector channel is CONNECTED, 0 otherwise.",
		}),
		CommandQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "command_queue_depth",
			Help:      "Number of commands currently queued awaiting dispatch.",
		}),
		CommandsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_dispatched_total",
			Help:      "Commands dispatched to an executor, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ConfigSyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "config_sync_duration_seconds",
			Help:      "Duration of a single configuration-sync RPC round trip.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Register attaches every collector to reg. Panics on a duplicate
// registration, matching prometheus.MustRegister's contract.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.Connected, m.CommandQueueDepth, m.CommandsDispatched, m.ConfigSyncDuration)
}

// SetConnected records the Channel Manager's current state.
func (m *Metrics) SetConnected(connected bool) {
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}

// ObserveDispatch records one executor invocation.
func (m *Metrics) ObserveDispatch(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.CommandsDispatched.WithLabelValues(kind, outcome).Inc()
}

// ObserveConfigSync records the wall-clock cost of one poll round trip.
func (m *Metrics) ObserveConfigSync(d time.Duration) {
	m.ConfigSyncDuration.Observe(d.Seconds())
}
