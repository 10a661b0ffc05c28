// Package metrics exposes bridge activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/wasm-bridge/marshal"
)

// Metrics counts bridged calls, staged bytes and ring wraps.
// It implements ring.Observer and marshal.Observer.
type Metrics struct {
	// reg is the Registerer used to create this set of metrics.
	reg prometheus.Registerer

	Calls       *prometheus.CounterVec
	StagedBytes *prometheus.CounterVec
	Wraps       prometheus.Counter
	Cursor      prometheus.Gauge
}

// NewMetrics creates a new set of metrics. Metrics will be registered to reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var m Metrics
	m.reg = reg

	m.Calls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasm_bridge",
		Name:      "calls_total",
		Help:      "Total number of bridged calls by function",
	}, []string{"function"})

	m.StagedBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasm_bridge",
		Name:      "staged_bytes_total",
		Help:      "Total number of record bytes copied across the boundary",
	}, []string{"direction"})

	m.Wraps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wasm_bridge",
		Name:      "ring_wraps_total",
		Help:      "Total number of times the ring cursor wrapped to the region start",
	})

	m.Cursor = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wasm_bridge",
		Name:      "ring_cursor_bytes",
		Help:      "Current ring cursor offset from the region base",
	})

	if reg != nil {
		reg.MustRegister(m.Calls, m.StagedBytes, m.Wraps, m.Cursor)
	}
	return &m
}

// Called implements marshal.Observer.
func (m *Metrics) Called(name string) {
	m.Calls.WithLabelValues(name).Inc()
}

// Copied implements marshal.Observer.
func (m *Metrics) Copied(dir marshal.Direction, n uint32) {
	m.StagedBytes.WithLabelValues(dir.String()).Add(float64(n))
}

// Allocated implements ring.Observer.
func (m *Metrics) Allocated(size, cursor uint32) {
	m.Cursor.Set(float64(cursor))
}

// Wrapped implements ring.Observer.
func (m *Metrics) Wrapped() {
	m.Wraps.Inc()
}
