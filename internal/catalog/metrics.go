// Path: internal/catalog/metrics.go
package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments upstream calls. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the catalog collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pokedex",
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Upstream catalog requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pokedex",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Latency of upstream catalog requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(endpoint, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}
