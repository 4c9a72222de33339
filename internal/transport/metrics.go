package transport

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks request volume and latency against the question bank.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "questionbank",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Requests issued to the question bank service.",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "questionbank",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Round trip time of question bank requests.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, status).Inc()
	m.duration.WithLabelValues(method).Observe(seconds)
}
