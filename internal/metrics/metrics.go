// Package metrics exposes bookkeeping counters to Prometheus. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors used across the service.
type Metrics struct {
	postings      *prometheus.CounterVec
	compensations prometheus.Counter
	balanced      prometheus.Gauge
	difference    prometheus.Gauge
	requests      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hgb",
			Name:      "postings_total",
			Help:      "Processed double-entry postings by classification and result.",
		}, []string{"classification", "result"}),
		compensations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hgb",
			Name:      "posting_compensations_total",
			Help:      "First legs rolled back after the second leg failed.",
		}),
		balanced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hgb",
			Name:      "bilanz_balanced",
			Help:      "1 if the last computed Bilanz was balanced, else 0.",
		}),
		difference: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hgb",
			Name:      "bilanz_difference",
			Help:      "Aktiva minus Passiva of the last computed Bilanz.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hgb",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.postings, m.compensations, m.balanced, m.difference, m.requests)
	return m
}

// ObservePosting counts a posting attempt.
func (m *Metrics) ObservePosting(classification string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.postings.WithLabelValues(classification, result).Inc()
}

// ObserveCompensation counts a rolled-back first leg.
func (m *Metrics) ObserveCompensation() {
	if m == nil {
		return
	}
	m.compensations.Inc()
}

// ObserveBilanz records the outcome of a Bilanz computation.
func (m *Metrics) ObserveBilanz(balanced bool, difference float64) {
	if m == nil {
		return
	}
	if balanced {
		m.balanced.Set(1)
	} else {
		m.balanced.Set(0)
	}
	m.difference.Set(difference)
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}
