// Package metrics exposes Prometheus counters for the listing API.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Toggle outcomes
const (
	OutcomeApplied      = "applied"
	OutcomeNoop         = "noop"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

// Metrics holds the custom collectors and the registry they live in
type Metrics struct {
	Registry       *prometheus.Registry
	TogglesTotal   *prometheus.CounterVec
	ToggleLatency  *prometheus.HistogramVec
	ListingsServed *prometheus.CounterVec
}

// New creates and registers the collectors under namespace
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	togglesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upvote_toggles_total",
		Help:      "Like and unlike requests by outcome.",
	}, []string{"direction", "outcome"})

	toggleLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upvote_toggle_latency_seconds",
		Help:      "Latency of the toggle write path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"direction"})

	listingsServed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_served_total",
		Help:      "Listings returned by list requests, by sort.",
	}, []string{"sort"})

	registry.MustRegister(
		togglesTotal,
		toggleLatency,
		listingsServed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry:       registry,
		TogglesTotal:   togglesTotal,
		ToggleLatency:  toggleLatency,
		ListingsServed: listingsServed,
	}
}

// ObserveToggle records one toggle request
func (m *Metrics) ObserveToggle(direction, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TogglesTotal.WithLabelValues(direction, outcome).Inc()
	m.ToggleLatency.WithLabelValues(direction).Observe(elapsed.Seconds())
}

// ObserveList records a served collection
func (m *Metrics) ObserveList(sort string, n int) {
	if m == nil {
		return
	}
	if sort == "" {
		sort = "default"
	}
	m.ListingsServed.WithLabelValues(sort).Add(float64(n))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
