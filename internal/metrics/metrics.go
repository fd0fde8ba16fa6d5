// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HistoryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_cache_hits_total",
			Help: "Uploads served from the parsed-history cache",
		},
	)

	HistoryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_cache_misses_total",
			Help: "Uploads that had to be parsed",
		},
	)

	HistoryCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "history_cache_entries",
			Help: "Parsed histories currently cached",
		},
	)

	HistoryCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_cache_evictions_total",
			Help: "Parsed histories evicted from the cache",
		},
	)

	Parses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_parses_total",
			Help: "Listening-history parses by outcome",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	ParsedEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "history_parsed_entries",
			Help:    "Entries per successfully parsed upload",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8),
		},
	)

	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Catalog lookups by resolver, kind and outcome",
		},
		[]string{"resolver", "kind", "outcome"}, // outcome: "found", "not_found", "error"
	)

	CatalogCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Catalog circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordParse records the outcome of parsing one upload.
func RecordParse(entries int, err error) {
	if err != nil {
		Parses.WithLabelValues("error").Inc()
		return
	}
	Parses.WithLabelValues("ok").Inc()
	ParsedEntries.Observe(float64(entries))
}
