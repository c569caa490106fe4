package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Pricing lookup outcomes
const (
	OutcomeDiscounted   = "discounted"
	OutcomeNoDiscount   = "no_discount"
	OutcomeModelMissing = "model_missing"
	OutcomeError        = "error"
)

var (
	// HTTP
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	PanicsRecoveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_panics_recovered_total",
			Help: "Handler panics turned into 500 responses",
		},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Pricing engine
	PricingLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_lookups_total",
			Help: "Discount resolutions by outcome",
		},
		[]string{"outcome"},
	)
	PricingLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_lookup_duration_seconds",
			Help:    "Duration of discount resolution in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
	PricingCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_candidates",
			Help:    "Number of stored candidates considered per resolution",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Catalog model cache
	ModelCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_model_cache_results_total",
			Help: "Model reference cache lookups by result",
		},
		[]string{"result"},
	)

	// Worker
	DiscountsDeactivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "discounts_deactivated_total",
			Help: "Discounts switched off by the expiry sweep",
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers the app collectors with the default registry,
// which already carries the Go and process collectors.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPRequestsInFlight,
			PanicsRecoveredTotal,
			PricingLookupsTotal,
			PricingLookupDuration,
			PricingCandidates,
			ModelCacheResults,
			DiscountsDeactivatedTotal,
		)
	})
}
