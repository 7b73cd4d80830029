// Package metrics exposes Prometheus instrumentation for host-ops. Collectors
// register on the default registry at init and are served by the /metrics
// endpoint of the API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trly/host-ops/internal/apperr"
)

var (
	// ScansTotal counts completed site-directory scans.
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostops_scans_total",
		Help: "Completed site directory scans.",
	})

	// ScannedSites counts scanned site files by outcome (new, duplicate, error).
	ScannedSites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostops_scanned_sites_total",
		Help: "Scanned site files by outcome.",
	}, []string{"status"})

	// ConfigUpdates counts live configuration update transactions by outcome
	// (committed, rolled_back, failed).
	ConfigUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostops_config_updates_total",
		Help: "Live configuration updates by outcome.",
	}, []string{"outcome"})

	// ValidatorFailures counts rejections by the external syntax validator.
	ValidatorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostops_validator_failures_total",
		Help: "External configuration validator rejections.",
	})

	// HTTPRequests counts API requests by method, route, and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostops_http_requests_total",
		Help: "API requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks API request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hostops_http_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	unitValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostops_unit_validations_total",
		Help: "Service unit validations by outcome.",
	}, []string{"outcome"})
)

// ObserveUnitValidation records one unit validation, labeled "ok" on success
// and with the taxonomy code on failure.
func ObserveUnitValidation(err error) {
	if err == nil {
		unitValidations.WithLabelValues("ok").Inc()
		return
	}
	unitValidations.WithLabelValues(string(apperr.From(err).Code)).Inc()
}
