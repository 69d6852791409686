// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gegenstand_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gegenstand_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gegenstand_sweep_runs_total",
		Help: "Reminder sweeps started.",
	})

	RemindersFiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gegenstand_reminders_fired_total",
		Help: "Notifications written by the reminder sweep.",
	})

	SweepFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gegenstand_sweep_failures_total",
		Help: "Per-item sweep failures by stage.",
	}, []string{"stage"})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gegenstand_sweep_duration_seconds",
		Help:    "Duration of reminder sweeps.",
		Buckets: prometheus.DefBuckets,
	})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gegenstand_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by route.",
	}, []string{"route"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
