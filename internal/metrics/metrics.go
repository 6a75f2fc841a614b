// Package metrics exposes the Prometheus collectors used across notifyhub.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Acquire modes used as label values on PoolAcquireFailures.
const (
	AcquireModeHealing = "healing"
	AcquireModeStrict  = "strict"
)

// Pool creation reasons used as label values on PoolsCreated.
const (
	PoolReasonInitial  = "initial"
	PoolReasonRecreate = "recreate"
)

var (
	PoolsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifyhub_db_pools_created_total",
		Help: "Total number of database connection pools built, by reason",
	}, []string{"reason"})
	PoolAcquireFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifyhub_db_acquire_failures_total",
		Help: "Total number of failed connection checkouts, by acquire mode",
	}, []string{"mode"})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifyhub_http_requests_total",
		Help: "Total number of HTTP requests served, by method, route pattern and status",
	}, []string{"method", "route", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notifyhub_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(PoolsCreated)
	prometheus.MustRegister(PoolAcquireFailures)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPRequestDuration)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
