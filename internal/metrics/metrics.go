// Package metrics defines the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP surface
var (
	// HTTPErrorsTotal tracks HTTP errors by structured error kind.
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error kind",
		},
		[]string{"kind"},
	)

	// OriginRejections tracks requests whose Origin header was not in the trusted set.
	OriginRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "origin_rejections_total",
			Help: "Requests carrying an untrusted Origin header",
		},
	)
)

// Procedure dispatch
var (
	// ProcedureCallsTotal tracks dispatched procedure calls by path and outcome status.
	ProcedureCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procedure_calls_total",
			Help: "Dispatched procedure calls by path and status (ok/error)",
		},
		[]string{"path", "status"},
	)

	// ProcedureDuration tracks procedure execution latency in seconds.
	ProcedureDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "procedure_duration_seconds",
			Help:    "Procedure execution duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"path"},
	)
)

// Session authentication
var (
	// SessionCacheHits tracks positive-outcome cache hits in the authenticator.
	SessionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_cache_hits_total",
			Help: "Session outcome cache hits",
		},
	)

	// SessionCacheMisses tracks lookups that fell through to the trust store.
	SessionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_cache_misses_total",
			Help: "Session outcome cache misses",
		},
	)

	// SessionsCreated tracks sessions issued by sign-in (and sign-up auto-login).
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Sessions created",
		},
	)

	// SessionsRevoked tracks sessions revoked by sign-out.
	SessionsRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_revoked_total",
			Help: "Sessions revoked",
		},
	)
)
