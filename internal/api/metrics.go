package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/simp-lee/parkdash/internal/domain"
)

var (
	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkdash_upstream_requests_total",
			Help: "Requests sent to the parking API, by outcome.",
		},
		[]string{"method", "route", "outcome"},
	)

	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parkdash_upstream_request_duration_seconds",
			Help:    "Latency of requests sent to the parking API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(upstreamRequests, upstreamLatency)
}

func observeUpstream(method, route string, status int, err error, d time.Duration) {
	upstreamRequests.WithLabelValues(method, route, outcome(status, err)).Inc()
	upstreamLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(status int, err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsNetworkFailure(err):
		return "network_failure"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsUnauthorized(err):
		return "unauthorized"
	case status > 0:
		return "rejected_" + strconv.Itoa(status)
	default:
		return "error"
	}
}
