package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Labels are bounded by using the registered route, not the raw path.
var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkdash_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parkdash_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkdash_http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "parkdash_http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 25 << 10, 50 << 10,
				100 << 10, 250 << 10, 500 << 10, 1 << 20,
			},
		},
		[]string{"method", "route"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkdash_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, httpLatency, httpInflight, httpResponseSize, rateLimited)
}

// Metrics instruments requests with Prometheus. Serve the registry with
// promhttp.Handler on /metrics.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		r := c.FullPath()
		if r == "" {
			r = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, r, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(method, r).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpResponseSize.WithLabelValues(method, r).Observe(float64(size))
		}
	}
}
