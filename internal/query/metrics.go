package query

import "github.com/prometheus/client_golang/prometheus"

var (
	reads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkdash_query_reads_total",
			Help: "Cached reads by result (hit, miss, disabled).",
		},
		[]string{"result"},
	)

	invalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkdash_query_invalidations_total",
			Help: "Successful mutations that invalidated cache prefixes.",
		},
	)
)

func init() {
	prometheus.MustRegister(reads, invalidations)
}
