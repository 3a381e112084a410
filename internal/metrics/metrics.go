// Package metrics provides Prometheus metrics for the folio agent.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeOK labels requests that succeeded. Failed requests are labelled
// with their failure kind.
const OutcomeOK = "ok"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_bridge_requests_total",
			Help: "Total number of bridge requests by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_bridge_request_duration_seconds",
			Help:    "Bridge request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	requestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "folio_bridge_requests_in_flight",
			Help: "Bridge requests currently being handled",
		},
		[]string{"channel"},
	)

	treeNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_tree_nodes",
			Help:    "Number of nodes returned by read-folder",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	bytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_bytes_written_total",
			Help: "Total bytes written through write-file",
		},
	)
)

// Handler serves the metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartRequest marks a request in flight and returns the func that records
// its outcome.
func StartRequest(channel string) func(outcome string) {
	start := time.Now()
	requestsInFlight.WithLabelValues(channel).Inc()
	return func(outcome string) {
		requestsInFlight.WithLabelValues(channel).Dec()
		requestsTotal.WithLabelValues(channel, outcome).Inc()
		requestDuration.WithLabelValues(channel).Observe(time.Since(start).Seconds())
	}
}

// RecordTree records the size of a listed tree.
func RecordTree(nodes int) {
	treeNodes.Observe(float64(nodes))
}

// RecordWrite records bytes written to disk.
func RecordWrite(n int) {
	bytesWritten.Add(float64(n))
}
