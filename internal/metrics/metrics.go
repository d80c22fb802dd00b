// Package metrics declares the Prometheus collectors shared across the app.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movein_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movein_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movein_upstream_requests_total",
			Help: "Calls to third-party APIs by outcome",
		},
		[]string{"api", "outcome"},
	)

	recordsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movein_records_created_total",
			Help: "Rows created by the save-search and favorite flows",
		},
		[]string{"table"},
	)

	TableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movein_table_rows",
			Help: "Row count per table at the last stats collection",
		},
		[]string{"table"},
	)

	WebSocketConnectionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movein_websocket_connections",
			Help: "Open favorite feed connections",
		},
	)
)

// ObserveUpstream counts one call to a third-party API.
func ObserveUpstream(api, outcome string) {
	upstreamRequestsTotal.WithLabelValues(api, outcome).Inc()
}

// RecordCreated counts a newly inserted row.
func RecordCreated(table string) {
	recordsCreatedTotal.WithLabelValues(table).Inc()
}

func SetTableRows(table string, n int64) {
	TableRows.WithLabelValues(table).Set(float64(n))
}

func SetWebSocketConnections(n int) {
	WebSocketConnectionsGauge.Set(float64(n))
}
