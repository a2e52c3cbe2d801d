// Package telemetry provides application-level observability for the ordering backend.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<ORD_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format and is intended to be scraped by a Prometheus server every 15–60 seconds.
// It is NOT served by the Gin router, so it never passes through rate limiting or
// authentication middleware.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Order lifecycle counters (submissions by channel, line items added/removed)
//   - Invite counters (issued, consumed)
//   - Catalog CSV import row counters
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/b2b/orders/:id/items)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as order or product IDs.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template (e.g. /api/v1/b2b/orders/:id/submit),
// NOT the raw URL, to prevent unbounded cardinality.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - Requests by route:                 sum by (path) (rate(http_requests_total[5m]))
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and exponential-ish
// buckets from 5 ms to 30 s.  Use histogram_quantile to compute latency percentiles.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Order lifecycle metrics, recorded by the orders service.
//
// OrdersSubmittedTotal is a CounterVec with label {channel} ("b2b" or "storefront")
// incremented whenever an order is successfully submitted. Draft creation is not
// counted here; only the submit transition.
//
// Example PromQL queries:
//   - Submissions per hour by channel:  sum by (channel) (increase(orders_submitted_total[1h]))
//
// OrderItemsAddedTotal / OrderItemsRemovedTotal are plain Counters incremented once
// per successful line-item mutation on a shared draft. The ratio of the two is a
// rough signal of how much back-and-forth editing drafts see before submission.
var (
	OrdersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_submitted_total",
			Help: "Total number of orders submitted, by sales channel.",
		},
		[]string{"channel"},
	)

	OrderItemsAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_items_added_total",
			Help: "Total number of line items added to draft orders.",
		},
	)

	OrderItemsRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_items_removed_total",
			Help: "Total number of line items removed from draft orders.",
		},
	)
)

// Invite metrics, recorded by the invite handlers and the consume path.
//
// InvitesIssuedTotal counts invite links generated by buyers.
// InvitesConsumedTotal counts successful joins (token validated, membership granted,
// token burned). A widening gap between the two indicates links that expire unused.
var (
	InvitesIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invites_issued_total",
			Help: "Total number of organization invite links generated.",
		},
	)

	InvitesConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invites_consumed_total",
			Help: "Total number of invite tokens successfully consumed.",
		},
	)

	InvitesExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invites_expired_total",
			Help: "Total number of expired invite tokens removed by the sweeper.",
		},
	)
)

// CSVImportRowsTotal is a CounterVec with label {result} ("imported" or "rejected")
// incremented once per row processed by the product CSV import endpoint.
//
// Example PromQL queries:
//   - Rejection rate:  rate(csv_import_rows_total{result="rejected"}[1h]) / rate(csv_import_rows_total[1h])
var CSVImportRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "csv_import_rows_total",
		Help: "Total number of product CSV import rows processed, by result.",
	},
	[]string{"result"},
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
