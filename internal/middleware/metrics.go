// metrics.go records request metrics. Registered in internal/api/router.go
// before any route handlers so that every request is covered regardless of
// handler.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/telemetry"
)

// MetricsMiddleware records http_requests_total{method, path, status} and
// http_request_duration_seconds{method, path} for every request. The path
// label is the matched route template from c.FullPath(), e.g.
// /api/v1/b2b/orders/:id/items/:item_id, never the raw URL; unmatched
// requests get the "<no-route>" sentinel to keep label cardinality bounded.
// Register after gin.Recovery() so error statuses are captured.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
