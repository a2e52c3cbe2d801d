package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request identifier on the wire.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key holding the request ID, so the
	// access logger and handlers can read it without touching headers.
	RequestIDKey = "request_id"
)

// RequestIDMiddleware tags every request with an identifier. An inbound
// X-Request-ID (from the ingress or the Mini App client) is kept as-is;
// otherwise a UUID is generated. The ID lands in the gin context under
// RequestIDKey and is echoed in the response header so clients can quote it
// when reporting a failed order. Register it before the access logger.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
