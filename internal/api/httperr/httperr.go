// Package httperr maps domain errors from the orders service onto HTTP
// responses so every handler package renders failures the same way.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/orders"
)

// Status returns the HTTP status code for a domain error.
func Status(err error) int {
	switch {
	case errors.Is(err, orders.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, orders.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Abort writes the JSON error response for err and stops the handler chain.
// Domain errors surface their message to the client; anything unrecognized is
// logged and rendered as an opaque 500.
func Abort(c *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
