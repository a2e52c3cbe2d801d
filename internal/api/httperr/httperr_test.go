package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/orders"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", orders.ErrValidation, http.StatusBadRequest},
		{"not found", orders.ErrNotFound, http.StatusNotFound},
		{"forbidden", orders.ErrForbidden, http.StatusForbidden},
		{"invalid state", orders.ErrInvalidState, http.StatusConflict},
		{"wrapped", fmt.Errorf("%w: quantity must be positive", orders.ErrValidation), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAbort_DomainErrorExposesMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/test", nil)

	Abort(c, fmt.Errorf("%w: order is submitted", orders.ErrInvalidState))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "order is submitted") {
		t.Errorf("body %q should contain the domain message", w.Body.String())
	}
}

func TestAbort_UnknownErrorIsOpaque(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/test", nil)

	Abort(c, errors.New("pq: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("body %q leaked internal error detail", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Internal server error") {
		t.Errorf("body %q missing generic message", w.Body.String())
	}
}
