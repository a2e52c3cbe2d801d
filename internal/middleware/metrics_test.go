package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/freshgreens/ordering-backend/internal/telemetry"
)

// drain collects every series a collector currently exports.
func drain(c prometheus.Collector) []*dto.Metric {
	ch := make(chan prometheus.Metric, 32)
	c.Collect(ch)
	close(ch)
	var out []*dto.Metric
	for m := range ch {
		var dm dto.Metric
		if err := m.Write(&dm); err == nil {
			out = append(out, &dm)
		}
	}
	return out
}

// hasLabels reports whether a series carries every label pair in want.
func hasLabels(dm *dto.Metric, want prometheus.Labels) bool {
	for k, v := range want {
		found := false
		for _, lp := range dm.GetLabel() {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func counterValue(cv *prometheus.CounterVec, labels prometheus.Labels) float64 {
	for _, dm := range drain(cv) {
		if hasLabels(dm, labels) {
			return dm.GetCounter().GetValue()
		}
	}
	return 0
}

func histogramCount(hv *prometheus.HistogramVec, labels prometheus.Labels) uint64 {
	for _, dm := range drain(hv) {
		if hasLabels(dm, labels) {
			return dm.GetHistogram().GetSampleCount()
		}
	}
	return 0
}

func serveMetered(status int, target string) {
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/products/:id", func(c *gin.Context) { c.Status(status) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"ok response", http.StatusOK},
		{"server error", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := prometheus.Labels{
				"method": "GET",
				"path":   "/products/:id",
				"status": strconv.Itoa(tt.status),
			}

			before := counterValue(telemetry.HTTPRequestsTotal, labels)
			serveMetered(tt.status, "/products/prod-1")
			after := counterValue(telemetry.HTTPRequestsTotal, labels)
			if after-before < 1 {
				t.Errorf("http_requests_total%v: before=%.0f after=%.0f, want +1", labels, before, after)
			}
		})
	}
}

func TestMetricsMiddleware_ObservesDuration(t *testing.T) {
	labels := prometheus.Labels{"method": "GET", "path": "/products/:id"}

	before := histogramCount(telemetry.HTTPRequestDuration, labels)
	serveMetered(http.StatusOK, "/products/prod-2")
	after := histogramCount(telemetry.HTTPRequestDuration, labels)
	if after <= before {
		t.Errorf("duration sample count did not grow: before=%d after=%d", before, after)
	}
}

func TestMetricsMiddleware_LabelsByRouteTemplate(t *testing.T) {
	// Concrete IDs in the path label would explode series cardinality; the
	// label must be the route template.
	serveMetered(http.StatusOK, "/products/prod-42")

	for _, dm := range drain(telemetry.HTTPRequestsTotal) {
		if hasLabels(dm, prometheus.Labels{"path": "/products/prod-42"}) {
			t.Fatal("path label holds the raw URL /products/prod-42, want /products/:id")
		}
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no-such-path", nil))

	found := false
	for _, dm := range drain(telemetry.HTTPRequestsTotal) {
		if hasLabels(dm, prometheus.Labels{"path": "<no-route>"}) {
			found = true
		}
	}
	if !found {
		t.Error("unmatched request did not record the <no-route> sentinel path")
	}
}
