package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// headersFor serves one request through SecurityHeadersMiddleware and returns
// the response headers.
func headersFor(cfg SecurityHeadersConfig) http.Header {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w.Header()
}

func TestDefaultSecurityHeadersConfig(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig()

	if !cfg.EnableHSTS || cfg.HSTSMaxAge != 31536000 || !cfg.HSTSIncludeSubdomains {
		t.Errorf("HSTS defaults = enabled %v, max-age %d, subdomains %v", cfg.EnableHSTS, cfg.HSTSMaxAge, cfg.HSTSIncludeSubdomains)
	}
	if cfg.HSTSPreload {
		t.Error("HSTSPreload = true by default, want false")
	}
	if !cfg.EnableFrameOptions || cfg.FrameOptionsValue != "DENY" {
		t.Errorf("frame options defaults = enabled %v, value %q", cfg.EnableFrameOptions, cfg.FrameOptionsValue)
	}
	if !cfg.EnableContentTypeOptions || !cfg.EnableXSSProtection {
		t.Error("content-type and XSS protection must default on")
	}
	for name, val := range map[string]string{
		"ContentSecurityPolicy": cfg.ContentSecurityPolicy,
		"ReferrerPolicy":        cfg.ReferrerPolicy,
		"PermissionsPolicy":     cfg.PermissionsPolicy,
	} {
		if val == "" {
			t.Errorf("%s is empty by default", name)
		}
	}
}

func TestAPISecurityHeadersConfig(t *testing.T) {
	cfg := APISecurityHeadersConfig()

	if !cfg.EnableHSTS {
		t.Error("EnableHSTS = false, want true")
	}
	if cfg.EnableXSSProtection {
		t.Error("EnableXSSProtection = true, want false for a JSON API")
	}
	if cfg.ContentSecurityPolicy == "" {
		t.Error("ContentSecurityPolicy is empty")
	}
	if cfg.ReferrerPolicy != "no-referrer" {
		t.Errorf("ReferrerPolicy = %q, want no-referrer", cfg.ReferrerPolicy)
	}
	if cfg.PermissionsPolicy != "" {
		t.Errorf("PermissionsPolicy = %q, want empty", cfg.PermissionsPolicy)
	}
}

func TestSecurityHeadersMiddleware_HSTS(t *testing.T) {
	h := headersFor(SecurityHeadersConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
	})
	hsts := h.Get("Strict-Transport-Security")
	if !strings.Contains(hsts, "max-age=31536000") || !strings.Contains(hsts, "includeSubDomains") {
		t.Errorf("Strict-Transport-Security = %q", hsts)
	}
	if strings.Contains(hsts, "preload") {
		t.Errorf("Strict-Transport-Security = %q, preload not requested", hsts)
	}

	h = headersFor(SecurityHeadersConfig{EnableHSTS: true, HSTSMaxAge: 86400, HSTSPreload: true})
	if hsts := h.Get("Strict-Transport-Security"); !strings.Contains(hsts, "preload") {
		t.Errorf("Strict-Transport-Security = %q, want preload", hsts)
	}

	h = headersFor(SecurityHeadersConfig{})
	if got := h.Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q when disabled, want absent", got)
	}
}

func TestSecurityHeadersMiddleware_ToggledHeaders(t *testing.T) {
	tests := []struct {
		name   string
		cfg    SecurityHeadersConfig
		header string
		want   string
	}{
		{"frame options DENY", SecurityHeadersConfig{EnableFrameOptions: true, FrameOptionsValue: "DENY"}, "X-Frame-Options", "DENY"},
		{"frame options SAMEORIGIN", SecurityHeadersConfig{EnableFrameOptions: true, FrameOptionsValue: "SAMEORIGIN"}, "X-Frame-Options", "SAMEORIGIN"},
		{"frame options off", SecurityHeadersConfig{FrameOptionsValue: "DENY"}, "X-Frame-Options", ""},
		{"frame options empty value", SecurityHeadersConfig{EnableFrameOptions: true}, "X-Frame-Options", ""},
		{"nosniff on", SecurityHeadersConfig{EnableContentTypeOptions: true}, "X-Content-Type-Options", "nosniff"},
		{"nosniff off", SecurityHeadersConfig{}, "X-Content-Type-Options", ""},
		{"xss protection on", SecurityHeadersConfig{EnableXSSProtection: true}, "X-XSS-Protection", "1; mode=block"},
		{"xss protection off", SecurityHeadersConfig{}, "X-XSS-Protection", ""},
		{"csp set", SecurityHeadersConfig{ContentSecurityPolicy: "default-src 'self'"}, "Content-Security-Policy", "default-src 'self'"},
		{"csp empty", SecurityHeadersConfig{}, "Content-Security-Policy", ""},
		{"referrer policy set", SecurityHeadersConfig{ReferrerPolicy: "no-referrer"}, "Referrer-Policy", "no-referrer"},
		{"referrer policy empty", SecurityHeadersConfig{}, "Referrer-Policy", ""},
		{"permissions policy set", SecurityHeadersConfig{PermissionsPolicy: "geolocation=()"}, "Permissions-Policy", "geolocation=()"},
		{"permissions policy empty", SecurityHeadersConfig{}, "Permissions-Policy", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headersFor(tt.cfg).Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestSecurityHeadersMiddleware_FixedHeaders(t *testing.T) {
	// Set unconditionally, whatever the config.
	h := headersFor(SecurityHeadersConfig{})
	for header, want := range map[string]string{
		"X-Permitted-Cross-Domain-Policies": "none",
		"Cross-Origin-Opener-Policy":        "same-origin",
		"Cross-Origin-Resource-Policy":      "cross-origin",
	} {
		if got := h.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestSecurityHeadersMiddleware_DefaultConfig(t *testing.T) {
	h := headersFor(DefaultSecurityHeadersConfig())
	if h.Get("Strict-Transport-Security") == "" {
		t.Error("Strict-Transport-Security missing with default config")
	}
	if h.Get("X-Frame-Options") == "" {
		t.Error("X-Frame-Options missing with default config")
	}
}

func TestItoa(t *testing.T) {
	for input, want := range map[int]string{
		0:        "0",
		9:        "9",
		10:       "10",
		31536000: "31536000",
		-1:       "-1",
		-100:     "-100",
	} {
		if got := itoa(input); got != want {
			t.Errorf("itoa(%d) = %q, want %q", input, got, want)
		}
	}
}
