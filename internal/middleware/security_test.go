package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// Security Headers Middleware Tests
// =============================================================================

// secureHeaders runs a request through the security middleware and returns
// the response headers.
func secureHeaders(isSecure bool, req *http.Request) http.Header {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	NewSecurityHeadersMiddleware(isSecure).Handler(handler).ServeHTTP(rec, req)
	return rec.Header()
}

func TestSecurityHeadersMiddleware_SetsAllHeaders(t *testing.T) {
	headers := secureHeaders(true, httptest.NewRequest("GET", "/api/reports", nil))

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"X-XSS-Protection", "1; mode=block"},
	}

	for _, tc := range tests {
		if got := headers.Get(tc.header); got != tc.expected {
			t.Errorf("%s: expected %q, got %q", tc.header, tc.expected, got)
		}
	}
}

func TestSecurityHeadersMiddleware_HSTSOnlyInProduction(t *testing.T) {
	prod := secureHeaders(true, httptest.NewRequest("GET", "/api/reports", nil))

	hsts := prod.Get("Strict-Transport-Security")
	if !strings.Contains(hsts, "max-age=") || !strings.Contains(hsts, "includeSubDomains") {
		t.Errorf("production HSTS incomplete: %q", hsts)
	}

	dev := secureHeaders(false, httptest.NewRequest("GET", "/api/reports", nil))
	if got := dev.Get("Strict-Transport-Security"); got != "" {
		t.Errorf("development should not set HSTS, got %q", got)
	}
}

func TestSecurityHeadersMiddleware_CSPHeader(t *testing.T) {
	headers := secureHeaders(true, httptest.NewRequest("GET", "/api/mentions", nil))

	csp := headers.Get("Content-Security-Policy")
	if csp == "" {
		t.Fatal("expected Content-Security-Policy header, got empty")
	}

	for _, directive := range []string{
		"default-src 'none'",
		"frame-ancestors 'none'",
		"base-uri 'none'",
		"form-action 'none'",
	} {
		if !strings.Contains(csp, directive) {
			t.Errorf("CSP missing directive %q: %s", directive, csp)
		}
	}
}

func TestSecurityHeadersMiddleware_PermissionsPolicy(t *testing.T) {
	headers := secureHeaders(true, httptest.NewRequest("GET", "/api/reports", nil))

	pp := headers.Get("Permissions-Policy")
	for _, feature := range []string{"geolocation=()", "camera=()", "microphone=()"} {
		if !strings.Contains(pp, feature) {
			t.Errorf("expected %s disabled in Permissions-Policy: %s", feature, pp)
		}
	}
}

func TestSecurityHeadersMiddleware_PassesRequestThrough(t *testing.T) {
	mw := NewSecurityHeadersMiddleware(true)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"r-1"}`))
	})

	req := httptest.NewRequest("POST", "/api/reports", strings.NewReader(`{"title":"Mislabeled DOP"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	mw.Handler(handler).ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("handler should have been called")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if rec.Body.String() != `{"id":"r-1"}` {
		t.Errorf("response body should be preserved, got: %s", rec.Body.String())
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected security headers on POST responses too")
	}
}

func TestSecurityHeadersMiddleware_CSPLockedDown(t *testing.T) {
	headers := secureHeaders(true, httptest.NewRequest("GET", "/api/reports", nil))

	csp := headers.Get("Content-Security-Policy")

	// A JSON API never loads scripts or styles
	if strings.Contains(csp, "'unsafe-inline'") {
		t.Errorf("CSP should not allow unsafe-inline: %s", csp)
	}
	if strings.Contains(csp, "https:") {
		t.Errorf("CSP should not allow external sources: %s", csp)
	}
}

func TestSecurityHeadersMiddleware_CSPHasNoResourceAllowlists(t *testing.T) {
	headers := secureHeaders(true, httptest.NewRequest("GET", "/api/reports", nil))

	csp := headers.Get("Content-Security-Policy")

	// default-src 'none' with no per-type overrides: the API serves JSON,
	// so no script, style, or image source may be whitelisted.
	for _, directive := range []string{"script-src", "style-src", "img-src", "connect-src"} {
		if strings.Contains(csp, directive) {
			t.Errorf("CSP should not carry %s override: %s", directive, csp)
		}
	}
	if strings.Contains(csp, "data:") {
		t.Errorf("CSP should not allow data: URIs: %s", csp)
	}
}
