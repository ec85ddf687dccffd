package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// Request Logging Middleware Tests
// =============================================================================

// loggedRequest runs a request through the logging middleware and returns the
// captured log output.
func loggedRequest(t *testing.T, req *http.Request, handler http.HandlerFunc) string {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rec := httptest.NewRecorder()
	NewRequestLoggingMiddleware(logger).Handler(handler).ServeHTTP(rec, req)

	return buf.String()
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestLoggingMiddleware_LogsBasicInfo(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/reports", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "oleawatch-cli/1.2")

	out := loggedRequest(t, req, okHandler)

	for _, want := range []string{"GET", "/api/reports", "status=200", "duration_ms", "oleawatch-cli/1.2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log should contain %q, got: %s", want, out)
		}
	}
}

func TestRequestLoggingMiddleware_LogsClientIPFromForwardedFor(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/mentions", nil)
	req.RemoteAddr = "10.0.0.1:8080"
	req.Header.Set("X-Forwarded-For", "203.0.113.195")

	out := loggedRequest(t, req, okHandler)

	if !strings.Contains(out, "203.0.113.195") {
		t.Errorf("log should contain client IP from X-Forwarded-For, got: %s", out)
	}
}

func TestRequestLoggingMiddleware_ServerErrorsLogAtWarn(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/reports/abc/transitions", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	out := loggedRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if !strings.Contains(out, "status=500") {
		t.Errorf("log should contain 500 status, got: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("5xx should log at WARN level, got: %s", out)
	}
}

func TestRequestLoggingMiddleware_ClientErrorsLogAtInfo(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/mentions/nope", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	out := loggedRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if !strings.Contains(out, "status=404") {
		t.Errorf("log should contain 404 status, got: %s", out)
	}
	if !strings.Contains(out, "level=INFO") {
		t.Errorf("4xx should log at INFO level, got: %s", out)
	}
}

func TestRequestLoggingMiddleware_LogsResponseSize(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/operators/me", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	out := loggedRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"op-1"}`))
	})

	if !strings.Contains(out, "bytes=13") {
		t.Errorf("log should contain response size, got: %s", out)
	}
}

func TestRequestLoggingMiddleware_RedactsSensitiveQueryParams(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/mentions?source=press&token=secrettoken123", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	out := loggedRequest(t, req, okHandler)

	if strings.Contains(out, "secrettoken123") {
		t.Errorf("log should NOT contain token value, got: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("redacted marker should replace the token value, got: %s", out)
	}
	// Harmless params survive redaction
	if !strings.Contains(out, "source=press") {
		t.Errorf("log should keep non-sensitive params, got: %s", out)
	}
}

func TestRequestLoggingMiddleware_PassesRequestThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.Header().Set("Location", "/api/reports/r-1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"r-1"}`))
	})

	req := httptest.NewRequest("POST", "/api/reports", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	NewRequestLoggingMiddleware(logger).Handler(handler).ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("handler should have been called")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/api/reports/r-1" {
		t.Error("response headers should be preserved")
	}
	if rec.Body.String() != `{"id":"r-1"}` {
		t.Errorf("response body should be preserved, got: %s", rec.Body.String())
	}
}

func TestRequestLoggingMiddleware_SkipsNoisyEndpoints(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = "192.168.1.1:12345"

		out := loggedRequest(t, req, okHandler)

		if out != "" {
			t.Errorf("%s should not be logged, got: %s", path, out)
		}
	}
}

func TestRedactQuery(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rawQuery string
		want     string
	}{
		{"no query", "/api/reports", "", "/api/reports"},
		{"plain params kept", "/api/mentions", "source=press", "/api/mentions?source=press"},
		{"token masked", "/api/mentions", "token=abc123", "/api/mentions?token=[REDACTED]"},
		{"case insensitive", "/api/mentions", "API_KEY=abc123", "/api/mentions?API_KEY=[REDACTED]"},
		{"unparseable dropped", "/api/mentions", "a=%zz", "/api/mentions"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := redactQuery(tc.path, tc.rawQuery); got != tc.want {
				t.Errorf("redactQuery(%q, %q) = %q, want %q", tc.path, tc.rawQuery, got, tc.want)
			}
		})
	}
}
