package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// Metrics Auth Middleware Tests
// =============================================================================

// scrapeWith sends a /metrics request through the auth middleware with the
// given credentials. Passing empty strings sends no Authorization header.
func scrapeWith(mw *MetricsAuthMiddleware, user, pass string) *httptest.ResponseRecorder {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("oleawatch_mentions_ingested_total 42"))
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}
	rec := httptest.NewRecorder()

	mw.Handler(handler).ServeHTTP(rec, req)
	return rec
}

func TestMetricsAuthMiddleware_AllowsValidCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prometheus", "scrape-secret")

	rec := scrapeWith(mw, "prometheus", "scrape-secret")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "oleawatch_mentions_ingested_total 42" {
		t.Errorf("expected scrape body, got %q", rec.Body.String())
	}
}

func TestMetricsAuthMiddleware_RejectsMissingCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prometheus", "scrape-secret")

	rec := scrapeWith(mw, "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `Basic realm="metrics"` {
		t.Errorf("unexpected WWW-Authenticate header: %q", got)
	}
}

func TestMetricsAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prometheus", "scrape-secret")

	tests := []struct {
		name string
		user string
		pass string
	}{
		{"wrong username", "grafana", "scrape-secret"},
		{"wrong password", "prometheus", "guess"},
		{"both wrong", "grafana", "guess"},
		{"swapped", "scrape-secret", "prometheus"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := scrapeWith(mw, tc.user, tc.pass)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
		})
	}
}

func TestMetricsAuthMiddleware_RejectsMalformedAuthHeader(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prometheus", "scrape-secret")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.Header.Set("Authorization", "Basic notvalidbase64!!!")
	rec := httptest.NewRecorder()

	mw.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestMetricsAuthMiddleware_DisabledWhenUnconfigured(t *testing.T) {
	// Local development runs without scrape credentials.
	mw := NewMetricsAuthMiddleware("", "")

	rec := scrapeWith(mw, "", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 when auth is disabled, got %d", rec.Code)
	}
}

func TestMetricsAuthMiddleware_PartialConfigStillEnforced(t *testing.T) {
	// A password without a username still locks the endpoint down.
	mw := NewMetricsAuthMiddleware("", "scrape-secret")

	rec := scrapeWith(mw, "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 with partial config, got %d", rec.Code)
	}
}
