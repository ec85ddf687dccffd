package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// RateLimiter counts requests per key over a sliding window. Keys are client
// IPs in practice, but the limiter does not care.
type RateLimiter struct {
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger

	mu      sync.RWMutex
	entries map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter and starts its cleanup goroutine.
func NewRateLimiter(maxAttempts int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
		entries:     make(map[string]*rateLimitEntry),
	}

	go rl.cleanup()

	return rl
}

// Allow records a request for the key and reports whether it fits the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, exists := rl.entries[key]

	switch {
	case !exists:
		rl.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	case now.Sub(entry.windowStart) > rl.window:
		// Previous window expired; start a fresh one
		entry.count = 1
		entry.windowStart = now
		return true
	case entry.count < rl.maxAttempts:
		entry.count++
		return true
	default:
		return false
	}
}

// TimeUntilReset returns how long the key stays limited. Zero means the next
// request would be allowed.
func (rl *RateLimiter) TimeUntilReset(key string) time.Duration {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	entry, exists := rl.entries[key]
	if !exists {
		return 0
	}

	remaining := rl.window - time.Since(entry.windowStart)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup drops expired entries once per window so one-off clients do not
// accumulate in the map forever.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, entry := range rl.entries {
			if now.Sub(entry.windowStart) > rl.window {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware wraps a rate limiter for use as HTTP middleware.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware.
func NewRateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit returns middleware that rate limits requests.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		if !m.limiter.Allow(clientIP) {
			m.logger.Warn("rate limit exceeded",
				"ip", clientIP,
				"path", r.URL.Path,
				"method", r.Method,
			)

			retryAfter := int(m.limiter.TimeUntilReset(clientIP).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate_limit",
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Ingest Rate Limiter (combined limiter for write-heavy endpoints)
// =============================================================================

// IngestRateLimiter provides rate limiting for the write-heavy API surfaces:
// mention ingestion from monitoring feeds and evidence uploads.
type IngestRateLimiter struct {
	mentionLimiter *RateLimiter
	uploadLimiter  *RateLimiter
	logger         *slog.Logger
}

// NewIngestRateLimiter creates rate limiters with sensible defaults.
// - Mention ingest: 120 per minute (monitoring feeds batch their pushes)
// - Evidence upload: 30 per minute
func NewIngestRateLimiter(logger *slog.Logger) *IngestRateLimiter {
	return &IngestRateLimiter{
		mentionLimiter: NewRateLimiter(120, time.Minute, logger),
		uploadLimiter:  NewRateLimiter(30, time.Minute, logger),
		logger:         logger,
	}
}

// LimitMentions returns middleware for rate limiting mention ingestion.
func (l *IngestRateLimiter) LimitMentions(next http.Handler) http.Handler {
	mw := NewRateLimitMiddleware(l.mentionLimiter, l.logger)
	return mw.Limit(next)
}

// LimitUploads returns middleware for rate limiting evidence uploads.
func (l *IngestRateLimiter) LimitUploads(next http.Handler) http.Handler {
	mw := NewRateLimitMiddleware(l.uploadLimiter, l.logger)
	return mw.Limit(next)
}

// =============================================================================
// Helpers
// =============================================================================

// getClientIP extracts the client IP, trusting reverse-proxy headers first.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For may list client, proxy1, proxy2; the first entry is
	// the original client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port
		return r.RemoteAddr
	}
	return ip
}
