// Package middleware contains HTTP middleware for the OleaWatch API.
//
// Middleware functions follow the standard Go pattern of wrapping
// http.Handler. They are designed to be composed using a middleware stack
// approach.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/oleawatch/oleawatch/internal/auth"
	"github.com/oleawatch/oleawatch/internal/handler"
	"github.com/oleawatch/oleawatch/internal/service"
)

// =============================================================================
// Auth Middleware Configuration
// =============================================================================

// AuthMiddleware provides bearer-token authentication middleware.
//
// This struct holds dependencies needed by auth middleware functions. Create
// one instance and use its methods as middleware.
type AuthMiddleware struct {
	actors service.ActorService
	logger *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
//
// Parameters:
// - actors: Service that resolves API tokens to operators
// - logger: Structured logger for auth events
func NewAuthMiddleware(actors service.ActorService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		actors: actors,
		logger: logger,
	}
}

// =============================================================================
// WithOperator Middleware
// =============================================================================

// WithOperator is middleware that attempts to load the operator from the
// Authorization header.
//
// This middleware:
// 1. Checks for an "Authorization: Bearer <token>" header
// 2. If found, validates the token and loads the operator
// 3. Stores the operator in the request context
// 4. Continues to the next handler regardless of authentication status
//
// The operator can be retrieved in handlers using:
//
//	op := auth.GetOperator(r.Context())
func (m *AuthMiddleware) WithOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			// No credentials presented - continue without operator
			next.ServeHTTP(w, r)
			return
		}

		operator, err := m.actors.Authenticate(r.Context(), token)
		if err != nil {
			// Invalid token - continue without operator; RequireOperator
			// rejects the request if the route is protected.
			m.logger.Info("token rejected", "error", err, "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(auth.SetOperator(r.Context(), operator))
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// RequireOperator Middleware
// =============================================================================

// RequireOperator is middleware that requires an authenticated operator.
//
// IMPORTANT: This middleware must be used AFTER WithOperator in the
// middleware chain.
//
// Usage:
//
//	protect := middleware.Stack(authMw.WithOperator, authMw.RequireOperator)
//	mux.Handle("GET /api/reports", protect(listHandler))
func (m *AuthMiddleware) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetOperator(r.Context()) == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// RequireAdmin Middleware
// =============================================================================

// RequireAdmin is middleware that requires an administrator.
//
// IMPORTANT: Use this AFTER RequireOperator in the middleware chain.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := auth.GetOperator(r.Context())
		if operator == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}
		if !operator.IsAdmin() {
			handler.ForbiddenResponse(w, r, m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// =============================================================================
// Middleware Stack Helper
// =============================================================================

// Stack combines multiple middleware into a single middleware function.
//
// Middleware are applied in the order given: the first middleware is the
// outermost wrapper and runs first.
//
// Usage:
//
//	protect := middleware.Stack(
//	    authMw.WithOperator,
//	    authMw.RequireOperator,
//	)
//	mux.Handle("GET /api/reports", protect(listHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
