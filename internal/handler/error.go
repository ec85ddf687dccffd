// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file implements centralized error response handling. Handlers pass
// service errors through ErrorResponse, which maps domain error codes to
// HTTP status codes and renders a consistent JSON error envelope.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oleawatch/oleawatch/internal/domain"
)

// JSONError is the error envelope returned by every failing API call.
type JSONError struct {
	Error JSONErrorDetail `json:"error"`
}

// JSONErrorDetail carries the machine-readable code and human-readable
// message of an error.
type JSONErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID, domain.EMISSINGFIELD:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT, domain.EANSWERED, domain.EPENDING, domain.ESTALE:
		return http.StatusConflict
	case domain.ETRANSITION, domain.ESTATE:
		return http.StatusUnprocessableEntity
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EINTERNAL:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes a JSON error response for the given error.
//
// The domain error code decides the HTTP status; the message is the error's
// own message except for internal errors, which get a generic one. Internal
// errors are logged at Error level with the operation, everything else at
// Info.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := ErrorCodeToHTTPStatus(code)

	logError(r, err, code, status, logger)

	writeJSONError(w, status, code, message)
}

// NotFoundResponse writes a 404 response for routes that match nothing.
func NotFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	writeJSONError(w, http.StatusNotFound, domain.ENOTFOUND, "The requested resource was not found.")
}

// UnauthorizedResponse writes a 401 response for unauthenticated requests.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSONError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED, "Authentication required.")
}

// ForbiddenResponse writes a 403 response for insufficient permissions.
func ForbiddenResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	writeJSONError(w, http.StatusForbidden, domain.EFORBIDDEN, "You do not have permission to perform this action.")
}

// logError logs an error with request context. Server errors are logged at
// Error level, client errors at Info.
func logError(r *http.Request, err error, code string, status int, logger *slog.Logger) {
	if logger == nil {
		return
	}

	attrs := []any{
		"error", err.Error(),
		"code", code,
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}

	if status >= 500 {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}
}

// writeJSONError writes the error envelope with the given status.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(JSONError{
		Error: JSONErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
