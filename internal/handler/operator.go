// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file implements operator management. Creating operators is restricted
// to administrators; the minted API token is returned exactly once.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oleawatch/oleawatch/internal/auth"
	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
)

// OperatorHandler handles HTTP requests for operators.
type OperatorHandler struct {
	actors service.ActorService
	logger *slog.Logger
}

// NewOperatorHandler creates a new OperatorHandler.
func NewOperatorHandler(actors service.ActorService, logger *slog.Logger) *OperatorHandler {
	return &OperatorHandler{
		actors: actors,
		logger: logger,
	}
}

// RegisterRoutes registers the operator routes on the mux. All routes require
// an authenticated operator.
func (h *OperatorHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("POST /api/operators", protect(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/operators/me", protect(http.HandlerFunc(h.Me)))
	mux.Handle("GET /api/operators/{id}", protect(http.HandlerFunc(h.Get)))
}

// createOperatorRequest is the body of POST /api/operators.
type createOperatorRequest struct {
	Name  string              `json:"name"`
	Email string              `json:"email"`
	Role  domain.OperatorRole `json:"role"`
}

// createOperatorResponse carries the new operator plus their plaintext API
// token. The token cannot be recovered afterwards.
type createOperatorResponse struct {
	Operator operatorView `json:"operator"`
	Token    string       `json:"token"`
}

// Create registers a new operator and mints their API token. Admin only.
// POST /api/operators
func (h *OperatorHandler) Create(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)
	if !operator.IsAdmin() {
		ForbiddenResponse(w, r, h.logger)
		return
	}

	var req createOperatorRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	created, token, err := h.actors.CreateOperator(r.Context(), service.CreateOperatorParams{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/operators/%s", created.ID))
	respondJSON(w, http.StatusCreated, createOperatorResponse{
		Operator: newOperatorView(created),
		Token:    token,
	})
}

// Me returns the calling operator.
// GET /api/operators/me
func (h *OperatorHandler) Me(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)
	respondJSON(w, http.StatusOK, newOperatorView(operator))
}

// Get retrieves an operator by ID.
// GET /api/operators/{id}
func (h *OperatorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	operator, err := h.actors.GetOperator(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newOperatorView(operator))
}
