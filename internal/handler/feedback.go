// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file implements the feedback endpoints. Feedback is write-once: the
// first reply recorded on a clarification request or authority notice wins,
// and the parent report moves in the same transaction.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/oleawatch/oleawatch/internal/auth"
	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
)

// FeedbackHandler handles HTTP requests for recording feedback.
type FeedbackHandler struct {
	feedback service.FeedbackService
	logger   *slog.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedback service.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
		logger:   logger,
	}
}

// RegisterRoutes registers the feedback routes on the mux. All routes require
// an authenticated operator.
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("POST /api/clarifications/{id}/feedback", protect(http.HandlerFunc(h.RecordClarificationFeedback)))
	mux.Handle("POST /api/authority-notices/{id}/feedback", protect(http.HandlerFunc(h.RecordAuthorityFeedback)))
}

// clarificationFeedbackRequest is the body of the clarification feedback
// endpoint.
type clarificationFeedbackRequest struct {
	Feedback      string                      `json:"feedback"`
	Outcome       domain.ClarificationOutcome `json:"outcome"`
	AuthorityName string                      `json:"authority_name"`
	AuthorityKind domain.AuthorityKind        `json:"authority_kind"`
}

// RecordClarificationFeedback stamps a reply on a clarification request and
// resolves the parent report: closed, or escalated to an authority.
// POST /api/clarifications/{id}/feedback
func (h *FeedbackHandler) RecordClarificationFeedback(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req clarificationFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	result, err := h.feedback.RecordClarificationFeedback(r.Context(), domain.ClarificationFeedbackParams{
		ClarificationID: id,
		Feedback:        req.Feedback,
		Outcome:         req.Outcome,
		AuthorityName:   req.AuthorityName,
		AuthorityKind:   req.AuthorityKind,
		ActorID:         operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newTransitionResultView(result))
}

// authorityFeedbackRequest is the body of the authority feedback endpoint.
// CloseCase defaults to true: an authority reply normally resolves the case.
type authorityFeedbackRequest struct {
	Feedback       string `json:"feedback"`
	ProtocolNumber string `json:"protocol_number"`
	KeepOpen       bool   `json:"keep_open"`
}

// RecordAuthorityFeedback stamps the authority's reply on a notice and,
// unless the caller keeps the case open, closes the parent report.
// POST /api/authority-notices/{id}/feedback
func (h *FeedbackHandler) RecordAuthorityFeedback(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req authorityFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	result, err := h.feedback.RecordAuthorityFeedback(r.Context(), domain.AuthorityFeedbackParams{
		NoticeID:       id,
		Feedback:       req.Feedback,
		ProtocolNumber: req.ProtocolNumber,
		CloseCase:      !req.KeepOpen,
		ActorID:        operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	if result == nil {
		// Feedback recorded without moving the parent report.
		respondJSON(w, http.StatusNoContent, nil)
		return
	}

	respondJSON(w, http.StatusOK, newTransitionResultView(result))
}
