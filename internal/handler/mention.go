// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file implements the mention endpoints: ingesting monitored content,
// listing the feed, and promoting a mention into a report.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oleawatch/oleawatch/internal/auth"
	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
)

// MentionHandler handles HTTP requests for monitored mentions.
type MentionHandler struct {
	mentions service.MentionService
	logger   *slog.Logger
}

// NewMentionHandler creates a new MentionHandler.
func NewMentionHandler(mentions service.MentionService, logger *slog.Logger) *MentionHandler {
	return &MentionHandler{
		mentions: mentions,
		logger:   logger,
	}
}

// RegisterRoutes registers the mention routes on the mux. All routes require
// an authenticated operator; the ingest route is additionally wrapped with
// limit so automated feeds cannot flood the pipeline.
func (h *MentionHandler) RegisterRoutes(mux *http.ServeMux, protect, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /api/mentions", protect(limit(http.HandlerFunc(h.Ingest))))
	mux.Handle("GET /api/mentions", protect(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/mentions/{id}", protect(http.HandlerFunc(h.Get)))
	mux.Handle("POST /api/mentions/{id}/promote", protect(http.HandlerFunc(h.Promote)))
}

// ingestMentionRequest is the body of POST /api/mentions.
type ingestMentionRequest struct {
	Source  string `json:"source"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt"`
}

// Ingest stores a new mention and schedules sentiment scoring for it.
// POST /api/mentions
func (h *MentionHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestMentionRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	mention, err := h.mentions.Ingest(r.Context(), domain.IngestMentionParams{
		Source:  req.Source,
		URL:     req.URL,
		Excerpt: req.Excerpt,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/mentions/%s", mention.ID))
	respondJSON(w, http.StatusCreated, newMentionView(mention))
}

// Get retrieves a single mention.
// GET /api/mentions/{id}
func (h *MentionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	mention, err := h.mentions.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newMentionView(mention))
}

// List retrieves a paginated mention feed, optionally filtered by sentiment.
// GET /api/mentions?sentiment=negative&limit=20&offset=0
func (h *MentionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt32(r, "limit", 0)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}
	offset, err := queryInt32(r, "offset", 0)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	params := domain.ListMentionsParams{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("sentiment"); raw != "" {
		sentiment := domain.MentionSentiment(raw)
		params.Sentiment = &sentiment
	}

	mentions, err := h.mentions.List(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	views := make([]mentionView, 0, len(mentions))
	for i := range mentions {
		views = append(views, newMentionView(&mentions[i]))
	}

	respondJSON(w, http.StatusOK, map[string]any{"mentions": views})
}

// Promote opens a report from a mention and links the two.
// POST /api/mentions/{id}/promote
func (h *MentionHandler) Promote(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	report, err := h.mentions.Promote(r.Context(), id, operator.ID)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/reports/%s", report.ID))
	respondJSON(w, http.StatusCreated, newReportView(report))
}
