// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file implements the report CRUD endpoints. Status never moves through
// these handlers; all status changes go through the workflow endpoints.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oleawatch/oleawatch/internal/auth"
	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
)

// ReportHandler handles HTTP requests for reports.
type ReportHandler struct {
	reports service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

// RegisterRoutes registers the report routes on the mux. All routes require
// an authenticated operator.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("POST /api/reports", protect(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/reports", protect(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/reports/{id}", protect(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/reports/{id}", protect(http.HandlerFunc(h.Update)))
	mux.Handle("GET /api/reports/{id}/actions", protect(http.HandlerFunc(h.Actions)))
}

// createReportRequest is the body of POST /api/reports.
type createReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Draft       bool   `json:"draft"`
}

// updateReportRequest is the body of PATCH /api/reports/{id}.
type updateReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// listReportsResponse is the body of GET /api/reports.
type listReportsResponse struct {
	Reports []reportView `json:"reports"`
	Total   int64        `json:"total"`
	Limit   int32        `json:"limit"`
	Offset  int32        `json:"offset"`
}

// Create opens a new case.
// POST /api/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	report, err := h.reports.Create(r.Context(), domain.CreateReportParams{
		Title:       req.Title,
		Description: req.Description,
		Draft:       req.Draft,
		CreatedBy:   operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/reports/%s", report.ID))
	respondJSON(w, http.StatusCreated, newReportView(report))
}

// Get retrieves a single report.
// GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	report, err := h.reports.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newReportView(report))
}

// List retrieves a paginated report list, optionally filtered by status.
// GET /api/reports?status=in_progress&limit=20&offset=0
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
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

	params := domain.ListReportsParams{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.ReportStatus(raw)
		params.Status = &status
	}

	result, err := h.reports.List(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	resp := listReportsResponse{
		Reports: make([]reportView, 0, len(result.Reports)),
		Total:   result.Total,
		Limit:   result.Limit,
		Offset:  result.Offset,
	}
	for i := range result.Reports {
		resp.Reports = append(resp.Reports, newReportView(&result.Reports[i]))
	}

	respondJSON(w, http.StatusOK, resp)
}

// Update edits a report's title and description.
// PATCH /api/reports/{id}
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req updateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	report, err := h.reports.Update(r.Context(), domain.UpdateReportParams{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newReportView(report))
}

// Actions retrieves the report's audit trail, newest first.
// GET /api/reports/{id}/actions
func (h *ReportHandler) Actions(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	actions, err := h.reports.Actions(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	views := make([]actionLogView, 0, len(actions))
	for i := range actions {
		views = append(views, newActionLogView(&actions[i]))
	}

	respondJSON(w, http.StatusOK, map[string]any{"actions": views})
}
