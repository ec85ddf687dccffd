// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file implements the evidence attachment endpoints: multipart upload,
// metadata lookup and content download.
package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/oleawatch/oleawatch/internal/auth"
	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
)

// maxUploadMemory bounds how much of a multipart upload is buffered in
// memory before spilling to disk.
const maxUploadMemory = 10 << 20

// AttachmentHandler handles HTTP requests for evidence attachments.
type AttachmentHandler struct {
	attachments service.AttachmentService
	logger      *slog.Logger
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(attachments service.AttachmentService, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		attachments: attachments,
		logger:      logger,
	}
}

// RegisterRoutes registers the attachment routes on the mux. All routes
// require an authenticated operator; the upload route is additionally
// wrapped with limit.
func (h *AttachmentHandler) RegisterRoutes(mux *http.ServeMux, protect, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /api/attachments", protect(limit(http.HandlerFunc(h.Upload))))
	mux.Handle("GET /api/attachments/{id}", protect(http.HandlerFunc(h.Get)))
	mux.Handle("GET /api/attachments/{id}/download", protect(http.HandlerFunc(h.Download)))
	mux.Handle("GET /api/reports/{id}/attachments", protect(http.HandlerFunc(h.ListForReport)))
}

// Upload stores an evidence file. The file arrives as the "file" part of a
// multipart form; an optional "report_id" part links it to a report
// immediately. Unlinked files are claimed later by a workflow transition.
// POST /api/attachments
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "handler.attachment.upload"

	operator := auth.GetOperatorFromRequest(r)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		ErrorResponse(w, r, domain.Invalid(op, "malformed multipart form"), h.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorResponse(w, r, domain.Invalid(op, "missing file part"), h.logger)
		return
	}
	defer file.Close()

	params := domain.UploadAttachmentParams{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		UploadedBy:  operator.ID,
	}
	if raw := r.FormValue("report_id"); raw != "" {
		reportID, err := uuid.Parse(raw)
		if err != nil {
			ErrorResponse(w, r, domain.Invalid(op, "invalid report_id: must be a UUID"), h.logger)
			return
		}
		params.ReportID = &reportID
	}

	attachment, err := h.attachments.Upload(r.Context(), params, file)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/attachments/%s", attachment.ID))
	respondJSON(w, http.StatusCreated, newAttachmentView(attachment))
}

// Get retrieves attachment metadata.
// GET /api/attachments/{id}
func (h *AttachmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	attachment, err := h.attachments.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newAttachmentView(attachment))
}

// Download streams the attachment's content.
// GET /api/attachments/{id}/download
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	attachment, reader, err := h.attachments.Open(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", attachment.Size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("failed to stream attachment", "error", err, "attachment_id", id)
		return
	}
}

// ListForReport retrieves the attachments linked to a report.
// GET /api/reports/{id}/attachments
func (h *AttachmentHandler) ListForReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	attachments, err := h.attachments.ListByOwner(r.Context(), domain.AttachmentOwnerReport, id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	views := make([]attachmentView, 0, len(attachments))
	for i := range attachments {
		views = append(views, newAttachmentView(&attachments[i]))
	}

	respondJSON(w, http.StatusOK, map[string]any{"attachments": views})
}
