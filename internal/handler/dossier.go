package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oleawatch/oleawatch/internal/auth"
	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
)

// DossierHandler serves case dossier exports.
type DossierHandler struct {
	dossiers service.DossierService
	logger   *slog.Logger
}

// NewDossierHandler creates a new DossierHandler.
func NewDossierHandler(dossiers service.DossierService, logger *slog.Logger) *DossierHandler {
	return &DossierHandler{
		dossiers: dossiers,
		logger:   logger,
	}
}

// RegisterRoutes registers the dossier routes on the mux. All routes require
// an authenticated operator.
func (h *DossierHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /api/reports/{id}/dossier", protect(http.HandlerFunc(h.Export)))
}

// Export renders the report's full case history as a downloadable document.
// The format query parameter selects pdf (default) or docx.
// GET /api/reports/{id}/dossier?format=pdf
func (h *DossierHandler) Export(w http.ResponseWriter, r *http.Request) {
	const op = "handler.ExportDossier"

	reportID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, domain.Invalid(op, "invalid report id"), h.logger)
		return
	}

	format := domain.DossierFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = domain.DossierFormatPDF
	}
	if !format.IsValid() {
		ErrorResponse(w, r, domain.Invalid(op, "unsupported export format: "+string(format)), h.logger)
		return
	}

	operator := auth.GetOperatorFromRequest(r)

	// Render into a buffer so headers carry the final size.
	var buf bytes.Buffer
	d, err := h.dossiers.Export(r.Context(), reportID, format, operator, &buf)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename(format)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to stream dossier", slog.String("error", err.Error()))
	}
}
