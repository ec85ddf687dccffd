// This file implements the dossier service: assembling a report's full case
// history and rendering it in an export format.
package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/dossier"
	"github.com/oleawatch/oleawatch/internal/metrics"
)

// =============================================================================
// Interface Definition
// =============================================================================

// DossierService assembles and exports case dossiers.
type DossierService interface {
	// Build assembles the full case history for a report.
	// Returns domain.ENOTFOUND if the report does not exist.
	Build(ctx context.Context, reportID uuid.UUID, requestedBy *domain.Operator) (*domain.Dossier, error)

	// Export assembles the dossier and renders it to w in the requested
	// format. Returns the dossier for response headers (filename, size).
	// Returns domain.EINVALID for an unsupported format.
	// Returns domain.ENOTFOUND if the report does not exist.
	Export(ctx context.Context, reportID uuid.UUID, format domain.DossierFormat, requestedBy *domain.Operator, w io.Writer) (*domain.Dossier, error)
}

// =============================================================================
// Implementation
// =============================================================================

// dossierService implements the DossierService interface.
type dossierService struct {
	store      Store
	generators map[domain.DossierFormat]dossier.Generator
	logger     *slog.Logger
	now        func() time.Time
}

// NewDossierService creates a new DossierService with the given generators.
func NewDossierService(store Store, generators []dossier.Generator, logger *slog.Logger) DossierService {
	byFormat := make(map[domain.DossierFormat]dossier.Generator, len(generators))
	for _, g := range generators {
		byFormat[g.Format()] = g
	}
	return &dossierService{
		store:      store,
		generators: byFormat,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *dossierService) Build(ctx context.Context, reportID uuid.UUID, requestedBy *domain.Operator) (*domain.Dossier, error) {
	const op = "dossier.Build"

	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "report", reportID.String())
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}

	d := &domain.Dossier{
		Report:      *report,
		GeneratedAt: s.now().UTC(),
	}
	if requestedBy != nil {
		d.GeneratedBy = requestedBy.Name
	}

	if d.StateChanges, err = s.store.ListStateChanges(ctx, reportID); err != nil {
		return nil, domain.Internal(err, op, "failed to load state changes")
	}
	if d.Inspections, err = s.store.ListInspectionsByReport(ctx, reportID); err != nil {
		return nil, domain.Internal(err, op, "failed to load inspections")
	}
	if d.Requests, err = s.store.ListClarificationsByReport(ctx, reportID); err != nil {
		return nil, domain.Internal(err, op, "failed to load clarification requests")
	}
	if d.Notices, err = s.store.ListNoticesByReport(ctx, reportID); err != nil {
		return nil, domain.Internal(err, op, "failed to load authority notices")
	}
	if d.Mentions, err = s.store.ListMentionsByReport(ctx, reportID); err != nil {
		return nil, domain.Internal(err, op, "failed to load mentions")
	}
	if d.Attachments, err = s.store.ListAttachmentsByOwner(ctx, domain.AttachmentOwnerReport, reportID); err != nil {
		return nil, domain.Internal(err, op, "failed to load attachments")
	}

	return d, nil
}

func (s *dossierService) Export(ctx context.Context, reportID uuid.UUID, format domain.DossierFormat, requestedBy *domain.Operator, w io.Writer) (*domain.Dossier, error) {
	const op = "dossier.Export"

	gen, ok := s.generators[format]
	if !ok {
		return nil, domain.Invalid(op, "unsupported export format: "+string(format))
	}

	d, err := s.Build(ctx, reportID, requestedBy)
	if err != nil {
		return nil, err
	}

	bytes, err := gen.Generate(ctx, d, w)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to render dossier")
	}

	metrics.DossiersExported.WithLabelValues(string(format)).Inc()
	s.logger.Info("dossier exported",
		slog.String("report_id", reportID.String()),
		slog.String("format", string(format)),
		slog.Int64("bytes", bytes))
	return d, nil
}
