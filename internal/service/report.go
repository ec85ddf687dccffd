// Package service contains the business logic layer.
//
// This file implements the report service: opening, reading and editing
// investigation cases. Status is deliberately out of scope here; it only
// moves through the workflow engine.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/metrics"
	"github.com/oleawatch/oleawatch/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ReportService defines the interface for report case management.
type ReportService interface {
	// Create opens a new case. Reports start IN_PROGRESS unless created as a
	// draft.
	// Returns domain.EINVALID for validation errors.
	Create(ctx context.Context, params domain.CreateReportParams) (*domain.Report, error)

	// GetByID retrieves a report by ID.
	// Returns domain.ENOTFOUND if the report does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)

	// List retrieves a paginated list of reports, newest first.
	List(ctx context.Context, params domain.ListReportsParams) (*domain.ListReportsResult, error)

	// Update edits a report's title and description.
	// Returns domain.ENOTFOUND if the report does not exist.
	// Returns domain.ESTATE if the report is archived.
	Update(ctx context.Context, params domain.UpdateReportParams) (*domain.Report, error)

	// Actions retrieves the report's audit trail, newest first.
	Actions(ctx context.Context, reportID uuid.UUID) ([]domain.ActionLog, error)
}

// =============================================================================
// Implementation
// =============================================================================

// reportService implements the ReportService interface.
type reportService struct {
	store  Store
	tx     Transactor
	logger *slog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(store Store, tx Transactor, logger *slog.Logger) ReportService {
	return &reportService{
		store:  store,
		tx:     tx,
		logger: logger,
	}
}

const maxTitleLength = 200

func (s *reportService) Create(ctx context.Context, params domain.CreateReportParams) (*domain.Report, error) {
	const op = "report.Create"

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, domain.MissingField(op, "title")
	}
	if len(title) > maxTitleLength {
		return nil, domain.Invalid(op, "title must be 200 characters or less")
	}

	status := domain.ReportStatusInProgress
	if params.Draft {
		status = domain.ReportStatusDraft
	}

	var report *domain.Report
	err := s.tx.InTx(ctx, func(store Store) error {
		var err error
		report, err = store.CreateReport(ctx, repository.CreateReportParams{
			ID:          uuid.New(),
			Title:       title,
			Description: strings.TrimSpace(params.Description),
			Status:      status,
			CreatedBy:   params.CreatedBy,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to create report")
		}

		_, err = store.AppendAction(ctx, domain.AppendActionParams{
			ReportID: report.ID,
			Type:     domain.ActionTypeReportCreated,
			Message:  "Report opened: " + title,
			ActorID:  params.CreatedBy,
			Metadata: auditMetadata(map[string]any{"status": status}),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to append audit entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReportsCreated.Inc()
	s.logger.Info("report created",
		slog.String("report_id", report.ID.String()),
		slog.String("status", status.String()))
	return report, nil
}

func (s *reportService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	const op = "report.GetByID"

	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "report", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, params domain.ListReportsParams) (*domain.ListReportsResult, error) {
	const op = "report.List"

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, domain.Invalid(op, "invalid status filter: "+params.Status.String())
	}

	reports, err := s.store.ListReports(ctx, repository.ListReportsParams{
		Status: params.Status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list reports")
	}

	total, err := s.store.CountReports(ctx, params.Status)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count reports")
	}

	return &domain.ListReportsResult{
		Reports: reports,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

func (s *reportService) Update(ctx context.Context, params domain.UpdateReportParams) (*domain.Report, error) {
	const op = "report.Update"

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, domain.MissingField(op, "title")
	}
	if len(title) > maxTitleLength {
		return nil, domain.Invalid(op, "title must be 200 characters or less")
	}

	var report *domain.Report
	err := s.tx.InTx(ctx, func(store Store) error {
		var err error
		report, err = store.GetReportForUpdate(ctx, params.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "report", params.ID.String())
			}
			return domain.Internal(err, op, "failed to load report")
		}
		if !report.IsEditable() {
			return domain.InvalidState(op, "archived reports are immutable")
		}

		if err := store.UpdateReport(ctx, repository.UpdateReportParams{
			ID:          params.ID,
			Title:       title,
			Description: strings.TrimSpace(params.Description),
		}); err != nil {
			return domain.Internal(err, op, "failed to update report")
		}

		report.Title = title
		report.Description = strings.TrimSpace(params.Description)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) Actions(ctx context.Context, reportID uuid.UUID) ([]domain.ActionLog, error) {
	const op = "report.Actions"

	if _, err := s.GetByID(ctx, reportID); err != nil {
		return nil, err
	}

	actions, err := s.store.ListActions(ctx, reportID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load audit trail")
	}
	return actions, nil
}
