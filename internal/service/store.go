// Package service contains the business logic layer.
//
// This file defines the Store seam between services and the repository. The
// workflow engine never talks to module-level clients: all collaborators are
// injected at construction, and every workflow operation runs inside a single
// database transaction obtained through the Transactor.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/repository"
)

// Store is the persistence surface the services depend on. It is implemented
// by *repository.Queries and by in-memory fakes in tests.
type Store interface {
	// Reports
	CreateReport(ctx context.Context, params repository.CreateReportParams) (*domain.Report, error)
	GetReport(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	GetReportForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	ListReports(ctx context.Context, params repository.ListReportsParams) ([]domain.Report, error)
	CountReports(ctx context.Context, status *domain.ReportStatus) (int64, error)
	UpdateReport(ctx context.Context, params repository.UpdateReportParams) error
	UpdateReportStatus(ctx context.Context, params repository.UpdateReportStatusParams) (int64, error)
	SetReportClosure(ctx context.Context, id uuid.UUID, reason string, closedAt time.Time) error

	// State changes and audit trail
	InsertStateChange(ctx context.Context, params repository.InsertStateChangeParams) (*domain.StateChange, error)
	ListStateChanges(ctx context.Context, reportID uuid.UUID) ([]domain.StateChange, error)
	AppendAction(ctx context.Context, params domain.AppendActionParams) (*domain.ActionLog, error)
	ListActions(ctx context.Context, reportID uuid.UUID) ([]domain.ActionLog, error)

	// Inspections
	CreateInspection(ctx context.Context, params repository.CreateInspectionParams) (*domain.Inspection, error)
	GetInspection(ctx context.Context, id uuid.UUID) (*domain.Inspection, error)
	ListInspectionsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.Inspection, error)
	UpdateInspectionMinutes(ctx context.Context, params repository.UpdateInspectionMinutesParams) (int64, error)
	LatestCompletedInspection(ctx context.Context, reportID uuid.UUID) (*domain.Inspection, error)

	// Clarification requests
	CreateClarification(ctx context.Context, params repository.CreateClarificationParams) (*domain.ClarificationRequest, error)
	GetClarification(ctx context.Context, id uuid.UUID) (*domain.ClarificationRequest, error)
	ListClarificationsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.ClarificationRequest, error)
	RecordClarificationFeedback(ctx context.Context, params repository.RecordClarificationFeedbackParams) (int64, error)
	ListOverdueClarifications(ctx context.Context, now time.Time) ([]domain.ClarificationRequest, error)

	// Authority notices
	CreateNotice(ctx context.Context, params repository.CreateNoticeParams) (*domain.AuthorityNotice, error)
	GetNotice(ctx context.Context, id uuid.UUID) (*domain.AuthorityNotice, error)
	ListNoticesByReport(ctx context.Context, reportID uuid.UUID) ([]domain.AuthorityNotice, error)
	HasPendingNotice(ctx context.Context, reportID uuid.UUID) (bool, error)
	RecordNoticeFeedback(ctx context.Context, params repository.RecordNoticeFeedbackParams) (int64, error)

	// Attachments
	CreateAttachment(ctx context.Context, params repository.CreateAttachmentParams) (*domain.Attachment, error)
	GetAttachment(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	LinkAttachmentsToStateChange(ctx context.Context, stateChangeID uuid.UUID, attachmentIDs []uuid.UUID) (int64, error)
	ListAttachmentsByOwner(ctx context.Context, kind domain.AttachmentOwnerKind, ownerID uuid.UUID) ([]domain.Attachment, error)
	CountAttachments(ctx context.Context, attachmentIDs []uuid.UUID) (int64, error)

	// Mentions
	CreateMention(ctx context.Context, params repository.CreateMentionParams) (*domain.Mention, error)
	GetMention(ctx context.Context, id uuid.UUID) (*domain.Mention, error)
	ListMentions(ctx context.Context, params repository.ListMentionsParams) ([]domain.Mention, error)
	ListMentionsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.Mention, error)
	ScoreMention(ctx context.Context, params repository.ScoreMentionParams) error
	PromoteMention(ctx context.Context, id, reportID uuid.UUID) error

	// Operators
	CreateOperator(ctx context.Context, params repository.CreateOperatorParams) (*domain.Operator, error)
	GetOperator(ctx context.Context, id uuid.UUID) (*domain.Operator, error)
	GetOperatorByEmail(ctx context.Context, email string) (*domain.Operator, error)

	// Background jobs
	EnqueueJob(ctx context.Context, params repository.EnqueueJobParams) (repository.Job, error)
}

// Transactor runs a function against a Store bound to one database
// transaction. The function's error rolls the transaction back; a nil return
// commits it.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

// sqlTransactor implements Transactor over database/sql.
type sqlTransactor struct {
	db *sql.DB
}

// NewTransactor creates a Transactor over the given database handle.
func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(repository.New(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
