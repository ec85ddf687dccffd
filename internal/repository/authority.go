package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/oleawatch/oleawatch/internal/domain"
)

const noticeColumns = `id, report_id, authority_kind, authority_name, subject, violations,
	severity, protocol_number, sent_at, feedback, feedback_at, created_at`

func scanNotice(row interface{ Scan(...interface{}) error }) (*domain.AuthorityNotice, error) {
	var n domain.AuthorityNotice
	var protocolNumber, feedback sql.NullString
	var feedbackAt sql.NullTime

	err := row.Scan(
		&n.ID, &n.ReportID, &n.AuthorityKind, &n.AuthorityName,
		&n.Subject, pq.Array(&n.Violations), &n.Severity,
		&protocolNumber, &n.SentAt, &feedback, &feedbackAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.ProtocolNumber = protocolNumber.String
	n.Feedback = feedback.String
	if feedbackAt.Valid {
		t := feedbackAt.Time
		n.FeedbackAt = &t
	}
	return &n, nil
}

// CreateNoticeParams are the column values for a new authority notice.
type CreateNoticeParams struct {
	ID            uuid.UUID
	ReportID      uuid.UUID
	AuthorityKind domain.AuthorityKind
	AuthorityName string
	Subject       string
	Violations    []string
	Severity      domain.NoticeSeverity
	SentAt        time.Time
}

// CreateNotice inserts a prepared authority notice and returns it.
func (q *Queries) CreateNotice(ctx context.Context, params CreateNoticeParams) (*domain.AuthorityNotice, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO authority_notices
			(id, report_id, authority_kind, authority_name, subject, violations, severity, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+noticeColumns,
		params.ID, params.ReportID, params.AuthorityKind, params.AuthorityName,
		params.Subject, pq.Array(params.Violations), params.Severity, params.SentAt,
	)
	return scanNotice(row)
}

// GetNotice retrieves an authority notice by ID.
func (q *Queries) GetNotice(ctx context.Context, id uuid.UUID) (*domain.AuthorityNotice, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+noticeColumns+` FROM authority_notices WHERE id = $1`, id)
	return scanNotice(row)
}

// ListNoticesByReport returns a report's notices, newest first.
func (q *Queries) ListNoticesByReport(ctx context.Context, reportID uuid.UUID) ([]domain.AuthorityNotice, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+noticeColumns+` FROM authority_notices
		WHERE report_id = $1
		ORDER BY created_at DESC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []domain.AuthorityNotice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		notices = append(notices, *n)
	}
	return notices, rows.Err()
}

// HasPendingNotice reports whether the report has a feedback-less notice.
func (q *Queries) HasPendingNotice(ctx context.Context, reportID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM authority_notices
			WHERE report_id = $1 AND feedback_at IS NULL
		)`, reportID).Scan(&exists)
	return exists, err
}

// RecordNoticeFeedbackParams stamp the write-once authority reply.
type RecordNoticeFeedbackParams struct {
	ID             uuid.UUID
	Feedback       string
	FeedbackAt     time.Time
	ProtocolNumber string
}

// RecordNoticeFeedback stamps the authority's reply on a notice. Zero rows
// updated means feedback was already recorded.
func (q *Queries) RecordNoticeFeedback(ctx context.Context, params RecordNoticeFeedbackParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE authority_notices
		SET feedback = $2, feedback_at = $3,
		    protocol_number = COALESCE(NULLIF($4, ''), protocol_number)
		WHERE id = $1 AND feedback_at IS NULL`,
		params.ID, params.Feedback, params.FeedbackAt, params.ProtocolNumber,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
