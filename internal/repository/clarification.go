package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/oleawatch/oleawatch/internal/domain"
)

const clarificationColumns = `id, report_id, recipient_category, recipient_email, subject, questions,
	due_at, requested_by, feedback, feedback_at, outcome, created_at`

func scanClarification(row interface{ Scan(...interface{}) error }) (*domain.ClarificationRequest, error) {
	var c domain.ClarificationRequest
	var recipientEmail, feedback, outcome sql.NullString
	var dueAt, feedbackAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.ReportID, &c.RecipientCategory, &recipientEmail,
		&c.Subject, pq.Array(&c.Questions),
		&dueAt, &c.RequestedBy, &feedback, &feedbackAt, &outcome, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.RecipientEmail = recipientEmail.String
	c.Feedback = feedback.String
	if dueAt.Valid {
		t := dueAt.Time
		c.DueAt = &t
	}
	if feedbackAt.Valid {
		t := feedbackAt.Time
		c.FeedbackAt = &t
	}
	if outcome.Valid {
		o := domain.ClarificationOutcome(outcome.String)
		c.Outcome = &o
	}
	return &c, nil
}

// CreateClarificationParams are the column values for a new request.
type CreateClarificationParams struct {
	ID                uuid.UUID
	ReportID          uuid.UUID
	RecipientCategory domain.RecipientCategory
	RecipientEmail    string
	Subject           string
	Questions         []string
	DueAt             *time.Time
	RequestedBy       uuid.UUID
}

// CreateClarification inserts a sent clarification request and returns it.
func (q *Queries) CreateClarification(ctx context.Context, params CreateClarificationParams) (*domain.ClarificationRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO clarification_requests
			(id, report_id, recipient_category, recipient_email, subject, questions, due_at, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+clarificationColumns,
		params.ID, params.ReportID, params.RecipientCategory,
		nullString(params.RecipientEmail), params.Subject, pq.Array(params.Questions),
		nullTime(params.DueAt), params.RequestedBy,
	)
	return scanClarification(row)
}

// GetClarification retrieves a clarification request by ID.
func (q *Queries) GetClarification(ctx context.Context, id uuid.UUID) (*domain.ClarificationRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+clarificationColumns+` FROM clarification_requests WHERE id = $1`, id)
	return scanClarification(row)
}

// ListClarificationsByReport returns a report's requests, newest first.
func (q *Queries) ListClarificationsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.ClarificationRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+clarificationColumns+` FROM clarification_requests
		WHERE report_id = $1
		ORDER BY created_at DESC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.ClarificationRequest
	for rows.Next() {
		c, err := scanClarification(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *c)
	}
	return requests, rows.Err()
}

// RecordClarificationFeedbackParams stamp the write-once reply.
type RecordClarificationFeedbackParams struct {
	ID         uuid.UUID
	Feedback   string
	FeedbackAt time.Time
	Outcome    domain.ClarificationOutcome
}

// RecordClarificationFeedback stamps the reply on a request. The write is
// guarded against double answers: zero rows updated means feedback was
// already recorded.
func (q *Queries) RecordClarificationFeedback(ctx context.Context, params RecordClarificationFeedbackParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE clarification_requests
		SET feedback = $2, feedback_at = $3, outcome = $4
		WHERE id = $1 AND feedback_at IS NULL`,
		params.ID, params.Feedback, params.FeedbackAt, params.Outcome,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListOverdueClarifications returns unanswered requests whose deadline passed.
func (q *Queries) ListOverdueClarifications(ctx context.Context, now time.Time) ([]domain.ClarificationRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+clarificationColumns+` FROM clarification_requests
		WHERE feedback_at IS NULL AND due_at IS NOT NULL AND due_at < $1
		ORDER BY due_at`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.ClarificationRequest
	for rows.Next() {
		c, err := scanClarification(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *c)
	}
	return requests, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
