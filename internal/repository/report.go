package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
)

const reportColumns = `id, title, description, status, closure_reason, closed_at, created_by, created_at, updated_at`

// scanReport scans one reports row into a domain Report.
func scanReport(row interface{ Scan(...interface{}) error }) (*domain.Report, error) {
	var r domain.Report
	var closureReason sql.NullString
	var closedAt sql.NullTime

	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.Status,
		&closureReason, &closedAt,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.ClosureReason = closureReason.String
	if closedAt.Valid {
		t := closedAt.Time
		r.ClosedAt = &t
	}
	return &r, nil
}

// CreateReportParams are the column values for a new reports row.
type CreateReportParams struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      domain.ReportStatus
	CreatedBy   uuid.UUID
}

// CreateReport inserts a new report and returns it.
func (q *Queries) CreateReport(ctx context.Context, params CreateReportParams) (*domain.Report, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO reports (id, title, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+reportColumns,
		params.ID, params.Title, params.Description, params.Status, params.CreatedBy,
	)
	return scanReport(row)
}

// GetReport retrieves a report by ID.
func (q *Queries) GetReport(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	return scanReport(row)
}

// GetReportForUpdate retrieves a report by ID with a row lock, serializing
// concurrent workflow transitions on the same report. Must run inside a
// transaction.
func (q *Queries) GetReportForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+` FROM reports WHERE id = $1 FOR UPDATE`, id)
	return scanReport(row)
}

// ListReportsParams are the filters for listing reports.
type ListReportsParams struct {
	Status *domain.ReportStatus
	Limit  int32
	Offset int32
}

// ListReports retrieves a page of reports, newest first, with side-entity
// counts.
func (q *Queries) ListReports(ctx context.Context, params ListReportsParams) ([]domain.Report, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT r.id, r.title, r.description, r.status, r.closure_reason, r.closed_at,
		       r.created_by, r.created_at, r.updated_at,
		       (SELECT count(*) FROM inspections i WHERE i.report_id = r.id),
		       (SELECT count(*) FROM clarification_requests c WHERE c.report_id = r.id),
		       (SELECT count(*) FROM authority_notices n WHERE n.report_id = r.id)
		FROM reports r
		WHERE $1::text IS NULL OR r.status = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`,
		statusFilter(params.Status), params.Limit, params.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var r domain.Report
		var closureReason sql.NullString
		var closedAt sql.NullTime
		err := rows.Scan(
			&r.ID, &r.Title, &r.Description, &r.Status,
			&closureReason, &closedAt,
			&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
			&r.InspectionCount, &r.ClarificationCount, &r.NoticeCount,
		)
		if err != nil {
			return nil, err
		}
		r.ClosureReason = closureReason.String
		if closedAt.Valid {
			t := closedAt.Time
			r.ClosedAt = &t
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// CountReports counts reports matching the optional status filter.
func (q *Queries) CountReports(ctx context.Context, status *domain.ReportStatus) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, `
		SELECT count(*) FROM reports
		WHERE $1::text IS NULL OR status = $1`, statusFilter(status)).Scan(&total)
	return total, err
}

// UpdateReportParams are the mutable column values of a report.
type UpdateReportParams struct {
	ID          uuid.UUID
	Title       string
	Description string
}

// UpdateReport updates a report's title and description.
func (q *Queries) UpdateReport(ctx context.Context, params UpdateReportParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE reports SET title = $2, description = $3, updated_at = now()
		WHERE id = $1`,
		params.ID, params.Title, params.Description,
	)
	return err
}

// UpdateReportStatusParams carries the optimistic status update.
type UpdateReportStatusParams struct {
	ID       uuid.UUID
	Expected domain.ReportStatus
	Target   domain.ReportStatus
}

// UpdateReportStatus moves a report's status, guarded by the status observed
// when the transition was validated. Returns the number of rows updated: zero
// means the report's status changed underneath the caller.
func (q *Queries) UpdateReportStatus(ctx context.Context, params UpdateReportStatusParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE reports SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		params.ID, params.Expected, params.Target,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetReportClosure stamps the report's closure reason and timestamp.
func (q *Queries) SetReportClosure(ctx context.Context, id uuid.UUID, reason string, closedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE reports SET closure_reason = $2, closed_at = $3, updated_at = now()
		WHERE id = $1`,
		id, reason, closedAt,
	)
	return err
}

// statusFilter converts an optional status into a nullable query argument.
func statusFilter(status *domain.ReportStatus) interface{} {
	if status == nil {
		return nil
	}
	return string(*status)
}
