package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
)

const inspectionColumns = `id, report_id, kind, scheduled_at, location, inspector, minutes, outcome, created_at, updated_at`

func scanInspection(row interface{ Scan(...interface{}) error }) (*domain.Inspection, error) {
	var i domain.Inspection
	var location, inspector, minutes, outcome sql.NullString

	err := row.Scan(
		&i.ID, &i.ReportID, &i.Kind, &i.ScheduledAt,
		&location, &inspector, &minutes, &outcome,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.Location = location.String
	i.Inspector = inspector.String
	i.Minutes = minutes.String
	i.Outcome = outcome.String
	return &i, nil
}

// CreateInspectionParams are the column values for a new inspections row.
type CreateInspectionParams struct {
	ID          uuid.UUID
	ReportID    uuid.UUID
	Kind        domain.InspectionKind
	ScheduledAt time.Time
	Location    string
	Inspector   string
}

// CreateInspection inserts a planned inspection and returns it.
func (q *Queries) CreateInspection(ctx context.Context, params CreateInspectionParams) (*domain.Inspection, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO inspections (id, report_id, kind, scheduled_at, location, inspector)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+inspectionColumns,
		params.ID, params.ReportID, params.Kind, params.ScheduledAt,
		nullString(params.Location), nullString(params.Inspector),
	)
	return scanInspection(row)
}

// GetInspection retrieves an inspection by ID.
func (q *Queries) GetInspection(ctx context.Context, id uuid.UUID) (*domain.Inspection, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+inspectionColumns+` FROM inspections WHERE id = $1`, id)
	return scanInspection(row)
}

// ListInspectionsByReport returns a report's inspections, newest first.
func (q *Queries) ListInspectionsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.Inspection, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+inspectionColumns+` FROM inspections
		WHERE report_id = $1
		ORDER BY created_at DESC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inspections []domain.Inspection
	for rows.Next() {
		i, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, *i)
	}
	return inspections, rows.Err()
}

// UpdateInspectionMinutesParams complete an inspection with its verbale.
type UpdateInspectionMinutesParams struct {
	ID      uuid.UUID
	Minutes string
	Outcome string
}

// UpdateInspectionMinutes records an inspection's minutes. The write is
// guarded so minutes are recorded once; returns the number of rows updated.
func (q *Queries) UpdateInspectionMinutes(ctx context.Context, params UpdateInspectionMinutesParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE inspections SET minutes = $2, outcome = $3, updated_at = now()
		WHERE id = $1 AND (minutes IS NULL OR minutes = '')`,
		params.ID, params.Minutes, nullString(params.Outcome),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LatestCompletedInspection returns the most recently completed inspection of
// a report, or sql.ErrNoRows if none has minutes.
func (q *Queries) LatestCompletedInspection(ctx context.Context, reportID uuid.UUID) (*domain.Inspection, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+inspectionColumns+` FROM inspections
		WHERE report_id = $1 AND minutes IS NOT NULL AND minutes <> ''
		ORDER BY updated_at DESC
		LIMIT 1`, reportID)
	return scanInspection(row)
}
