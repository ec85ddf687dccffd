package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/oleawatch/oleawatch/internal/domain"
)

// =============================================================================
// State Changes
// =============================================================================

// InsertStateChangeParams are the column values for a new state-change row.
type InsertStateChangeParams struct {
	ID         uuid.UUID
	ReportID   uuid.UUID
	FromStatus domain.ReportStatus
	ToStatus   domain.ReportStatus
	Motive     string
	Note       string
	Metadata   json.RawMessage
	ActorID    uuid.UUID
}

// InsertStateChange records one validated status move.
func (q *Queries) InsertStateChange(ctx context.Context, params InsertStateChangeParams) (*domain.StateChange, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO report_state_changes
			(id, report_id, from_status, to_status, motive, note, metadata, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, report_id, from_status, to_status, motive, note, metadata, actor_id, created_at`,
		params.ID, params.ReportID, params.FromStatus, params.ToStatus,
		params.Motive, nullString(params.Note), rawMessage(params.Metadata), params.ActorID,
	)
	return scanStateChange(row)
}

// ListStateChanges returns a report's transition history, newest first.
func (q *Queries) ListStateChanges(ctx context.Context, reportID uuid.UUID) ([]domain.StateChange, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, report_id, from_status, to_status, motive, note, metadata, actor_id, created_at
		FROM report_state_changes
		WHERE report_id = $1
		ORDER BY created_at DESC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []domain.StateChange
	for rows.Next() {
		sc, err := scanStateChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, *sc)
	}
	return changes, rows.Err()
}

// CountStateChanges counts a report's state-change records.
func (q *Queries) CountStateChanges(ctx context.Context, reportID uuid.UUID) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, `
		SELECT count(*) FROM report_state_changes WHERE report_id = $1`, reportID).Scan(&total)
	return total, err
}

func scanStateChange(row interface{ Scan(...interface{}) error }) (*domain.StateChange, error) {
	var sc domain.StateChange
	var note sql.NullString
	var metadata pqtype.NullRawMessage

	err := row.Scan(
		&sc.ID, &sc.ReportID, &sc.FromStatus, &sc.ToStatus,
		&sc.Motive, &note, &metadata, &sc.ActorID, &sc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	sc.Note = note.String
	if metadata.Valid {
		sc.Metadata = metadata.RawMessage
	}
	return &sc, nil
}

// =============================================================================
// Action Logs (append-only)
// =============================================================================

// AppendAction writes one immutable audit trail entry. The action_logs table
// is append-only: no update or delete statements exist for it.
func (q *Queries) AppendAction(ctx context.Context, params domain.AppendActionParams) (*domain.ActionLog, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO action_logs (id, report_id, type, message, actor_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, report_id, type, message, actor_id, metadata, created_at`,
		uuid.New(), params.ReportID, params.Type, params.Message,
		params.ActorID, rawMessage(params.Metadata),
	)
	return scanActionLog(row)
}

// ListActions returns a report's audit trail, newest first.
func (q *Queries) ListActions(ctx context.Context, reportID uuid.UUID) ([]domain.ActionLog, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, report_id, type, message, actor_id, metadata, created_at
		FROM action_logs
		WHERE report_id = $1
		ORDER BY created_at DESC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActionLog
	for rows.Next() {
		entry, err := scanActionLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func scanActionLog(row interface{ Scan(...interface{}) error }) (*domain.ActionLog, error) {
	var a domain.ActionLog
	var metadata pqtype.NullRawMessage

	err := row.Scan(&a.ID, &a.ReportID, &a.Type, &a.Message, &a.ActorID, &metadata, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if metadata.Valid {
		a.Metadata = metadata.RawMessage
	}
	return &a, nil
}

// =============================================================================
// Null Helpers
// =============================================================================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func rawMessage(m json.RawMessage) pqtype.NullRawMessage {
	return pqtype.NullRawMessage{RawMessage: m, Valid: len(m) > 0}
}
