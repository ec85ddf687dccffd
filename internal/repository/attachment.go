package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/oleawatch/oleawatch/internal/domain"
)

const attachmentColumns = `id, filename, content_type, size, storage_key, owner_kind, owner_id, uploaded_by, created_at`

func scanAttachment(row interface{ Scan(...interface{}) error }) (*domain.Attachment, error) {
	var a domain.Attachment
	var ownerID uuid.NullUUID

	err := row.Scan(
		&a.ID, &a.Filename, &a.ContentType, &a.Size, &a.StorageKey,
		&a.OwnerKind, &ownerID, &a.UploadedBy, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		id := ownerID.UUID
		a.OwnerID = &id
	}
	return &a, nil
}

// CreateAttachmentParams are the column values for a new attachments row.
type CreateAttachmentParams struct {
	ID          uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	StorageKey  string
	OwnerKind   domain.AttachmentOwnerKind
	OwnerID     *uuid.UUID
	UploadedBy  uuid.UUID
}

// CreateAttachment inserts an attachment record and returns it.
func (q *Queries) CreateAttachment(ctx context.Context, params CreateAttachmentParams) (*domain.Attachment, error) {
	var ownerID uuid.NullUUID
	if params.OwnerID != nil {
		ownerID = uuid.NullUUID{UUID: *params.OwnerID, Valid: true}
	}

	row := q.db.QueryRowContext(ctx, `
		INSERT INTO attachments
			(id, filename, content_type, size, storage_key, owner_kind, owner_id, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+attachmentColumns,
		params.ID, params.Filename, params.ContentType, params.Size,
		params.StorageKey, params.OwnerKind, ownerID, params.UploadedBy,
	)
	return scanAttachment(row)
}

// GetAttachment retrieves an attachment by ID.
func (q *Queries) GetAttachment(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id)
	return scanAttachment(row)
}

// LinkAttachmentsToStateChange re-links the given attachments to a
// state-change record. Runs inside the transition transaction; returns the
// number of attachments actually re-linked.
func (q *Queries) LinkAttachmentsToStateChange(ctx context.Context, stateChangeID uuid.UUID, attachmentIDs []uuid.UUID) (int64, error) {
	if len(attachmentIDs) == 0 {
		return 0, nil
	}

	ids := make([]string, len(attachmentIDs))
	for i, id := range attachmentIDs {
		ids[i] = id.String()
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE attachments
		SET owner_kind = $1, owner_id = $2
		WHERE id = ANY($3::uuid[])`,
		domain.AttachmentOwnerStateChange, stateChangeID, pq.Array(ids),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListAttachmentsByOwner returns the attachments linked to one entity.
func (q *Queries) ListAttachmentsByOwner(ctx context.Context, kind domain.AttachmentOwnerKind, ownerID uuid.UUID) ([]domain.Attachment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+attachmentColumns+` FROM attachments
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY created_at DESC`, kind, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []domain.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, *a)
	}
	return attachments, rows.Err()
}

// CountAttachments counts attachments by the given IDs; used to verify that
// every attachment referenced by a transition exists.
func (q *Queries) CountAttachments(ctx context.Context, attachmentIDs []uuid.UUID) (int64, error) {
	if len(attachmentIDs) == 0 {
		return 0, nil
	}

	ids := make([]string, len(attachmentIDs))
	for i, id := range attachmentIDs {
		ids[i] = id.String()
	}

	var total int64
	err := q.db.QueryRowContext(ctx, `
		SELECT count(*) FROM attachments WHERE id = ANY($1::uuid[])`, pq.Array(ids)).Scan(&total)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return total, nil
}
