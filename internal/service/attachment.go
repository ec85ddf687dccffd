// Package service contains the business logic layer.
//
// This file implements the attachment service: uploading evidence files to
// blob storage and serving them back. Linking evidence to a state change
// happens inside the workflow engine, in the transition's transaction.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/metrics"
	"github.com/oleawatch/oleawatch/internal/repository"
	"github.com/oleawatch/oleawatch/internal/storage"
)

// =============================================================================
// Interface Definition
// =============================================================================

// AttachmentService defines the interface for evidence uploads.
type AttachmentService interface {
	// Upload stores an evidence file and its metadata record. The file stays
	// unowned until it is linked to a report or workflow transition.
	// Returns domain.EINVALID for disallowed content types or oversized files.
	Upload(ctx context.Context, params domain.UploadAttachmentParams, data io.Reader) (*domain.Attachment, error)

	// GetByID retrieves an attachment record by ID.
	// Returns domain.ENOTFOUND if the attachment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)

	// Open returns the attachment's content for download. The caller must
	// close the reader.
	Open(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error)

	// URL returns a time-limited URL for the attachment's content.
	URL(ctx context.Context, id uuid.UUID, expires time.Duration) (string, error)

	// ListByOwner retrieves the attachments linked to an entity.
	ListByOwner(ctx context.Context, kind domain.AttachmentOwnerKind, ownerID uuid.UUID) ([]domain.Attachment, error)
}

// =============================================================================
// Implementation
// =============================================================================

// maxEvidenceSize caps evidence uploads at 25 MB.
const maxEvidenceSize = 25 << 20

// attachmentService implements the AttachmentService interface.
type attachmentService struct {
	store  Store
	files  storage.Storage
	logger *slog.Logger
}

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(store Store, files storage.Storage, logger *slog.Logger) AttachmentService {
	return &attachmentService{
		store:  store,
		files:  files,
		logger: logger,
	}
}

func (s *attachmentService) Upload(ctx context.Context, params domain.UploadAttachmentParams, data io.Reader) (*domain.Attachment, error) {
	const op = "attachment.Upload"

	filename := strings.TrimSpace(params.Filename)
	if filename == "" {
		return nil, domain.MissingField(op, "filename")
	}

	// Buffer the upload so the content can be sniffed and sized before it
	// reaches blob storage.
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(data, maxEvidenceSize+1))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to read upload")
	}
	if n == 0 {
		return nil, domain.Invalid(op, "file is empty")
	}
	if n > maxEvidenceSize {
		return nil, domain.Invalid(op, "file exceeds the 25MB evidence limit")
	}

	contentType := storage.DetectContentType(params.ContentType, filename, bytes.NewReader(buf.Bytes()))
	if !storage.IsAllowedEvidenceType(contentType) {
		metrics.AttachmentsUploaded.WithLabelValues("rejected").Inc()
		return nil, domain.Invalid(op, "content type not allowed for evidence: "+contentType)
	}

	id := uuid.New()
	key := storage.EvidenceKey(id, filename)

	if err := s.files.Put(ctx, key, bytes.NewReader(buf.Bytes()), storage.PutOptions{
		ContentType: contentType,
		MaxSize:     maxEvidenceSize,
	}); err != nil {
		metrics.AttachmentsUploaded.WithLabelValues("error").Inc()
		return nil, domain.Internal(err, op, "failed to store file")
	}

	ownerKind := domain.AttachmentOwnerNone
	var ownerID *uuid.UUID
	if params.ReportID != nil {
		ownerKind = domain.AttachmentOwnerReport
		ownerID = params.ReportID
	}

	attachment, err := s.store.CreateAttachment(ctx, repository.CreateAttachmentParams{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        n,
		StorageKey:  key,
		OwnerKind:   ownerKind,
		OwnerID:     ownerID,
		UploadedBy:  params.UploadedBy,
	})
	if err != nil {
		// The record failed; drop the orphaned blob.
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.logger.Error("failed to clean up orphaned evidence file",
				slog.String("key", key),
				slog.String("error", delErr.Error()))
		}
		metrics.AttachmentsUploaded.WithLabelValues("error").Inc()
		return nil, domain.Internal(err, op, "failed to create attachment record")
	}

	metrics.AttachmentsUploaded.WithLabelValues("ok").Inc()
	metrics.AttachmentBytesUploaded.Add(float64(n))
	s.logger.Info("evidence uploaded",
		slog.String("attachment_id", attachment.ID.String()),
		slog.String("content_type", contentType),
		slog.Int64("size", n))
	return attachment, nil
}

func (s *attachmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	const op = "attachment.GetByID"

	attachment, err := s.store.GetAttachment(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "attachment", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load attachment")
	}
	return attachment, nil
}

func (s *attachmentService) Open(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error) {
	const op = "attachment.Open"

	attachment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reader, _, err := s.files.Get(ctx, attachment.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, domain.NotFound(op, "attachment content", id.String())
		}
		return nil, nil, domain.Internal(err, op, "failed to open file")
	}
	return attachment, reader, nil
}

func (s *attachmentService) URL(ctx context.Context, id uuid.UUID, expires time.Duration) (string, error) {
	const op = "attachment.URL"

	attachment, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.files.URL(ctx, attachment.StorageKey, expires)
	if err != nil {
		return "", domain.Internal(err, op, "failed to generate URL")
	}
	return url, nil
}

func (s *attachmentService) ListByOwner(ctx context.Context, kind domain.AttachmentOwnerKind, ownerID uuid.UUID) ([]domain.Attachment, error) {
	const op = "attachment.ListByOwner"

	attachments, err := s.store.ListAttachmentsByOwner(ctx, kind, ownerID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list attachments")
	}
	return attachments, nil
}
