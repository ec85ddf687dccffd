// Package domain contains core business types and interfaces.
//
// This file defines the Attachment domain type: binary evidence optionally
// linked to a report, inspection, clarification request, authority notice or
// state change.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentOwnerKind identifies which entity an attachment is linked to.
type AttachmentOwnerKind string

const (
	AttachmentOwnerReport        AttachmentOwnerKind = "report"
	AttachmentOwnerInspection    AttachmentOwnerKind = "inspection"
	AttachmentOwnerClarification AttachmentOwnerKind = "clarification"
	AttachmentOwnerNotice        AttachmentOwnerKind = "authority_notice"
	AttachmentOwnerStateChange   AttachmentOwnerKind = "state_change"
	AttachmentOwnerNone          AttachmentOwnerKind = "none"
)

// Attachment represents a stored piece of binary evidence.
//
// Ownership is by foreign key to exactly one entity, or none while the file is
// freshly uploaded and not yet linked. Re-linking an attachment to a state
// change happens inside the same transaction as the transition itself.
type Attachment struct {
	ID            uuid.UUID           // Unique identifier
	Filename      string              // Original filename
	ContentType   string              // MIME type
	Size          int64               // Size in bytes
	StorageKey    string              // Key in blob storage
	OwnerKind     AttachmentOwnerKind // Which entity owns the attachment
	OwnerID       *uuid.UUID          // The owning entity's ID (nil when unowned)
	UploadedBy    uuid.UUID           // Operator who uploaded the file
	CreatedAt     time.Time           // When the attachment was created
}

// IsLinked returns true if the attachment is owned by an entity.
func (a *Attachment) IsLinked() bool {
	return a.OwnerKind != AttachmentOwnerNone && a.OwnerID != nil
}

// UploadAttachmentParams contains validated parameters for uploading evidence.
type UploadAttachmentParams struct {
	Filename    string    // Required: original filename
	ContentType string    // MIME type (detected when empty)
	ReportID    *uuid.UUID // Optional: link to a report immediately
	UploadedBy  uuid.UUID // Operator uploading the file
}
