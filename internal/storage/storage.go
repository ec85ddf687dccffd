// Package storage holds the evidence files uploaded on reports: label scans,
// inspection photos, correspondence and authority paperwork.
//
// Two implementations back the Storage interface: LocalStorage on the
// filesystem for development, R2Storage on Cloudflare R2 for production.
// Content types are detected and validated before anything is accepted.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage is the blob store the attachment service writes evidence to.
// All methods honor context cancellation.
type Storage interface {
	// Put stores data at the key. Fails with ErrKeyExists when the key is
	// occupied and opts.Overwrite is false, and with ErrTooLarge when the
	// data exceeds opts.MaxSize.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get returns the object's content and metadata. The caller closes the
	// reader. Missing keys yield ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// URL returns an access URL for the object: permanent for public
	// objects, presigned for the given duration otherwise.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether an object is stored at the key.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type. Empty means detect from the key's
	// extension.
	ContentType string

	// MaxSize caps the object size in bytes; zero means unlimited.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool

	// Public requests public-read access. R2 sets the ACL; local storage
	// serves everything from its base URL anyway.
	Public bool
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string // empty for local storage
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig configures filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory for stored files, e.g.
	// "/var/lib/oleawatch/files".
	BasePath string

	// BaseURL is the public URL prefix the files are served under, e.g.
	// "http://localhost:8080/files".
	BaseURL string
}

// R2Config configures Cloudflare R2 storage.
type R2Config struct {
	// AccountID is the Cloudflare account; it determines the endpoint.
	AccountID string

	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is an optional custom domain for the bucket, e.g.
	// "https://files.oleawatch.example". When empty every URL is presigned.
	PublicURL string

	// Region is required by the SDK; R2 accepts "auto".
	Region string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// =============================================================================
// Key Generation Helpers
// =============================================================================

// EvidenceKey builds the storage key for an uploaded evidence file. The
// attachment ID namespaces the file and only the extension of the original
// filename survives, so uploader-controlled names never reach the store.
//
// Example: "evidence/123e4567-e89b-12d3-a456-426614174000/file.pdf"
func EvidenceKey(attachmentID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("evidence/%s/file%s", attachmentID, ext)
}
