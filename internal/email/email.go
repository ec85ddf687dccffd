// Package email provides outbound mail for workflow events.
//
// This package defines an EmailService interface with an SMTP implementation
// that works with Mailhog in development and any standard SMTP relay in
// production. The workflow engine consumes it through the service.Notifier
// interface.
package email

import (
	"context"

	"github.com/oleawatch/oleawatch/internal/domain"
)

// =============================================================================
// Interface Definition
// =============================================================================

// EmailService defines the interface for sending workflow emails.
//
// All methods are context-aware for timeout and cancellation support.
type EmailService interface {
	// ClarificationRequested sends the clarification questions to the report
	// subject. Requests without a recipient email are skipped silently.
	ClarificationRequested(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error

	// AuthorityNotified sends the internal copy of an authority notice to the
	// consortium's compliance inbox.
	AuthorityNotified(ctx context.Context, report *domain.Report, notice *domain.AuthorityNotice) error

	// ClarificationOverdue sends a reminder that a clarification request's
	// deadline passed without a reply.
	ClarificationOverdue(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error

	// FeedbackRecorded tells the consortium's compliance inbox that a reply
	// was recorded on a case.
	FeedbackRecorded(ctx context.Context, report *domain.Report, summary string) error
}

// =============================================================================
// Email Data Types
// =============================================================================

// Email represents a single email message.
type Email struct {
	To       string // Recipient email address
	Subject  string // Email subject line
	HTMLBody string // HTML content of the email
	TextBody string // Plain text fallback content
}

// =============================================================================
// Configuration Types
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // SMTP authentication username (empty for Mailhog)
	Password string // SMTP authentication password (empty for Mailhog)
	From     string // Default sender email address
	FromName string // Default sender display name

	// ComplianceInbox receives internal copies of authority notices and
	// overdue reminders.
	ComplianceInbox string
}

// =============================================================================
// Common Constants
// =============================================================================

const (
	// DefaultFromEmail is the default sender email for workflow emails.
	DefaultFromEmail = "noreply@oleawatch.example"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "OleaWatch"
)
