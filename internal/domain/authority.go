// Package domain contains core business types and interfaces.
//
// This file defines the AuthorityNotice domain type: a formal notification
// sent to an external regulatory authority.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Authority Kind
// =============================================================================

// AuthorityKind identifies the kind of regulatory authority being notified.
type AuthorityKind string

const (
	// AuthorityKindICQRF is the Italian food fraud repression inspectorate.
	AuthorityKindICQRF AuthorityKind = "icqrf"

	// AuthorityKindNAS is the Carabinieri health protection unit.
	AuthorityKindNAS AuthorityKind = "nas"

	// AuthorityKindASL is the local health authority.
	AuthorityKindASL AuthorityKind = "asl"

	// AuthorityKindCustoms is the customs and monopolies agency.
	AuthorityKindCustoms AuthorityKind = "customs"

	// AuthorityKindOther covers authorities outside the standard set.
	AuthorityKindOther AuthorityKind = "other"
)

// String returns the string representation of the kind.
func (k AuthorityKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is a recognized value.
func (k AuthorityKind) IsValid() bool {
	switch k {
	case AuthorityKindICQRF, AuthorityKindNAS, AuthorityKindASL,
		AuthorityKindCustoms, AuthorityKindOther:
		return true
	}
	return false
}

// =============================================================================
// Notice Severity
// =============================================================================

// NoticeSeverity tags how serious the reported violations are.
type NoticeSeverity string

const (
	NoticeSeverityLow      NoticeSeverity = "low"
	NoticeSeverityMedium   NoticeSeverity = "medium"
	NoticeSeverityHigh     NoticeSeverity = "high"
	NoticeSeverityCritical NoticeSeverity = "critical"
)

// String returns the string representation of the severity.
func (s NoticeSeverity) String() string {
	return string(s)
}

// IsValid returns true if the severity is a recognized value.
func (s NoticeSeverity) IsValid() bool {
	switch s {
	case NoticeSeverityLow, NoticeSeverityMedium,
		NoticeSeverityHigh, NoticeSeverityCritical:
		return true
	}
	return false
}

// =============================================================================
// AuthorityNotice Domain Type
// =============================================================================

// AuthorityNotice represents an outgoing notification to a regulatory
// authority.
//
// A report may have at most one pending (feedback-less) notice at a time; a
// new notice cannot be created while one is outstanding. The case is "awaiting
// authority feedback" exactly while such a notice exists.
type AuthorityNotice struct {
	ID             uuid.UUID      // Unique identifier
	ReportID       uuid.UUID      // Report this notice belongs to
	AuthorityKind  AuthorityKind  // Which kind of authority
	AuthorityName  string         // Named authority
	Subject        string         // Notice subject
	Violations     []string       // Suspected violations being reported
	Severity       NoticeSeverity // Severity tag
	ProtocolNumber string         // Optional: authority-assigned reference
	SentAt         time.Time      // When the notice was sent
	Feedback       string         // The authority's reply; empty until received
	FeedbackAt     *time.Time     // When the reply was recorded
	CreatedAt      time.Time      // When the notice was created
}

// IsPending returns true while the authority's feedback is outstanding.
func (n *AuthorityNotice) IsPending() bool {
	return n.FeedbackAt == nil
}

// =============================================================================
// Feedback Service Parameters
// =============================================================================

// AuthorityFeedbackParams contains validated parameters for recording the
// authority's reply to a notice.
type AuthorityFeedbackParams struct {
	NoticeID       uuid.UUID // Notice being answered
	Feedback       string    // Required: the reply text
	ProtocolNumber string    // Optional: authority-assigned reference
	CloseCase      bool      // Close the parent report after recording (default true)
	ActorID        uuid.UUID // Operator recording the reply
}
