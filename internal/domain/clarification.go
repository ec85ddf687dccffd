// Package domain contains core business types and interfaces.
//
// This file defines the ClarificationRequest domain type: an outgoing question
// to a report subject, awaiting a reply.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Recipient Category
// =============================================================================

// RecipientCategory identifies who a clarification request is addressed to.
type RecipientCategory string

const (
	RecipientCategoryProducer    RecipientCategory = "producer"
	RecipientCategoryBottler     RecipientCategory = "bottler"
	RecipientCategoryDistributor RecipientCategory = "distributor"
	RecipientCategoryRetailer    RecipientCategory = "retailer"
	RecipientCategoryOther       RecipientCategory = "other"
)

// String returns the string representation of the category.
func (c RecipientCategory) String() string {
	return string(c)
}

// IsValid returns true if the category is a recognized value.
func (c RecipientCategory) IsValid() bool {
	switch c {
	case RecipientCategoryProducer, RecipientCategoryBottler,
		RecipientCategoryDistributor, RecipientCategoryRetailer,
		RecipientCategoryOther:
		return true
	}
	return false
}

// =============================================================================
// Clarification Outcome
// =============================================================================

// ClarificationOutcome is the resolution recorded together with the feedback.
type ClarificationOutcome string

const (
	// ClarificationOutcomeClosed indicates the reply settled the case; the
	// parent report is closed.
	ClarificationOutcomeClosed ClarificationOutcome = "closed"

	// ClarificationOutcomeEscalated indicates the reply was insufficient; the
	// parent report is escalated to an authority.
	ClarificationOutcomeEscalated ClarificationOutcome = "escalated_to_authority"
)

// String returns the string representation of the outcome.
func (o ClarificationOutcome) String() string {
	return string(o)
}

// IsValid returns true if the outcome is a recognized value.
func (o ClarificationOutcome) IsValid() bool {
	switch o {
	case ClarificationOutcomeClosed, ClarificationOutcomeEscalated:
		return true
	}
	return false
}

// =============================================================================
// ClarificationRequest Domain Type
// =============================================================================

// ClarificationRequest represents an outgoing question to a report subject.
//
// Feedback is write-once: a second attempt to record feedback on the same
// request fails and leaves the first reply untouched.
type ClarificationRequest struct {
	ID                uuid.UUID             // Unique identifier
	ReportID          uuid.UUID             // Report this request belongs to
	RecipientCategory RecipientCategory     // Who is being asked
	RecipientEmail    string                // Optional: where the request was sent
	Subject           string                // Subject line
	Questions         []string              // The questions asked
	DueAt             *time.Time            // Optional: reply deadline
	RequestedBy       uuid.UUID             // Operator who sent the request
	Feedback          string                // The reply; empty until answered
	FeedbackAt        *time.Time            // When the reply was recorded
	Outcome           *ClarificationOutcome // Resolution recorded with the reply
	CreatedAt         time.Time             // When the request was created
}

// IsAnswered returns true if feedback has been recorded.
func (c *ClarificationRequest) IsAnswered() bool {
	return c.FeedbackAt != nil
}

// IsOverdue returns true if the request has a deadline that passed without a
// reply.
func (c *ClarificationRequest) IsOverdue(now time.Time) bool {
	return !c.IsAnswered() && c.DueAt != nil && now.After(*c.DueAt)
}

// =============================================================================
// Feedback Service Parameters
// =============================================================================

// ClarificationFeedbackParams contains validated parameters for recording the
// reply to a clarification request.
type ClarificationFeedbackParams struct {
	ClarificationID uuid.UUID            // Request being answered
	Feedback        string               // Required: the reply text
	Outcome         ClarificationOutcome // Required: closed or escalated
	AuthorityName   string               // Required when outcome is escalated
	AuthorityKind   AuthorityKind        // Optional: defaults to other on escalation
	ActorID         uuid.UUID            // Operator recording the reply
}
