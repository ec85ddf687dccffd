// Package domain contains core business types and interfaces.
//
// This file defines the workflow transition types: the state-change record
// written for every validated status move, and the closed metadata union that
// tells the engine which side-entity (if any) a transition spawns.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// State Change Record
// =============================================================================

// StateChange records a single validated status move of a report.
//
// One row is written per successful transition, in the same transaction as the
// status update, the optional side-entity and the audit entry.
type StateChange struct {
	ID         uuid.UUID       // Unique identifier
	ReportID   uuid.UUID       // Report that moved
	FromStatus ReportStatus    // Status before the transition
	ToStatus   ReportStatus    // Status after the transition
	Motive     string          // Why the transition was requested
	Note       string          // Optional free-text note
	Metadata   json.RawMessage // Raw metadata envelope as submitted (may be nil)
	ActorID    uuid.UUID       // Operator who requested the transition
	CreatedAt  time.Time       // When the transition committed
}

// =============================================================================
// Transition Metadata (closed union)
// =============================================================================

// MetadataKind tags the side-entity a transition intends to create.
type MetadataKind string

const (
	MetadataKindInspection      MetadataKind = "inspection"
	MetadataKindClarification   MetadataKind = "clarification"
	MetadataKindAuthorityNotice MetadataKind = "authority_notice"
	MetadataKindClose           MetadataKind = "close"
)

// TransitionMetadata is the closed set of side-entity payloads a transition
// may carry. Implementations are sealed so the side-entity factory's switch is
// exhaustive; a transition without metadata is a pure status change.
type TransitionMetadata interface {
	Kind() MetadataKind
	transitionMetadata()
}

// InspectionMetadata declares that the transition schedules an inspection.
type InspectionMetadata struct {
	InspectionKind InspectionKind `json:"kind,omitempty"`      // What kind of verification; defaults to site_visit
	ScheduledAt    time.Time      `json:"date"`                // Required: planned date
	Location       string         `json:"location,omitempty"`  // Optional: where the visit takes place
	Inspector      string         `json:"inspector,omitempty"` // Optional: assigned inspector
}

func (InspectionMetadata) Kind() MetadataKind  { return MetadataKindInspection }
func (InspectionMetadata) transitionMetadata() {}

// ClarificationMetadata declares that the transition sends a clarification
// request to the report subject.
type ClarificationMetadata struct {
	RecipientCategory RecipientCategory `json:"recipient_category"`        // Required: who is being asked
	RecipientEmail    string            `json:"recipient_email,omitempty"` // Optional: where to send the request
	Subject           string            `json:"subject"`                   // Required: subject line
	Questions         []string          `json:"questions"`                 // Required: one or more questions
	DueAt             *time.Time        `json:"due_date,omitempty"`        // Optional: reply deadline
}

func (ClarificationMetadata) Kind() MetadataKind  { return MetadataKindClarification }
func (ClarificationMetadata) transitionMetadata() {}

// AuthorityNoticeMetadata declares that the transition notifies a regulatory
// authority.
type AuthorityNoticeMetadata struct {
	AuthorityKind AuthorityKind  `json:"authority_kind"` // Required: which kind of authority
	AuthorityName string         `json:"authority_name"` // Required: named authority
	Subject       string         `json:"subject"`        // Required: notice subject
	Violations    []string       `json:"violations"`     // Suspected violations being reported
	Severity      NoticeSeverity `json:"severity"`       // Severity tag
}

func (AuthorityNoticeMetadata) Kind() MetadataKind  { return MetadataKindAuthorityNotice }
func (AuthorityNoticeMetadata) transitionMetadata() {}

// CloseMetadata declares that the transition closes the case, stamping the
// report's closure reason and timestamp.
type CloseMetadata struct {
	Motive string `json:"motive"` // Required: closure motive, minimum 20 characters
}

func (CloseMetadata) Kind() MetadataKind  { return MetadataKindClose }
func (CloseMetadata) transitionMetadata() {}

// CloseMotiveMinLength is the minimum length of a closure motive.
const CloseMotiveMinLength = 20

// metadataEnvelope is the wire form of a transition metadata payload.
type metadataEnvelope struct {
	Type MetadataKind `json:"type"`
}

// UnmarshalTransitionMetadata decodes a metadata envelope into its concrete
// union member. A nil or empty payload yields nil metadata (pure status
// change); an unknown type tag is rejected rather than silently ignored.
func UnmarshalTransitionMetadata(data json.RawMessage) (TransitionMetadata, error) {
	const op = "transition.metadata"

	if len(data) == 0 {
		return nil, nil
	}

	var env metadataEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, Invalid(op, fmt.Sprintf("malformed metadata: %v", err))
	}

	switch env.Type {
	case MetadataKindInspection:
		var m InspectionMetadata
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, Invalid(op, fmt.Sprintf("malformed inspection metadata: %v", err))
		}
		return m, nil
	case MetadataKindClarification:
		var m ClarificationMetadata
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, Invalid(op, fmt.Sprintf("malformed clarification metadata: %v", err))
		}
		return m, nil
	case MetadataKindAuthorityNotice:
		var m AuthorityNoticeMetadata
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, Invalid(op, fmt.Sprintf("malformed authority notice metadata: %v", err))
		}
		return m, nil
	case MetadataKindClose:
		var m CloseMetadata
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, Invalid(op, fmt.Sprintf("malformed close metadata: %v", err))
		}
		return m, nil
	case "":
		return nil, Invalid(op, "metadata type is required")
	default:
		return nil, Invalid(op, fmt.Sprintf("unknown metadata type: %s", env.Type))
	}
}

// MarshalTransitionMetadata encodes metadata back into its envelope form for
// persistence on the state-change record. Returns nil for nil metadata.
func MarshalTransitionMetadata(m TransitionMetadata) (json.RawMessage, error) {
	if m == nil {
		return nil, nil
	}

	body, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	// Inject the type tag into the object form.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", m.Kind()))
	return json.Marshal(fields)
}

// =============================================================================
// Workflow Engine Parameters
// =============================================================================

// TransitionParams contains validated parameters for a workflow transition.
type TransitionParams struct {
	ReportID      uuid.UUID          // Report to transition
	Target        ReportStatus       // Requested target status
	Motive        string             // Required: why the transition is requested
	Note          string             // Optional free-text note
	AttachmentIDs []uuid.UUID        // Optional: evidence to link to the state change
	Metadata      TransitionMetadata // Optional: side-entity payload
	ActorID       uuid.UUID          // Operator performing the transition
}

// TransitionResult is the aggregate returned by a successful transition.
type TransitionResult struct {
	Report        *Report       // The report with its updated status
	StateChange   *StateChange  // The state-change record written
	CreatedEntity CreatedEntity // The side-entity created, if any
}

// CreatedEntity wraps the zero-or-one side-entity a transition produced.
// At most one field is non-nil.
type CreatedEntity struct {
	Inspection      *Inspection           `json:"inspection,omitempty"`
	Clarification   *ClarificationRequest `json:"clarification,omitempty"`
	AuthorityNotice *AuthorityNotice      `json:"authority_notice,omitempty"`
}

// IsZero returns true if no side-entity was created.
func (e CreatedEntity) IsZero() bool {
	return e.Inspection == nil && e.Clarification == nil && e.AuthorityNotice == nil
}

// TransitionState is the read-side aggregate for a report's workflow position.
type TransitionState struct {
	ReportID             uuid.UUID              // The report
	Status               ReportStatus           // Current status
	AvailableTransitions []ReportStatus         // Legal next states
	StateChanges         []StateChange          // Full transition history, newest first
	Inspections          []Inspection           // Linked inspections
	Clarifications       []ClarificationRequest // Linked clarification requests
	Notices              []AuthorityNotice      // Linked authority notices
}
