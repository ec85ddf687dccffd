// Package domain contains core business types and interfaces.
//
// This file defines the ActionLog domain type: an append-only audit trail
// entry. Entries are never mutated or deleted.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActionType tags the kind of state-changing operation an audit entry records.
type ActionType string

const (
	ActionTypeReportCreated         ActionType = "report_created"
	ActionTypeStatusChanged         ActionType = "status_changed"
	ActionTypeInspectionCreated     ActionType = "inspection_created"
	ActionTypeMinutesRecorded       ActionType = "minutes_recorded"
	ActionTypeClarificationSent     ActionType = "clarification_sent"
	ActionTypeClarificationAnswered ActionType = "clarification_answered"
	ActionTypeClarificationOverdue  ActionType = "clarification_overdue"
	ActionTypeAuthorityNotified     ActionType = "authority_notified"
	ActionTypeAuthorityAnswered     ActionType = "authority_answered"
)

// String returns the string representation of the action type.
func (t ActionType) String() string {
	return string(t)
}

// ActionLog represents one immutable audit trail entry.
type ActionLog struct {
	ID        uuid.UUID       // Unique identifier
	ReportID  uuid.UUID       // Report the action belongs to
	Type      ActionType      // What kind of action was performed
	Message   string          // Human-readable summary
	ActorID   uuid.UUID       // Operator who performed the action
	Metadata  json.RawMessage // Structured detail: what changed and why
	CreatedAt time.Time       // When the action was recorded
}

// AppendActionParams contains parameters for appending an audit entry.
type AppendActionParams struct {
	ReportID uuid.UUID       // Report the action belongs to
	Type     ActionType      // What kind of action was performed
	Message  string          // Human-readable summary
	ActorID  uuid.UUID       // Operator who performed the action
	Metadata json.RawMessage // Structured detail (may be nil)
}
