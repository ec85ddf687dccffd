// Package domain contains core business types and interfaces.
//
// This file defines the Inspection domain type: an on-site verification visit
// tied to exactly one report.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Inspection Kind
// =============================================================================

// InspectionKind represents the kind of verification being performed.
type InspectionKind string

const (
	// InspectionKindSiteVisit is a physical visit to the producer or bottler.
	InspectionKindSiteVisit InspectionKind = "site_visit"

	// InspectionKindLabelAudit is a review of label claims against the
	// consortium's denomination rules.
	InspectionKindLabelAudit InspectionKind = "label_audit"

	// InspectionKindSampleAnalysis is a chemical/organoleptic analysis of a
	// product sample.
	InspectionKindSampleAnalysis InspectionKind = "sample_analysis"

	// InspectionKindDocumentReview is a traceability/paperwork review.
	InspectionKindDocumentReview InspectionKind = "document_review"
)

// String returns the string representation of the kind.
func (k InspectionKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is a recognized value.
func (k InspectionKind) IsValid() bool {
	switch k {
	case InspectionKindSiteVisit, InspectionKindLabelAudit,
		InspectionKindSampleAnalysis, InspectionKindDocumentReview:
		return true
	}
	return false
}

// =============================================================================
// Inspection Domain Type
// =============================================================================

// Inspection represents a verification event tied to exactly one report.
//
// An inspection is created in a planned sub-state by a workflow transition; it
// is completed by recording its minutes ("verbale"). Completion is what
// enables closing or escalating the report from the inspection.
type Inspection struct {
	ID          uuid.UUID      // Unique identifier
	ReportID    uuid.UUID      // Report this inspection belongs to
	Kind        InspectionKind // What kind of verification
	ScheduledAt time.Time      // Planned date of the visit
	Location    string         // Optional: where the visit takes place
	Inspector   string         // Optional: assigned inspector
	Minutes     string         // Free-text minutes; empty until the visit is done
	Outcome     string         // Optional: outcome summary
	CreatedAt   time.Time      // When the inspection was created
	UpdatedAt   time.Time      // When the inspection was last modified
}

// IsCompleted returns true if minutes have been recorded.
func (i *Inspection) IsCompleted() bool {
	return i.Minutes != ""
}

// =============================================================================
// Inspection Service Parameters
// =============================================================================

// RecordMinutesParams contains validated parameters for recording an
// inspection's minutes.
type RecordMinutesParams struct {
	ID      uuid.UUID // Inspection to complete
	Minutes string    // Required: the verbale text
	Outcome string    // Optional: outcome summary
	ActorID uuid.UUID // Operator recording the minutes
}

// InspectionRefParams selects which completed inspection a close/escalate
// operation refers to. A nil InspectionID selects the most recently completed
// inspection on the report.
type InspectionRefParams struct {
	ReportID      uuid.UUID   // Report being closed or escalated
	InspectionID  *uuid.UUID  // Optional: explicit inspection reference
	Motive        string      // Required: why the case is being resolved
	Note          string      // Optional free-text note
	AttachmentIDs []uuid.UUID // Optional: evidence to link to the state change
	ActorID       uuid.UUID   // Operator performing the operation
}
