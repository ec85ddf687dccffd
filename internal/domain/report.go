// Package domain contains core business types and interfaces.
//
// This file defines the Report domain type and the report status state
// machine that governs the compliance investigation workflow.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// Report Status
// =============================================================================

// ReportStatus represents the lifecycle state of a compliance report.
type ReportStatus string

const (
	// ReportStatusDraft indicates a report is an editable precursor that has
	// not yet entered the investigative workflow.
	ReportStatusDraft ReportStatus = "draft"

	// ReportStatusInProgress indicates the investigation is open and being
	// worked. New reports land here unless explicitly created as drafts.
	ReportStatusInProgress ReportStatus = "in_progress"

	// ReportStatusUnderVerification indicates an on-site inspection has been
	// scheduled or performed and its outcome is being evaluated.
	ReportStatusUnderVerification ReportStatus = "under_verification"

	// ReportStatusClarificationRequested indicates a question is out to the
	// report subject and the case is waiting on the reply.
	ReportStatusClarificationRequested ReportStatus = "clarification_requested"

	// ReportStatusReportedToAuthority indicates the case has been escalated to
	// an external regulatory authority. Whether the case is still waiting on
	// the authority's feedback is derived from the pending notice, not from a
	// separate status.
	ReportStatusReportedToAuthority ReportStatus = "reported_to_authority"

	// ReportStatusClosed indicates the case is resolved with a recorded
	// closure reason.
	ReportStatusClosed ReportStatus = "closed"

	// ReportStatusArchived is the terminal state. Archived reports never
	// transition again.
	ReportStatusArchived ReportStatus = "archived"
)

// String returns the string representation of the status.
func (s ReportStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusInProgress, ReportStatusUnderVerification,
		ReportStatusClarificationRequested, ReportStatusReportedToAuthority,
		ReportStatusClosed, ReportStatusArchived:
		return true
	}
	return false
}

// IsTerminal returns true if the status has no outgoing transitions.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusArchived
}

// Label returns a human-readable form of the status for audit messages,
// e.g. "Under Verification".
func (s ReportStatus) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

// transitions is the canonical adjacency map for the investigative workflow.
// It is deliberately restrictive: jumps that make no investigative sense
// (e.g. draft straight to reported_to_authority) are not representable.
var transitions = map[ReportStatus][]ReportStatus{
	ReportStatusDraft:      {ReportStatusInProgress, ReportStatusArchived},
	ReportStatusInProgress: {ReportStatusUnderVerification, ReportStatusClarificationRequested, ReportStatusArchived},
	ReportStatusUnderVerification: {
		ReportStatusReportedToAuthority, ReportStatusClosed,
		ReportStatusClarificationRequested, ReportStatusInProgress,
	},
	ReportStatusClarificationRequested: {
		ReportStatusUnderVerification, ReportStatusReportedToAuthority,
		ReportStatusClosed, ReportStatusInProgress,
	},
	ReportStatusReportedToAuthority: {ReportStatusClosed, ReportStatusUnderVerification},
	ReportStatusClosed:              {ReportStatusArchived},
	ReportStatusArchived:            {},
}

// CanTransitionTo checks if the report status can move to the target status.
func (s ReportStatus) CanTransitionTo(target ReportStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AvailableTransitions returns the set of statuses reachable from s.
// The result is empty for archived reports.
func (s ReportStatus) AvailableTransitions() []ReportStatus {
	allowed := transitions[s]
	out := make([]ReportStatus, len(allowed))
	copy(out, allowed)
	return out
}

// =============================================================================
// Report Domain Type
// =============================================================================

// Report represents a compliance/reputational investigation case.
//
// A report's status never changes except through a validated workflow
// transition, and reports are never hard-deleted; closed cases eventually
// reach the terminal archived state.
type Report struct {
	ID            uuid.UUID    // Unique identifier
	Title         string       // Short case title
	Description   string       // Free-text case description
	Status        ReportStatus // Current workflow status
	ClosureReason string       // Why the case was closed (empty until closure)
	ClosedAt      *time.Time   // When the case was closed
	CreatedBy     uuid.UUID    // Operator who opened the case
	CreatedAt     time.Time    // When the report was created
	UpdatedAt     time.Time    // When the report was last modified

	// Computed fields (not stored in the reports table)
	InspectionCount    int // Number of inspections linked to the report
	ClarificationCount int // Number of clarification requests
	NoticeCount        int // Number of authority notices
}

// IsEditable returns true if the report's title and description can still be
// modified. Archived reports are immutable.
func (r *Report) IsEditable() bool {
	return r.Status != ReportStatusArchived
}

// IsClosed returns true if the report reached closure (closed or archived).
func (r *Report) IsClosed() bool {
	return r.Status == ReportStatusClosed || r.Status == ReportStatusArchived
}

// =============================================================================
// Report Service Parameters
// =============================================================================

// CreateReportParams contains validated parameters for creating a report.
type CreateReportParams struct {
	Title       string    // Required: case title
	Description string    // Optional: free-text description
	Draft       bool      // Create as editable draft instead of in_progress
	CreatedBy   uuid.UUID // Operator opening the case (from auth context)
}

// UpdateReportParams contains validated parameters for updating a report.
// Status is deliberately absent: status only moves through the workflow engine.
type UpdateReportParams struct {
	ID          uuid.UUID // Report to update
	Title       string    // Required: case title
	Description string    // Optional: free-text description
}

// ListReportsParams contains parameters for listing reports.
type ListReportsParams struct {
	Status *ReportStatus // Optional: filter by status
	Limit  int32         // Max results to return
	Offset int32         // Number of results to skip
}

// ListReportsResult contains the result of a paginated report list query.
type ListReportsResult struct {
	Reports []Report // The report results
	Total   int64    // Total number of reports (for pagination)
	Limit   int32    // Number of results requested
	Offset  int32    // Number of results skipped
}

// HasMore returns true if there are more results available.
func (r *ListReportsResult) HasMore() bool {
	return int64(r.Offset+r.Limit) < r.Total
}

// HasPrevious returns true if there are previous results available.
func (r *ListReportsResult) HasPrevious() bool {
	return r.Offset > 0
}
