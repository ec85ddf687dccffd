package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from ReportStatus
		to   ReportStatus
		want bool
	}{
		// Legal edges of the investigative workflow
		{"draft to in_progress", ReportStatusDraft, ReportStatusInProgress, true},
		{"draft to archived", ReportStatusDraft, ReportStatusArchived, true},
		{"in_progress to under_verification", ReportStatusInProgress, ReportStatusUnderVerification, true},
		{"in_progress to clarification_requested", ReportStatusInProgress, ReportStatusClarificationRequested, true},
		{"in_progress to archived", ReportStatusInProgress, ReportStatusArchived, true},
		{"under_verification to reported_to_authority", ReportStatusUnderVerification, ReportStatusReportedToAuthority, true},
		{"under_verification to closed", ReportStatusUnderVerification, ReportStatusClosed, true},
		{"under_verification to clarification_requested", ReportStatusUnderVerification, ReportStatusClarificationRequested, true},
		{"under_verification back to in_progress", ReportStatusUnderVerification, ReportStatusInProgress, true},
		{"clarification_requested to under_verification", ReportStatusClarificationRequested, ReportStatusUnderVerification, true},
		{"clarification_requested to reported_to_authority", ReportStatusClarificationRequested, ReportStatusReportedToAuthority, true},
		{"clarification_requested to closed", ReportStatusClarificationRequested, ReportStatusClosed, true},
		{"clarification_requested back to in_progress", ReportStatusClarificationRequested, ReportStatusInProgress, true},
		{"reported_to_authority to closed", ReportStatusReportedToAuthority, ReportStatusClosed, true},
		{"reported_to_authority to under_verification", ReportStatusReportedToAuthority, ReportStatusUnderVerification, true},
		{"closed to archived", ReportStatusClosed, ReportStatusArchived, true},

		// Nonsensical jumps the restrictive map forbids
		{"draft straight to reported_to_authority", ReportStatusDraft, ReportStatusReportedToAuthority, false},
		{"draft straight to closed", ReportStatusDraft, ReportStatusClosed, false},
		{"in_progress straight to closed", ReportStatusInProgress, ReportStatusClosed, false},
		{"in_progress straight to reported_to_authority", ReportStatusInProgress, ReportStatusReportedToAuthority, false},
		{"reported_to_authority to clarification_requested", ReportStatusReportedToAuthority, ReportStatusClarificationRequested, false},
		{"closed back to in_progress", ReportStatusClosed, ReportStatusInProgress, false},
		{"self transition", ReportStatusInProgress, ReportStatusInProgress, false},

		// Archived is terminal
		{"archived to in_progress", ReportStatusArchived, ReportStatusInProgress, false},
		{"archived to closed", ReportStatusArchived, ReportStatusClosed, false},
		{"archived to draft", ReportStatusArchived, ReportStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReportStatus_AvailableTransitions(t *testing.T) {
	t.Run("archived has no outgoing transitions", func(t *testing.T) {
		assert.Empty(t, ReportStatusArchived.AvailableTransitions())
	})

	t.Run("every listed target is accepted by CanTransitionTo", func(t *testing.T) {
		all := []ReportStatus{
			ReportStatusDraft, ReportStatusInProgress, ReportStatusUnderVerification,
			ReportStatusClarificationRequested, ReportStatusReportedToAuthority,
			ReportStatusClosed, ReportStatusArchived,
		}
		for _, from := range all {
			for _, to := range from.AvailableTransitions() {
				assert.True(t, from.CanTransitionTo(to), "%s -> %s", from, to)
				assert.True(t, to.IsValid())
			}
		}
	})

	t.Run("targets outside the set are rejected", func(t *testing.T) {
		allowed := map[ReportStatus]bool{}
		for _, to := range ReportStatusInProgress.AvailableTransitions() {
			allowed[to] = true
		}
		assert.False(t, allowed[ReportStatusClosed])
		assert.False(t, ReportStatusInProgress.CanTransitionTo(ReportStatusClosed))
	})
}

func TestReportStatus_IsValid(t *testing.T) {
	assert.True(t, ReportStatusUnderVerification.IsValid())
	assert.False(t, ReportStatus("pending").IsValid())
	assert.False(t, ReportStatus("").IsValid())
}

func TestReportStatus_Label(t *testing.T) {
	assert.Equal(t, "Under Verification", ReportStatusUnderVerification.Label())
	assert.Equal(t, "Reported To Authority", ReportStatusReportedToAuthority.Label())
}
