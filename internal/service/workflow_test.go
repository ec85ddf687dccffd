package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleawatch/oleawatch/internal/domain"
)

func newWorkflowFixture() (*memStore, WorkflowService) {
	store := newMemStore()
	svc := NewWorkflowService(store, &memTransactor{store: store}, nil, testLogger())
	return store, svc
}

func validInspection() domain.InspectionMetadata {
	return domain.InspectionMetadata{
		InspectionKind: domain.InspectionKindSiteVisit,
		ScheduledAt:    time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC),
		Location:       "Frantoio Oleario Bianchi, Spoleto",
		Inspector:      "M. Greco",
	}
}

func validClarification() domain.ClarificationMetadata {
	return domain.ClarificationMetadata{
		RecipientCategory: domain.RecipientCategoryProducer,
		RecipientEmail:    "qualita@oliobianchi.it",
		Subject:           "Origin of lot 2026-042",
		Questions:         []string{"Where were the olives in lot 2026-042 pressed?"},
	}
}

func validNotice() domain.AuthorityNoticeMetadata {
	return domain.AuthorityNoticeMetadata{
		AuthorityKind: domain.AuthorityKindICQRF,
		AuthorityName: "ICQRF Perugia",
		Subject:       "Suspected false origin claim on DOP label",
		Violations:    []string{"false origin claim"},
		Severity:      domain.NoticeSeverityHigh,
	}
}

func TestTransition_PureStatusMove(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusDraft)

	result, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusInProgress,
		Motive:   "Negative press coverage confirmed, opening the investigation",
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusInProgress, result.Report.Status)
	assert.Equal(t, domain.ReportStatusInProgress, store.reports[report.ID].Status)
	assert.Equal(t, domain.ReportStatusDraft, result.StateChange.FromStatus)
	assert.True(t, result.CreatedEntity.IsZero())

	require.Len(t, store.stateChanges, 1)
	require.Len(t, store.actions, 1)
	assert.Equal(t, domain.ActionTypeStatusChanged, store.actions[0].Type)
}

func TestTransition_IllegalEdge(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusDraft)

	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusClosed,
		Motive:   "Trying to skip the whole investigation",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ETRANSITION, domain.ErrorCode(err))

	// Nothing written, status unchanged.
	assert.Equal(t, domain.ReportStatusDraft, store.reports[report.ID].Status)
	assert.Empty(t, store.stateChanges)
}

func TestTransition_TerminalState(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusArchived)

	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusInProgress,
		Motive:   "Archived cases must stay archived",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ETRANSITION, domain.ErrorCode(err))
}

func TestTransition_InvalidTarget(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusInProgress)

	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatus("espresso"),
		Motive:   "Not a real status",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestTransition_MissingMotive(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusDraft)

	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusInProgress,
		Motive:   "   ",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EMISSINGFIELD, domain.ErrorCode(err))
}

func TestTransition_ReportNotFound(t *testing.T) {
	_, svc := newWorkflowFixture()

	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: uuid.New(),
		Target:   domain.ReportStatusInProgress,
		Motive:   "No such case",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestTransition_MetadataTargetMismatch(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusInProgress)

	// Inspection metadata only fits the under_verification target.
	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusClarificationRequested,
		Motive:   "Metadata and target disagree",
		Metadata: validInspection(),
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestTransition_CloseWithMetadata(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusClarificationRequested)

	motive := "Producer documented the supply chain; label claims verified accurate."
	result, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusClosed,
		Motive:   motive,
		Metadata: domain.CloseMetadata{Motive: motive},
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusClosed, result.Report.Status)
	stored := store.reports[report.ID]
	assert.Equal(t, motive, stored.ClosureReason)
	require.NotNil(t, stored.ClosedAt)
}

func TestTransition_CloseMotiveTooShort(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)

	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusClosed,
		Motive:   "resolved",
		Metadata: domain.CloseMetadata{Motive: "resolved"},
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, domain.ReportStatusUnderVerification, store.reports[report.ID].Status)
}

func TestTransition_StaleWrite(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusDraft)

	// Another operator moved the report between the read and the guarded
	// status write.
	store.onGetReportForUpdate = func(r *domain.Report) {
		store.reports[report.ID].Status = domain.ReportStatusInProgress
	}

	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusInProgress,
		Motive:   "Racing against a concurrent transition",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTALE, domain.ErrorCode(err))
}

func TestTransition_LinksAttachments(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusDraft)
	att, err := store.CreateAttachment(context.Background(), attachmentFixture())
	require.NoError(t, err)

	result, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID:      report.ID,
		Target:        domain.ReportStatusInProgress,
		Motive:        "Opening with the label photo attached",
		AttachmentIDs: []uuid.UUID{att.ID},
		ActorID:       uuid.New(),
	})
	require.NoError(t, err)

	linked := store.attachments[att.ID]
	assert.Equal(t, domain.AttachmentOwnerStateChange, linked.OwnerKind)
	require.NotNil(t, linked.OwnerID)
	assert.Equal(t, result.StateChange.ID, *linked.OwnerID)

	// The link is recorded on the transition's single audit entry.
	require.Len(t, store.actions, 1)
	assert.Contains(t, string(store.actions[0].Metadata), `"attachment_count":1`)
}

func TestTransition_UnknownAttachmentRejected(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusDraft)

	_, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID:      report.ID,
		Target:        domain.ReportStatusInProgress,
		Motive:        "Referencing evidence that was never uploaded",
		AttachmentIDs: []uuid.UUID{uuid.New()},
		ActorID:       uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, domain.ReportStatusDraft, store.reports[report.ID].Status)
}

// =============================================================================
// Composite Operations
// =============================================================================

func TestScheduleInspection(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusInProgress)
	actor := uuid.New()

	result, err := svc.ScheduleInspection(context.Background(), ScheduleInspectionParams{
		ReportID:   report.ID,
		Inspection: validInspection(),
		Motive:     "On-site verification of pressing records",
		ActorID:    actor,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusUnderVerification, result.Report.Status)
	require.NotNil(t, result.CreatedEntity.Inspection)
	assert.Equal(t, domain.InspectionKindSiteVisit, result.CreatedEntity.Inspection.Kind)
	assert.Len(t, store.inspections, 1)

	// One audit entry per transition; the inspection detail folds into it.
	require.Len(t, store.actions, 1)
	assert.Equal(t, domain.ActionTypeInspectionCreated, store.actions[0].Type)
	assert.Contains(t, string(store.actions[0].Metadata), result.CreatedEntity.Inspection.ID.String())
	assert.Contains(t, string(store.actions[0].Metadata), `"from"`)
}

func TestTransition_InspectionDefaultsKind(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusInProgress)

	// A bare payload with just a date and location schedules a site visit.
	result, err := svc.Transition(context.Background(), domain.TransitionParams{
		ReportID: report.ID,
		Target:   domain.ReportStatusUnderVerification,
		Motive:   "Forum posts allege relabeling at the Roma bottling plant",
		Metadata: domain.InspectionMetadata{
			ScheduledAt: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Location:    "Roma",
		},
		ActorID: uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusUnderVerification, result.Report.Status)
	require.NotNil(t, result.CreatedEntity.Inspection)
	assert.Equal(t, domain.InspectionKindSiteVisit, result.CreatedEntity.Inspection.Kind)
	assert.False(t, result.CreatedEntity.Inspection.IsCompleted())
}

func TestScheduleInspection_FromDraftRejected(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusDraft)

	_, err := svc.ScheduleInspection(context.Background(), ScheduleInspectionParams{
		ReportID:   report.ID,
		Inspection: validInspection(),
		Motive:     "Draft cases are not investigable yet",
		ActorID:    uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
	assert.Empty(t, store.inspections)
}

func TestScheduleInspection_FromClarificationRejected(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusClarificationRequested)

	_, err := svc.ScheduleInspection(context.Background(), ScheduleInspectionParams{
		ReportID:   report.ID,
		Inspection: validInspection(),
		Motive:     "The clarification reply has to land first",
		ActorID:    uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
	assert.Empty(t, store.inspections)
	assert.Equal(t, domain.ReportStatusClarificationRequested, store.reports[report.ID].Status)
}

func TestScheduleInspection_MissingDate(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusInProgress)

	inspection := validInspection()
	inspection.ScheduledAt = time.Time{}

	_, err := svc.ScheduleInspection(context.Background(), ScheduleInspectionParams{
		ReportID:   report.ID,
		Inspection: inspection,
		Motive:     "No date for the visit",
		ActorID:    uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EMISSINGFIELD, domain.ErrorCode(err))
}

func TestRequestClarification_Repeat(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusClarificationRequested)

	// A second clarification while one is already out: the request is created
	// and recorded, but the status does not move.
	result, err := svc.RequestClarification(context.Background(), RequestClarificationParams{
		ReportID:      report.ID,
		Clarification: validClarification(),
		Motive:        "Follow-up question on the bottling site",
		ActorID:       uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusClarificationRequested, store.reports[report.ID].Status)
	assert.Equal(t, result.StateChange.FromStatus, result.StateChange.ToStatus)
	require.NotNil(t, result.CreatedEntity.Clarification)
	assert.Len(t, store.clarifications, 1)

	// Self-transition: no status_changed audit entry, only clarification_sent.
	require.Len(t, store.actions, 1)
	assert.Equal(t, domain.ActionTypeClarificationSent, store.actions[0].Type)
}

func TestRequestClarification_FromUnderVerificationRejected(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)

	_, err := svc.RequestClarification(context.Background(), RequestClarificationParams{
		ReportID:      report.ID,
		Clarification: validClarification(),
		Motive:        "Clarifications are requested before or instead of verification",
		ActorID:       uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
	assert.Empty(t, store.clarifications)
}

func TestRequestClarification_NoQuestions(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusInProgress)

	clarification := validClarification()
	clarification.Questions = []string{"   "}

	_, err := svc.RequestClarification(context.Background(), RequestClarificationParams{
		ReportID:      report.ID,
		Clarification: clarification,
		Motive:        "Empty questionnaire",
		ActorID:       uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestNotifyAuthority(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)

	result, err := svc.NotifyAuthority(context.Background(), NotifyAuthorityParams{
		ReportID: report.ID,
		Notice:   validNotice(),
		Motive:   "Sample analysis contradicts the declared origin",
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusReportedToAuthority, result.Report.Status)
	require.NotNil(t, result.CreatedEntity.AuthorityNotice)
	assert.Equal(t, "ICQRF Perugia", result.CreatedEntity.AuthorityNotice.AuthorityName)

	require.Len(t, store.actions, 1)
	assert.Equal(t, domain.ActionTypeAuthorityNotified, store.actions[0].Type)
}

func TestNotifyAuthority_PendingNoticeConflict(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusReportedToAuthority)
	seedPendingNotice(store, report.ID)

	_, err := svc.NotifyAuthority(context.Background(), NotifyAuthorityParams{
		ReportID: report.ID,
		Notice:   validNotice(),
		Motive:   "Second notice while the first is unanswered",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EPENDING, domain.ErrorCode(err))
	assert.Len(t, store.notices, 1)
}

func TestCloseFromInspection_LatestCompleted(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)
	inspection := seedCompletedInspection(store, report.ID)

	result, err := svc.CloseFromInspection(context.Background(), domain.InspectionRefParams{
		ReportID: report.ID,
		Motive:   "Inspection confirmed the press logs match the label claims.",
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusClosed, result.Report.Status)
	assert.NotNil(t, store.reports[report.ID].ClosedAt)

	// The audit trail references the inspection that justified closure.
	var found bool
	for _, a := range store.actions {
		if a.Type == domain.ActionTypeStatusChanged {
			assert.Contains(t, string(a.Metadata), inspection.ID.String())
			found = true
		}
	}
	assert.True(t, found)
}

func TestCloseFromInspection_NoCompletedInspection(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)

	_, err := svc.CloseFromInspection(context.Background(), domain.InspectionRefParams{
		ReportID: report.ID,
		Motive:   "There is nothing on file to close from.",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
}

func TestCloseFromInspection_ForeignInspection(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)
	other := store.seedReport(domain.ReportStatusUnderVerification)
	foreign := seedCompletedInspection(store, other.ID)

	_, err := svc.CloseFromInspection(context.Background(), domain.InspectionRefParams{
		ReportID:     report.ID,
		InspectionID: &foreign.ID,
		Motive:       "Citing an inspection from another case.",
		ActorID:      uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestCloseFromInspection_MinutesNotRecorded(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)

	inspection, err := store.CreateInspection(context.Background(), inspectionFixture(report.ID))
	require.NoError(t, err)

	_, err = svc.CloseFromInspection(context.Background(), domain.InspectionRefParams{
		ReportID:     report.ID,
		InspectionID: &inspection.ID,
		Motive:       "The visit has not happened yet.",
		ActorID:      uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
}

func TestEscalateFromInspection(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)
	seedCompletedInspection(store, report.ID)

	result, err := svc.EscalateFromInspection(context.Background(), EscalateFromInspectionParams{
		InspectionRefParams: domain.InspectionRefParams{
			ReportID: report.ID,
			Motive:   "Minutes document systematic relabeling of non-DOP oil",
			ActorID:  uuid.New(),
		},
		Notice: validNotice(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusReportedToAuthority, result.Report.Status)
	require.NotNil(t, result.CreatedEntity.AuthorityNotice)
	assert.Len(t, store.notices, 1)
}

func TestRecordInspectionMinutes(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)
	inspection, err := store.CreateInspection(context.Background(), inspectionFixture(report.ID))
	require.NoError(t, err)

	got, err := svc.RecordInspectionMinutes(context.Background(), domain.RecordMinutesParams{
		ID:      inspection.ID,
		Minutes: "Press logs reviewed; lot 2026-042 traced to a mill outside the DOP zone.",
		Outcome: "violation suspected",
		ActorID: uuid.New(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.Minutes)
	assert.Equal(t, "violation suspected", store.inspections[inspection.ID].Outcome)
}

func TestRecordInspectionMinutes_WriteOnce(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)
	inspection := seedCompletedInspection(store, report.ID)

	_, err := svc.RecordInspectionMinutes(context.Background(), domain.RecordMinutesParams{
		ID:      inspection.ID,
		Minutes: "Trying to rewrite history",
		ActorID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
}

func TestTransitionState(t *testing.T) {
	store, svc := newWorkflowFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)
	seedCompletedInspection(store, report.ID)

	state, err := svc.TransitionState(context.Background(), report.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusUnderVerification, state.Status)
	assert.ElementsMatch(t, []domain.ReportStatus{
		domain.ReportStatusReportedToAuthority,
		domain.ReportStatusClosed,
		domain.ReportStatusClarificationRequested,
		domain.ReportStatusInProgress,
	}, state.AvailableTransitions)
	assert.Len(t, state.Inspections, 1)
}
