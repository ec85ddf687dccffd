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

func newFeedbackFixture() (*memStore, FeedbackService) {
	store := newMemStore()
	tx := &memTransactor{store: store}
	workflow := NewWorkflowService(store, tx, nil, testLogger())
	return store, NewFeedbackService(tx, workflow, testLogger())
}

// seedPendingClarification inserts an unanswered clarification request.
func seedPendingClarification(m *memStore, reportID uuid.UUID) *domain.ClarificationRequest {
	c := &domain.ClarificationRequest{
		ID:                uuid.New(),
		ReportID:          reportID,
		RecipientCategory: domain.RecipientCategoryProducer,
		RecipientEmail:    "qualita@oliobianchi.it",
		Subject:           "Origin of lot 2026-042",
		Questions:         []string{"Where were the olives in lot 2026-042 pressed?"},
		RequestedBy:       uuid.New(),
		CreatedAt:         time.Now().UTC(),
	}
	m.clarifications[c.ID] = c
	return c
}

func TestRecordClarificationFeedback_Closes(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusClarificationRequested)
	clarification := seedPendingClarification(store, report.ID)

	result, err := svc.RecordClarificationFeedback(context.Background(), domain.ClarificationFeedbackParams{
		ClarificationID: clarification.ID,
		Feedback:        "Pressing records and transport documents provided; origin confirmed.",
		Outcome:         domain.ClarificationOutcomeClosed,
		ActorID:         uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusClosed, result.Report.Status)
	assert.Equal(t, domain.ReportStatusClosed, store.reports[report.ID].Status)
	assert.NotNil(t, store.reports[report.ID].ClosedAt)

	stamped := store.clarifications[clarification.ID]
	require.NotNil(t, stamped.FeedbackAt)
	require.NotNil(t, stamped.Outcome)
	assert.Equal(t, domain.ClarificationOutcomeClosed, *stamped.Outcome)
}

func TestRecordClarificationFeedback_Escalates(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusClarificationRequested)
	clarification := seedPendingClarification(store, report.ID)

	result, err := svc.RecordClarificationFeedback(context.Background(), domain.ClarificationFeedbackParams{
		ClarificationID: clarification.ID,
		Feedback:        "Producer could not document the declared origin.",
		Outcome:         domain.ClarificationOutcomeEscalated,
		AuthorityName:   "ICQRF Perugia",
		AuthorityKind:   domain.AuthorityKindICQRF,
		ActorID:         uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusReportedToAuthority, store.reports[report.ID].Status)
	require.NotNil(t, result.CreatedEntity.AuthorityNotice)
	notice := result.CreatedEntity.AuthorityNotice
	assert.Equal(t, "ICQRF Perugia", notice.AuthorityName)
	assert.Contains(t, notice.Subject, clarification.Subject)
	assert.Len(t, store.notices, 1)
}

func TestRecordClarificationFeedback_EscalationDefaultsAuthorityKind(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusClarificationRequested)
	clarification := seedPendingClarification(store, report.ID)

	result, err := svc.RecordClarificationFeedback(context.Background(), domain.ClarificationFeedbackParams{
		ClarificationID: clarification.ID,
		Feedback:        "Reply evasive; escalating to the consortium's contact authority.",
		Outcome:         domain.ClarificationOutcomeEscalated,
		AuthorityName:   "Direzione Qualità Regionale",
		ActorID:         uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AuthorityKindOther, result.CreatedEntity.AuthorityNotice.AuthorityKind)
}

func TestRecordClarificationFeedback_EscalationRequiresAuthorityName(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusClarificationRequested)
	clarification := seedPendingClarification(store, report.ID)

	_, err := svc.RecordClarificationFeedback(context.Background(), domain.ClarificationFeedbackParams{
		ClarificationID: clarification.ID,
		Feedback:        "Needs escalation but nobody named the authority.",
		Outcome:         domain.ClarificationOutcomeEscalated,
		ActorID:         uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EMISSINGFIELD, domain.ErrorCode(err))
}

func TestRecordClarificationFeedback_WriteOnce(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusClarificationRequested)
	clarification := seedPendingClarification(store, report.ID)

	first := domain.ClarificationFeedbackParams{
		ClarificationID: clarification.ID,
		Feedback:        "Documentation provided and verified.",
		Outcome:         domain.ClarificationOutcomeClosed,
		ActorID:         uuid.New(),
	}
	_, err := svc.RecordClarificationFeedback(context.Background(), first)
	require.NoError(t, err)

	_, err = svc.RecordClarificationFeedback(context.Background(), first)
	require.Error(t, err)
	assert.Equal(t, domain.EANSWERED, domain.ErrorCode(err))
	assert.Equal(t, "Documentation provided and verified.", store.clarifications[clarification.ID].Feedback)
}

func TestRecordClarificationFeedback_ParentNotWaiting(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusClosed)
	clarification := seedPendingClarification(store, report.ID)

	_, err := svc.RecordClarificationFeedback(context.Background(), domain.ClarificationFeedbackParams{
		ClarificationID: clarification.ID,
		Feedback:        "Reply arrived after the case was already closed.",
		Outcome:         domain.ClarificationOutcomeClosed,
		ActorID:         uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
	// The whole reconciliation rolls back together; here the fake has no
	// rollback, so only the error surface is asserted.
}

func TestRecordClarificationFeedback_MissingFeedback(t *testing.T) {
	_, svc := newFeedbackFixture()

	_, err := svc.RecordClarificationFeedback(context.Background(), domain.ClarificationFeedbackParams{
		ClarificationID: uuid.New(),
		Feedback:        "  ",
		Outcome:         domain.ClarificationOutcomeClosed,
		ActorID:         uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EMISSINGFIELD, domain.ErrorCode(err))
}

func TestRecordAuthorityFeedback_ClosesCase(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusReportedToAuthority)
	notice := seedPendingNotice(store, report.ID)

	result, err := svc.RecordAuthorityFeedback(context.Background(), domain.AuthorityFeedbackParams{
		NoticeID:       notice.ID,
		Feedback:       "Sanction issued; producer ordered to withdraw the mislabeled lots.",
		ProtocolNumber: "ICQRF-2026-08841",
		CloseCase:      true,
		ActorID:        uuid.New(),
	})
	require.NoError(t, err)

	require.NotNil(t, result)
	assert.Equal(t, domain.ReportStatusClosed, store.reports[report.ID].Status)
	assert.Equal(t, "ICQRF-2026-08841", store.notices[notice.ID].ProtocolNumber)
	require.NotNil(t, store.notices[notice.ID].FeedbackAt)
}

func TestRecordAuthorityFeedback_KeepsCaseOpen(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusReportedToAuthority)
	notice := seedPendingNotice(store, report.ID)

	result, err := svc.RecordAuthorityFeedback(context.Background(), domain.AuthorityFeedbackParams{
		NoticeID:  notice.ID,
		Feedback:  "Investigation opened; further samples requested.",
		CloseCase: false,
		ActorID:   uuid.New(),
	})
	require.NoError(t, err)

	assert.Nil(t, result)
	assert.Equal(t, domain.ReportStatusReportedToAuthority, store.reports[report.ID].Status)
	require.NotNil(t, store.notices[notice.ID].FeedbackAt)
}

func TestRecordAuthorityFeedback_ParentNotReported(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusUnderVerification)
	notice := seedPendingNotice(store, report.ID)

	// Even when the case is kept open, feedback only lands while the report
	// is actually with the authority.
	_, err := svc.RecordAuthorityFeedback(context.Background(), domain.AuthorityFeedbackParams{
		NoticeID:  notice.ID,
		Feedback:  "Acknowledged receipt of the notice.",
		CloseCase: false,
		ActorID:   uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
	assert.Nil(t, store.notices[notice.ID].FeedbackAt)
}

func TestRecordAuthorityFeedback_WriteOnce(t *testing.T) {
	store, svc := newFeedbackFixture()
	report := store.seedReport(domain.ReportStatusReportedToAuthority)
	notice := seedPendingNotice(store, report.ID)

	params := domain.AuthorityFeedbackParams{
		NoticeID:  notice.ID,
		Feedback:  "No violation found after review.",
		CloseCase: false,
		ActorID:   uuid.New(),
	}
	_, err := svc.RecordAuthorityFeedback(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.RecordAuthorityFeedback(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, domain.EANSWERED, domain.ErrorCode(err))
}

func TestRecordAuthorityFeedback_NoticeNotFound(t *testing.T) {
	_, svc := newFeedbackFixture()

	_, err := svc.RecordAuthorityFeedback(context.Background(), domain.AuthorityFeedbackParams{
		NoticeID: uuid.New(),
		Feedback: "Reply for a notice that does not exist.",
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestNewFeedbackService_RequiresConcreteEngine(t *testing.T) {
	store := newMemStore()
	tx := &memTransactor{store: store}

	assert.Panics(t, func() {
		NewFeedbackService(tx, stubWorkflow{}, testLogger())
	})
}

// stubWorkflow is a WorkflowService that is not the concrete engine.
type stubWorkflow struct{ WorkflowService }

// recordingNotifier captures feedback notifications.
type recordingNotifier struct {
	summaries []string
}

func (n *recordingNotifier) ClarificationRequested(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error {
	return nil
}

func (n *recordingNotifier) AuthorityNotified(ctx context.Context, report *domain.Report, notice *domain.AuthorityNotice) error {
	return nil
}

func (n *recordingNotifier) ClarificationOverdue(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error {
	return nil
}

func (n *recordingNotifier) FeedbackRecorded(ctx context.Context, report *domain.Report, summary string) error {
	n.summaries = append(n.summaries, summary)
	return nil
}

func TestRecordClarificationFeedback_NotifiesComplianceInbox(t *testing.T) {
	store := newMemStore()
	tx := &memTransactor{store: store}
	notifier := &recordingNotifier{}
	workflow := NewWorkflowService(store, tx, notifier, testLogger())
	svc := NewFeedbackService(tx, workflow, testLogger())

	report := store.seedReport(domain.ReportStatusClarificationRequested)
	clarification := seedPendingClarification(store, report.ID)

	_, err := svc.RecordClarificationFeedback(context.Background(), domain.ClarificationFeedbackParams{
		ClarificationID: clarification.ID,
		Feedback:        "Origin documents provided and verified.",
		Outcome:         domain.ClarificationOutcomeClosed,
		ActorID:         uuid.New(),
	})
	require.NoError(t, err)

	require.Len(t, notifier.summaries, 1)
	assert.Contains(t, notifier.summaries[0], "Clarification feedback recorded")
}

func TestRecordAuthorityFeedback_NotifiesWhenKeptOpen(t *testing.T) {
	store := newMemStore()
	tx := &memTransactor{store: store}
	notifier := &recordingNotifier{}
	workflow := NewWorkflowService(store, tx, notifier, testLogger())
	svc := NewFeedbackService(tx, workflow, testLogger())

	report := store.seedReport(domain.ReportStatusReportedToAuthority)
	notice := seedPendingNotice(store, report.ID)

	result, err := svc.RecordAuthorityFeedback(context.Background(), domain.AuthorityFeedbackParams{
		NoticeID:  notice.ID,
		Feedback:  "Investigation opened; further samples requested.",
		CloseCase: false,
		ActorID:   uuid.New(),
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	require.Len(t, notifier.summaries, 1)
	assert.Contains(t, notifier.summaries[0], "kept_open")
}
