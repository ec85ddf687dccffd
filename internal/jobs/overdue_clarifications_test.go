package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
	"github.com/oleawatch/oleawatch/internal/worker"
)

// overdueStore stubs only the store methods the sweep touches.
type overdueStore struct {
	service.Store
	overdue []domain.ClarificationRequest
	actions []domain.ActionLog
}

func (s *overdueStore) ListOverdueClarifications(ctx context.Context, now time.Time) ([]domain.ClarificationRequest, error) {
	return s.overdue, nil
}

func (s *overdueStore) ListActions(ctx context.Context, reportID uuid.UUID) ([]domain.ActionLog, error) {
	var out []domain.ActionLog
	for _, a := range s.actions {
		if a.ReportID == reportID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *overdueStore) AppendAction(ctx context.Context, params domain.AppendActionParams) (*domain.ActionLog, error) {
	a := domain.ActionLog{
		ID:        uuid.New(),
		ReportID:  params.ReportID,
		Type:      params.Type,
		Message:   params.Message,
		ActorID:   params.ActorID,
		Metadata:  params.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	s.actions = append(s.actions, a)
	return &a, nil
}

type overdueTransactor struct {
	store *overdueStore
}

func (t *overdueTransactor) InTx(ctx context.Context, fn func(service.Store) error) error {
	return fn(t.store)
}

// stubReports serves the parent report for reminder emails.
type stubReports struct {
	service.ReportService
	report *domain.Report
}

func (s *stubReports) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return s.report, nil
}

// countingNotifier counts overdue reminders.
type countingNotifier struct {
	overdue int
}

func (n *countingNotifier) ClarificationRequested(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error {
	return nil
}

func (n *countingNotifier) AuthorityNotified(ctx context.Context, report *domain.Report, notice *domain.AuthorityNotice) error {
	return nil
}

func (n *countingNotifier) ClarificationOverdue(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error {
	n.overdue++
	return nil
}

func (n *countingNotifier) FeedbackRecorded(ctx context.Context, report *domain.Report, summary string) error {
	return nil
}

func overdueFixture() (*overdueStore, *countingNotifier, *OverdueClarificationsHandler) {
	store := &overdueStore{}
	notifier := &countingNotifier{}
	report := &domain.Report{
		ID:     uuid.New(),
		Title:  "Suspicious DOP labelling",
		Status: domain.ReportStatusClarificationRequested,
	}
	h := NewOverdueClarificationsHandler(
		store,
		&overdueTransactor{store: store},
		&stubReports{report: report},
		notifier,
		jobLogger(),
	)
	store.overdue = []domain.ClarificationRequest{overdueRequest(report.ID)}
	return store, notifier, h
}

func overdueRequest(reportID uuid.UUID) domain.ClarificationRequest {
	due := time.Now().UTC().Add(-48 * time.Hour)
	return domain.ClarificationRequest{
		ID:                uuid.New(),
		ReportID:          reportID,
		RecipientCategory: domain.RecipientCategoryProducer,
		Subject:           "Origin of lot 2026-042",
		Questions:         []string{"Where were the olives in lot 2026-042 pressed?"},
		DueAt:             &due,
		RequestedBy:       uuid.New(),
		CreatedAt:         due.Add(-7 * 24 * time.Hour),
	}
}

func sweepPayload(t *testing.T) []byte {
	t.Helper()
	payload, err := worker.MarshalPayload(worker.ClarificationOverduePayload{})
	require.NoError(t, err)
	return payload
}

func TestOverdueSweep_MarksAndNotifies(t *testing.T) {
	store, notifier, h := overdueFixture()

	err := h.Handle(context.Background(), sweepPayload(t))
	require.NoError(t, err)

	require.Len(t, store.actions, 1)
	assert.Equal(t, domain.ActionTypeClarificationOverdue, store.actions[0].Type)
	assert.Contains(t, string(store.actions[0].Metadata), store.overdue[0].ID.String())
	assert.Equal(t, 1, notifier.overdue)
}

func TestOverdueSweep_MarksOnce(t *testing.T) {
	store, notifier, h := overdueFixture()

	require.NoError(t, h.Handle(context.Background(), sweepPayload(t)))
	// A second sweep finds the same request still unanswered but already
	// marked since its deadline.
	require.NoError(t, h.Handle(context.Background(), sweepPayload(t)))

	assert.Len(t, store.actions, 1)
	assert.Equal(t, 1, notifier.overdue)
}

func TestOverdueSweep_NothingOverdue(t *testing.T) {
	store, notifier, h := overdueFixture()
	store.overdue = nil

	require.NoError(t, h.Handle(context.Background(), sweepPayload(t)))

	assert.Empty(t, store.actions)
	assert.Zero(t, notifier.overdue)
}

func TestOverdueSweep_MalformedPayloadPermanent(t *testing.T) {
	_, _, h := overdueFixture()

	err := h.Handle(context.Background(), []byte(`{`))
	require.Error(t, err)
	assert.True(t, worker.IsPermanent(err))
}
