package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleawatch/oleawatch/internal/domain"
)

func newReportFixture() (*memStore, ReportService) {
	store := newMemStore()
	svc := NewReportService(store, &memTransactor{store: store}, testLogger())
	return store, svc
}

func TestReportCreate(t *testing.T) {
	store, svc := newReportFixture()
	actor := uuid.New()

	report, err := svc.Create(context.Background(), domain.CreateReportParams{
		Title:       "  Viral thread alleging diluted DOP oil  ",
		Description: "Thread claims lot 2026-042 is cut with seed oil.",
		CreatedBy:   actor,
	})
	require.NoError(t, err)

	assert.Equal(t, "Viral thread alleging diluted DOP oil", report.Title)
	assert.Equal(t, domain.ReportStatusInProgress, report.Status)
	assert.Equal(t, actor, report.CreatedBy)

	require.Len(t, store.actions, 1)
	assert.Equal(t, domain.ActionTypeReportCreated, store.actions[0].Type)
}

func TestReportCreate_Draft(t *testing.T) {
	_, svc := newReportFixture()

	report, err := svc.Create(context.Background(), domain.CreateReportParams{
		Title:     "Unverified tip about relabeled tins",
		Draft:     true,
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusDraft, report.Status)
}

func TestReportCreate_Validation(t *testing.T) {
	_, svc := newReportFixture()

	tests := []struct {
		name     string
		title    string
		wantCode string
	}{
		{name: "missing title", title: "   ", wantCode: domain.EMISSINGFIELD},
		{name: "title too long", title: strings.Repeat("x", 201), wantCode: domain.EINVALID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), domain.CreateReportParams{
				Title:     tt.title,
				CreatedBy: uuid.New(),
			})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
		})
	}
}

func TestReportGetByID_NotFound(t *testing.T) {
	_, svc := newReportFixture()

	_, err := svc.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestReportList_ClampsPagination(t *testing.T) {
	store, svc := newReportFixture()
	store.seedReport(domain.ReportStatusInProgress)
	store.seedReport(domain.ReportStatusClosed)

	result, err := svc.List(context.Background(), domain.ListReportsParams{
		Limit:  -5,
		Offset: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(20), result.Limit)
	assert.Equal(t, int32(0), result.Offset)
	assert.Equal(t, int64(2), result.Total)

	result, err = svc.List(context.Background(), domain.ListReportsParams{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int32(100), result.Limit)
}

func TestReportList_StatusFilter(t *testing.T) {
	store, svc := newReportFixture()
	store.seedReport(domain.ReportStatusInProgress)
	store.seedReport(domain.ReportStatusClosed)

	closed := domain.ReportStatusClosed
	result, err := svc.List(context.Background(), domain.ListReportsParams{Status: &closed})
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, domain.ReportStatusClosed, result.Reports[0].Status)

	bogus := domain.ReportStatus("misfiled")
	_, err = svc.List(context.Background(), domain.ListReportsParams{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestReportUpdate(t *testing.T) {
	store, svc := newReportFixture()
	report := store.seedReport(domain.ReportStatusInProgress)

	updated, err := svc.Update(context.Background(), domain.UpdateReportParams{
		ID:          report.ID,
		Title:       "Confirmed mislabeling of lot 2026-042",
		Description: "Lab results attached.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Confirmed mislabeling of lot 2026-042", updated.Title)
	assert.Equal(t, "Confirmed mislabeling of lot 2026-042", store.reports[report.ID].Title)
}

func TestReportUpdate_ArchivedImmutable(t *testing.T) {
	store, svc := newReportFixture()
	report := store.seedReport(domain.ReportStatusArchived)

	_, err := svc.Update(context.Background(), domain.UpdateReportParams{
		ID:    report.ID,
		Title: "Rewriting an archived case",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ESTATE, domain.ErrorCode(err))
}
