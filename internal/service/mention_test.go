package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/worker"
)

func newMentionFixture() (*memStore, MentionService) {
	store := newMemStore()
	svc := NewMentionService(store, &memTransactor{store: store}, testLogger())
	return store, svc
}

func ingestFixture() domain.IngestMentionParams {
	return domain.IngestMentionParams{
		Source:  "foodwatch-forum",
		URL:     "https://forum.example.com/t/olio-bianchi-dop-sospetto/182",
		Excerpt: "The tin I bought tastes nothing like the DOP oil from last year.",
	}
}

func TestMentionIngest_SchedulesScoring(t *testing.T) {
	store, svc := newMentionFixture()

	mention, err := svc.Ingest(context.Background(), ingestFixture())
	require.NoError(t, err)

	assert.Equal(t, "foodwatch-forum", mention.Source)
	assert.False(t, mention.IsScored())

	// Ingestion and scheduling commit together.
	require.Len(t, store.jobs, 1)
	job := store.jobs[0]
	assert.Equal(t, worker.JobTypeScoreMention, job.JobType)
	assert.Equal(t, int32(3), job.MaxAttempts)
	assert.Contains(t, string(job.Payload), mention.ID.String())
}

func TestMentionIngest_Validation(t *testing.T) {
	_, svc := newMentionFixture()

	tests := []struct {
		name     string
		mutate   func(*domain.IngestMentionParams)
		wantCode string
	}{
		{
			name:     "missing source",
			mutate:   func(p *domain.IngestMentionParams) { p.Source = " " },
			wantCode: domain.EMISSINGFIELD,
		},
		{
			name:     "missing url",
			mutate:   func(p *domain.IngestMentionParams) { p.URL = "" },
			wantCode: domain.EMISSINGFIELD,
		},
		{
			name:     "non-http url",
			mutate:   func(p *domain.IngestMentionParams) { p.URL = "ftp://forum.example.com/x" },
			wantCode: domain.EINVALID,
		},
		{
			name:     "missing excerpt",
			mutate:   func(p *domain.IngestMentionParams) { p.Excerpt = "  " },
			wantCode: domain.EMISSINGFIELD,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := ingestFixture()
			tt.mutate(&params)
			_, err := svc.Ingest(context.Background(), params)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
		})
	}
}

func TestMentionScore(t *testing.T) {
	store, svc := newMentionFixture()
	mention, err := svc.Ingest(context.Background(), ingestFixture())
	require.NoError(t, err)

	err = svc.Score(context.Background(), mention.ID, domain.MentionSentimentNegative, 0.91)
	require.NoError(t, err)

	scored := store.mentions[mention.ID]
	require.NotNil(t, scored.Sentiment)
	assert.Equal(t, domain.MentionSentimentNegative, *scored.Sentiment)
	require.NotNil(t, scored.Relevance)
	assert.InDelta(t, 0.91, *scored.Relevance, 1e-9)
	assert.True(t, scored.IsScored())
}

func TestMentionScore_Validation(t *testing.T) {
	_, svc := newMentionFixture()

	err := svc.Score(context.Background(), uuid.New(), domain.MentionSentiment("sour"), 0.5)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	err = svc.Score(context.Background(), uuid.New(), domain.MentionSentimentNeutral, 1.5)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestMentionList_SentimentFilter(t *testing.T) {
	_, svc := newMentionFixture()
	first, err := svc.Ingest(context.Background(), ingestFixture())
	require.NoError(t, err)
	second := ingestFixture()
	second.URL = "https://social.example.com/posts/9921"
	_, err = svc.Ingest(context.Background(), second)
	require.NoError(t, err)

	require.NoError(t, svc.Score(context.Background(), first.ID, domain.MentionSentimentNegative, 0.8))

	negative := domain.MentionSentimentNegative
	got, err := svc.List(context.Background(), domain.ListMentionsParams{Sentiment: &negative})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
}

func TestMentionPromote(t *testing.T) {
	store, svc := newMentionFixture()
	mention, err := svc.Ingest(context.Background(), ingestFixture())
	require.NoError(t, err)
	actor := uuid.New()

	report, err := svc.Promote(context.Background(), mention.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, "Mention from foodwatch-forum", report.Title)
	assert.Equal(t, domain.ReportStatusInProgress, report.Status)
	assert.Contains(t, report.Description, mention.URL)

	promoted := store.mentions[mention.ID]
	require.NotNil(t, promoted.ReportID)
	assert.Equal(t, report.ID, *promoted.ReportID)
}

func TestMentionPromote_Once(t *testing.T) {
	_, svc := newMentionFixture()
	mention, err := svc.Ingest(context.Background(), ingestFixture())
	require.NoError(t, err)

	_, err = svc.Promote(context.Background(), mention.ID, uuid.New())
	require.NoError(t, err)

	_, err = svc.Promote(context.Background(), mention.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestMentionPromote_NotFound(t *testing.T) {
	_, svc := newMentionFixture()

	_, err := svc.Promote(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
