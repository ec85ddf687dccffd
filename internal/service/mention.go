// Package service contains the business logic layer.
//
// This file implements the mention service: ingesting external content about
// the consortium's products, scheduling sentiment scoring and promoting
// relevant mentions into investigation cases.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/metrics"
	"github.com/oleawatch/oleawatch/internal/repository"
	"github.com/oleawatch/oleawatch/internal/worker"
)

// =============================================================================
// Interface Definition
// =============================================================================

// MentionService defines the interface for the mention pipeline.
type MentionService interface {
	// Ingest stores a new mention and schedules sentiment scoring for it.
	// Returns domain.EINVALID for validation errors.
	Ingest(ctx context.Context, params domain.IngestMentionParams) (*domain.Mention, error)

	// GetByID retrieves a mention by ID.
	// Returns domain.ENOTFOUND if the mention does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Mention, error)

	// List retrieves a paginated list of mentions, newest first.
	List(ctx context.Context, params domain.ListMentionsParams) ([]domain.Mention, error)

	// Score records the sentiment provider's result on a mention. Called by
	// the background scoring job.
	Score(ctx context.Context, id uuid.UUID, sentiment domain.MentionSentiment, relevance float64) error

	// Promote opens a report from a mention and links the two. A mention can
	// be promoted once.
	// Returns domain.ECONFLICT if the mention was already promoted.
	Promote(ctx context.Context, mentionID, actorID uuid.UUID) (*domain.Report, error)
}

// =============================================================================
// Implementation
// =============================================================================

// mentionService implements the MentionService interface.
type mentionService struct {
	store  Store
	tx     Transactor
	logger *slog.Logger
	now    func() time.Time
}

// NewMentionService creates a new MentionService.
func NewMentionService(store Store, tx Transactor, logger *slog.Logger) MentionService {
	return &mentionService{
		store:  store,
		tx:     tx,
		logger: logger,
		now:    time.Now,
	}
}

func (s *mentionService) Ingest(ctx context.Context, params domain.IngestMentionParams) (*domain.Mention, error) {
	const op = "mention.Ingest"

	source := strings.TrimSpace(params.Source)
	if source == "" {
		return nil, domain.MissingField(op, "source")
	}
	rawURL := strings.TrimSpace(params.URL)
	if rawURL == "" {
		return nil, domain.MissingField(op, "url")
	}
	if u, err := url.Parse(rawURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, domain.Invalid(op, "url must be a valid http(s) URL")
	}
	excerpt := strings.TrimSpace(params.Excerpt)
	if excerpt == "" {
		return nil, domain.MissingField(op, "excerpt")
	}

	var mention *domain.Mention
	err := s.tx.InTx(ctx, func(store Store) error {
		var err error
		mention, err = store.CreateMention(ctx, repository.CreateMentionParams{
			ID:      uuid.New(),
			Source:  source,
			URL:     rawURL,
			Excerpt: excerpt,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to create mention")
		}

		// Scoring happens asynchronously; the job is enqueued in the same
		// transaction so a committed mention always has a scoring job.
		payload, err := worker.MarshalPayload(worker.ScoreMentionPayload{MentionID: mention.ID})
		if err != nil {
			return domain.Internal(err, op, "failed to encode job payload")
		}
		_, err = store.EnqueueJob(ctx, repository.EnqueueJobParams{
			JobType:     worker.JobTypeScoreMention,
			Payload:     payload,
			Priority:    worker.PriorityNormal,
			MaxAttempts: 3,
			ScheduledAt: s.now().UTC(),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to enqueue scoring job")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MentionsIngested.Inc()
	s.logger.Info("mention ingested",
		slog.String("mention_id", mention.ID.String()),
		slog.String("source", source))
	return mention, nil
}

func (s *mentionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Mention, error) {
	const op = "mention.GetByID"

	mention, err := s.store.GetMention(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "mention", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load mention")
	}
	return mention, nil
}

func (s *mentionService) List(ctx context.Context, params domain.ListMentionsParams) ([]domain.Mention, error) {
	const op = "mention.List"

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if params.Sentiment != nil && !params.Sentiment.IsValid() {
		return nil, domain.Invalid(op, "invalid sentiment filter: "+params.Sentiment.String())
	}

	mentions, err := s.store.ListMentions(ctx, repository.ListMentionsParams{
		Sentiment: params.Sentiment,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list mentions")
	}
	return mentions, nil
}

func (s *mentionService) Score(ctx context.Context, id uuid.UUID, sentiment domain.MentionSentiment, relevance float64) error {
	const op = "mention.Score"

	if !sentiment.IsValid() {
		return domain.Invalid(op, "invalid sentiment: "+sentiment.String())
	}
	if relevance < 0 || relevance > 1 {
		return domain.Invalid(op, "relevance must be between 0 and 1")
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.store.ScoreMention(ctx, repository.ScoreMentionParams{
		ID:        id,
		Sentiment: sentiment,
		Relevance: relevance,
		ScoredAt:  s.now().UTC(),
	}); err != nil {
		return domain.Internal(err, op, "failed to score mention")
	}

	metrics.MentionsScored.WithLabelValues(sentiment.String()).Inc()
	return nil
}

func (s *mentionService) Promote(ctx context.Context, mentionID, actorID uuid.UUID) (*domain.Report, error) {
	const op = "mention.Promote"

	var report *domain.Report
	err := s.tx.InTx(ctx, func(store Store) error {
		mention, err := store.GetMention(ctx, mentionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "mention", mentionID.String())
			}
			return domain.Internal(err, op, "failed to load mention")
		}
		if mention.ReportID != nil {
			return domain.Conflict(op, "mention was already promoted to a report")
		}

		title := "Mention from " + mention.Source
		report, err = store.CreateReport(ctx, repository.CreateReportParams{
			ID:          uuid.New(),
			Title:       title,
			Description: mention.Excerpt + "\n\nSource: " + mention.URL,
			Status:      domain.ReportStatusInProgress,
			CreatedBy:   actorID,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to create report")
		}

		if err := store.PromoteMention(ctx, mention.ID, report.ID); err != nil {
			return domain.Internal(err, op, "failed to link mention to report")
		}

		_, err = store.AppendAction(ctx, domain.AppendActionParams{
			ReportID: report.ID,
			Type:     domain.ActionTypeReportCreated,
			Message:  "Report opened from mention: " + mention.Source,
			ActorID:  actorID,
			Metadata: auditMetadata(map[string]any{"mention_id": mention.ID}),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to append audit entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReportsCreated.Inc()
	s.logger.Info("mention promoted to report",
		slog.String("mention_id", mentionID.String()),
		slog.String("report_id", report.ID.String()))
	return report, nil
}
