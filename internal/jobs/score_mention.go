// Package jobs contains the background job handlers run by the worker.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/sentiment"
	"github.com/oleawatch/oleawatch/internal/service"
	"github.com/oleawatch/oleawatch/internal/worker"
)

// ScoreMentionHandler processes jobs that score an ingested mention's
// sentiment and relevance via the configured provider.
type ScoreMentionHandler struct {
	mentions service.MentionService
	provider sentiment.Provider
	logger   *slog.Logger
}

// NewScoreMentionHandler creates a new handler for mention scoring jobs.
func NewScoreMentionHandler(
	mentions service.MentionService,
	provider sentiment.Provider,
	logger *slog.Logger,
) *ScoreMentionHandler {
	return &ScoreMentionHandler{
		mentions: mentions,
		provider: provider,
		logger:   logger,
	}
}

// Type returns the job type identifier.
func (h *ScoreMentionHandler) Type() string {
	return worker.JobTypeScoreMention
}

// Handle executes the scoring job: fetch the mention, call the provider and
// stamp the result. Provider errors that are not transient fail the job
// permanently.
func (h *ScoreMentionHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.ScoreMentionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	h.logger.Info("Scoring mention", "mention_id", p.MentionID)

	mention, err := h.mentions.GetByID(ctx, p.MentionID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return worker.NewPermanentError(fmt.Errorf("mention not found: %w", err))
		}
		// Database error - retryable
		return fmt.Errorf("fetch mention: %w", err)
	}
	if mention.IsScored() {
		h.logger.Info("Mention already scored, skipping", "mention_id", p.MentionID)
		return nil
	}

	result, err := h.provider.Score(ctx, sentiment.ScoreParams{
		MentionID: mention.ID,
		Source:    mention.Source,
		URL:       mention.URL,
		Excerpt:   mention.Excerpt,
	})
	if err != nil {
		if sentiment.IsRetryable(err) {
			return fmt.Errorf("score mention: %w", err)
		}
		return worker.NewPermanentError(fmt.Errorf("score mention: %w", err))
	}

	if err := h.mentions.Score(ctx, mention.ID, domain.MentionSentiment(result.Label), result.Relevance); err != nil {
		return fmt.Errorf("record score: %w", err)
	}

	h.logger.Info("Mention scored",
		"mention_id", mention.ID,
		"label", string(result.Label),
		"relevance", result.Relevance,
	)
	return nil
}
