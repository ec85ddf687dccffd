// Package mock provides a canned sentiment provider for development and
// tests.
package mock

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oleawatch/oleawatch/internal/sentiment"
)

// Provider is a mock sentiment provider. Without a configured response it
// classifies by keyword so local development produces varied data.
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	ScoreResponse *sentiment.ScoreResult
	ScoreError    error

	// Call tracking for testing
	ScoreCalls int
}

// New creates a new mock sentiment provider
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// negativeMarkers are words that push the canned classification negative.
var negativeMarkers = []string{
	"fraud", "fake", "counterfeit", "scandal", "mislabel",
	"adulterat", "recall", "lawsuit", "contaminat",
}

// positiveMarkers are words that push the canned classification positive.
var positiveMarkers = []string{
	"award", "excellent", "best", "premium", "gold medal", "outstanding",
}

// Score returns a canned classification.
func (p *Provider) Score(ctx context.Context, params sentiment.ScoreParams) (*sentiment.ScoreResult, error) {
	p.ScoreCalls++

	// If a custom response or error is set, use it
	if p.ScoreError != nil {
		return nil, p.ScoreError
	}
	if p.ScoreResponse != nil {
		return p.ScoreResponse, nil
	}

	start := time.Now()
	text := strings.ToLower(params.Excerpt)

	label := sentiment.LabelNeutral
	relevance := 0.5
	for _, marker := range negativeMarkers {
		if strings.Contains(text, marker) {
			label = sentiment.LabelNegative
			relevance = 0.9
			break
		}
	}
	if label == sentiment.LabelNeutral {
		for _, marker := range positiveMarkers {
			if strings.Contains(text, marker) {
				label = sentiment.LabelPositive
				relevance = 0.7
				break
			}
		}
	}

	p.logger.Debug("mock sentiment score",
		slog.String("mention_id", params.MentionID.String()),
		slog.String("label", string(label)))

	return &sentiment.ScoreResult{
		Label:     label,
		Relevance: relevance,
		Rationale: "mock keyword classification",
		Duration:  time.Since(start),
	}, nil
}
