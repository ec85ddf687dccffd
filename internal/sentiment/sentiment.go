// Package sentiment defines the provider interface for scoring web mentions.
//
// Scoring quality is a black-box concern of the provider; the rest of the
// application only depends on this interface and its label/relevance output.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Provider defines the interface for mention sentiment scoring.
type Provider interface {
	// Score classifies a mention's excerpt and rates its relevance to the
	// consortium's products.
	Score(ctx context.Context, params ScoreParams) (*ScoreResult, error)
}

// ScoreParams contains parameters for one scoring call.
type ScoreParams struct {
	MentionID uuid.UUID // Mention ID for tracking
	Source    string    // Provider/source name
	URL       string    // Where the content was found
	Excerpt   string    // The text to score
}

// ScoreResult contains the provider's classification.
type ScoreResult struct {
	Label     Label         // Sentiment classification
	Relevance float64       // Relevance to the monitored products, 0-1
	Rationale string        // Optional provider explanation
	Duration  time.Duration // Request duration
}

// Label is the sentiment classification of a mention. Values match
// domain.MentionSentiment.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// Valid checks if the label is a recognized value.
func (l Label) Valid() bool {
	switch l {
	case LabelPositive, LabelNeutral, LabelNegative:
		return true
	default:
		return false
	}
}

// ProviderConfig contains common configuration for scoring providers.
type ProviderConfig struct {
	MaxRetries     int           // Maximum retry attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// Error values for provider operations.
var (
	// ERateLimit indicates the provider rate limit has been exceeded
	ERateLimit = errors.New("sentiment provider rate limit exceeded")

	// ETimeout indicates the request timed out
	ETimeout = errors.New("sentiment request timed out")

	// EUnavailable indicates the provider is temporarily unavailable
	EUnavailable = errors.New("sentiment provider temporarily unavailable")

	// EUnauthorized indicates invalid API credentials
	EUnauthorized = errors.New("sentiment provider authentication failed")

	// EBadResponse indicates the provider returned an unusable result
	EBadResponse = errors.New("sentiment provider returned an invalid result")
)

// IsRetryable returns true if the error is a transient error that can be
// retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ERateLimit) ||
		errors.Is(err, ETimeout) ||
		errors.Is(err, EUnavailable)
}

// WrapError wraps an error with context about the scoring operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("sentiment %s: %w", operation, err)
}
