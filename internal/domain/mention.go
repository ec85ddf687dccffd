// Package domain contains core business types and interfaces.
//
// This file defines the Mention domain type: a piece of external content
// ingested from a provider and scored for sentiment and relevance. Scoring
// quality is a black-box concern of the sentiment provider.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MentionSentiment is the provider-assigned sentiment of a mention.
type MentionSentiment string

const (
	MentionSentimentPositive MentionSentiment = "positive"
	MentionSentimentNeutral  MentionSentiment = "neutral"
	MentionSentimentNegative MentionSentiment = "negative"
)

// String returns the string representation of the sentiment.
func (s MentionSentiment) String() string {
	return string(s)
}

// IsValid returns true if the sentiment is a recognized value.
func (s MentionSentiment) IsValid() bool {
	switch s {
	case MentionSentimentPositive, MentionSentimentNeutral, MentionSentimentNegative:
		return true
	}
	return false
}

// Mention represents one ingested piece of external content about the
// consortium's products.
type Mention struct {
	ID        uuid.UUID         // Unique identifier
	Source    string            // Provider/source name
	URL       string            // Where the content was found
	Excerpt   string            // Relevant excerpt of the content
	Sentiment *MentionSentiment // Provider-assigned sentiment (nil until scored)
	Relevance *float64          // Provider-assigned relevance 0-1 (nil until scored)
	ReportID  *uuid.UUID        // Report the mention was promoted into, if any
	FetchedAt time.Time         // When the mention was ingested
	ScoredAt  *time.Time        // When the provider scored it
}

// IsScored returns true once the sentiment provider has scored the mention.
func (m *Mention) IsScored() bool {
	return m.ScoredAt != nil
}

// IngestMentionParams contains validated parameters for ingesting a mention.
type IngestMentionParams struct {
	Source  string // Required: provider/source name
	URL     string // Required: where the content was found
	Excerpt string // Required: relevant excerpt
}

// ListMentionsParams contains parameters for listing mentions.
type ListMentionsParams struct {
	Sentiment *MentionSentiment // Optional: filter by sentiment
	Limit     int32             // Max results to return
	Offset    int32             // Number of results to skip
}
