package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/repository"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypeScoreMention         = "score_mention"
	JobTypeClarificationOverdue = "clarification_overdue"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// ScoreMentionPayload is the payload for sentiment scoring jobs.
type ScoreMentionPayload struct {
	MentionID uuid.UUID `json:"mention_id"`
}

// ClarificationOverduePayload is the payload for the overdue-clarification
// sweep. The sweep scans all open requests, so the payload only carries the
// enqueue time for tracing.
type ClarificationOverduePayload struct {
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// MarshalPayload encodes a job payload for enqueueing. Callers that enqueue
// through a transactional store use this instead of EnqueueJob.
func MarshalPayload(payload interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return data, nil
}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob is a generic helper for enqueuing jobs with custom options.
func EnqueueJob(
	ctx context.Context,
	queries *repository.Queries,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	payloadJSON, err := MarshalPayload(payload)
	if err != nil {
		return repository.Job{}, err
	}

	// Default parameters
	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}

	// Apply options
	for _, opt := range opts {
		opt(&params)
	}

	job, err := queries.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

// EnqueueScoreMention enqueues a sentiment scoring job for a mention.
func EnqueueScoreMention(
	ctx context.Context,
	queries *repository.Queries,
	mentionID uuid.UUID,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := ScoreMentionPayload{MentionID: mentionID}
	return EnqueueJob(ctx, queries, JobTypeScoreMention, payload, opts...)
}

// EnqueueClarificationOverdue enqueues one overdue-clarification sweep.
// The scheduler enqueues this periodically; each run marks requests whose
// deadline passed without a reply.
func EnqueueClarificationOverdue(
	ctx context.Context,
	queries *repository.Queries,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := ClarificationOverduePayload{EnqueuedAt: time.Now().UTC()}
	return EnqueueJob(ctx, queries, JobTypeClarificationOverdue, payload, opts...)
}
