package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job statuses in the background queue.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job is one row of the background job queue.
type Job struct {
	ID           uuid.UUID
	JobType      string
	Payload      json.RawMessage
	Status       string
	Priority     int32
	Attempts     int32
	MaxAttempts  int32
	ScheduledAt  time.Time
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
	ErrorMessage sql.NullString
	CreatedAt    time.Time
}

const jobColumns = `id, job_type, payload, status, priority, attempts, max_attempts,
	scheduled_at, started_at, completed_at, error_message, created_at`

func scanJob(row interface{ Scan(...interface{}) error }) (Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.JobType, &j.Payload, &j.Status, &j.Priority,
		&j.Attempts, &j.MaxAttempts, &j.ScheduledAt,
		&j.StartedAt, &j.CompletedAt, &j.ErrorMessage, &j.CreatedAt,
	)
	return j, err
}

// EnqueueJobParams are the values for a new queued job.
type EnqueueJobParams struct {
	JobType     string
	Payload     json.RawMessage
	Priority    int32
	MaxAttempts int32
	ScheduledAt time.Time
}

// EnqueueJob inserts a pending job and returns it.
func (q *Queries) EnqueueJob(ctx context.Context, params EnqueueJobParams) (Job, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO jobs (id, job_type, payload, status, priority, max_attempts, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+jobColumns,
		uuid.New(), params.JobType, params.Payload, JobStatusPending,
		params.Priority, params.MaxAttempts, params.ScheduledAt,
	)
	return scanJob(row)
}

// DequeueJob claims the next runnable job. Uses FOR UPDATE SKIP LOCKED so
// concurrent workers never claim the same row. Returns sql.ErrNoRows when the
// queue is empty.
func (q *Queries) DequeueJob(ctx context.Context) (Job, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE status = $1 AND scheduled_at <= now()
		ORDER BY priority DESC, scheduled_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, JobStatusPending)
	return scanJob(row)
}

// UpdateJobStarted marks a job as running and counts the attempt.
func (q *Queries) UpdateJobStarted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2, started_at = now(), attempts = attempts + 1
		WHERE id = $1`, id, JobStatusRunning)
	return err
}

// UpdateJobCompleted marks a job as successfully completed.
func (q *Queries) UpdateJobCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2, completed_at = now(), error_message = NULL
		WHERE id = $1`, id, JobStatusCompleted)
	return err
}

// UpdateJobFailedParams record a job failure.
type UpdateJobFailedParams struct {
	ID           uuid.UUID
	ErrorMessage sql.NullString
	Permanent    bool
}

// UpdateJobFailed records a failure. Jobs with attempts left are rescheduled
// with linear backoff; exhausted or permanently failed jobs are marked failed.
func (q *Queries) UpdateJobFailed(ctx context.Context, params UpdateJobFailedParams) error {
	if params.Permanent {
		_, err := q.db.ExecContext(ctx, `
			UPDATE jobs SET status = $2, error_message = $3 WHERE id = $1`,
			params.ID, JobStatusFailed, params.ErrorMessage)
		return err
	}

	_, err := q.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = CASE WHEN attempts >= max_attempts THEN $2 ELSE $3 END,
		    scheduled_at = now() + (attempts * interval '30 seconds'),
		    error_message = $4
		WHERE id = $1`,
		params.ID, JobStatusFailed, JobStatusPending, params.ErrorMessage,
	)
	return err
}

// RecoverStaleJobs resets running jobs older than the threshold back to
// pending. Returns how many jobs were recovered.
func (q *Queries) RecoverStaleJobs(ctx context.Context, thresholdSeconds float64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $1, started_at = NULL
		WHERE status = $2 AND started_at < now() - ($3 * interval '1 second')`,
		JobStatusPending, JobStatusRunning, thresholdSeconds,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
