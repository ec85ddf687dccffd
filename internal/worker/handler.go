package worker

import (
	"context"
	"errors"
)

// JobHandler executes one kind of background job. Implementations live in
// internal/jobs: mention scoring, the overdue-clarification sweep, and any
// future queue work register here.
type JobHandler interface {
	// Type returns the job type identifier, matching the job_type column
	// of the jobs table.
	Type() string

	// Handle executes the job. The payload is the raw JSON stored when the
	// job was enqueued. Wrap the returned error with NewPermanentError to
	// suppress retries.
	Handle(ctx context.Context, payload []byte) error
}

// PermanentError marks a failure that retrying cannot fix, such as a
// malformed payload or a deleted mention. The worker moves such jobs
// straight to 'failed'.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError wraps err so the worker will not reschedule the job.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err, anywhere in its chain, is a PermanentError.
func IsPermanent(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}
