package metrics

import "time"

// JobStarted marks a job as executing. Pair with JobFinished.
func JobStarted(jobType string) {
	JobsInFlight.Inc()
}

// JobFinished marks a job as no longer executing, whatever the outcome.
func JobFinished(jobType string) {
	JobsInFlight.Dec()
}

// JobCompleted records a successful job completion.
func JobCompleted(jobType string, duration time.Duration) {
	JobsTotal.WithLabelValues(jobType, "completed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobFailed records a permanently failed job.
func JobFailed(jobType string) {
	JobsTotal.WithLabelValues(jobType, "failed").Inc()
}

// JobRetried records a job rescheduled after a transient failure.
func JobRetried(jobType string) {
	JobRetriesTotal.WithLabelValues(jobType).Inc()
}
