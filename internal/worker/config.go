package worker

import (
	"fmt"
	"time"
)

// Config tunes the background job worker.
type Config struct {
	// Concurrency is how many goroutines poll and process jobs in
	// parallel. Mention scoring is I/O bound on the sentiment API, so a
	// small number goes a long way.
	Concurrency int

	// PollInterval is how often an idle worker checks the queue.
	PollInterval time.Duration

	// JobTimeout caps a single job execution. The job context is canceled
	// when it elapses and the job counts as failed.
	JobTimeout time.Duration

	// ShutdownTimeout bounds the wait for running jobs during graceful
	// shutdown.
	ShutdownTimeout time.Duration

	// StaleJobThreshold is the age at which a 'running' job is presumed
	// orphaned by a crashed worker and recovered on startup.
	StaleJobThreshold time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Concurrency:       2,
		PollInterval:      5 * time.Second,
		JobTimeout:        5 * time.Minute,
		ShutdownTimeout:   30 * time.Second,
		StaleJobThreshold: 10 * time.Minute,
	}
}

// Validate checks the configuration for values that would stall or thrash
// the queue.
func (c Config) Validate() error {
	switch {
	case c.Concurrency < 1:
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	case c.Concurrency > 100:
		return fmt.Errorf("concurrency too high (max 100), got %d", c.Concurrency)
	case c.PollInterval < 1*time.Second:
		return fmt.Errorf("poll interval must be at least 1 second, got %v", c.PollInterval)
	case c.JobTimeout < 1*time.Second:
		return fmt.Errorf("job timeout must be at least 1 second, got %v", c.JobTimeout)
	case c.ShutdownTimeout < 1*time.Second:
		return fmt.Errorf("shutdown timeout must be at least 1 second, got %v", c.ShutdownTimeout)
	case c.StaleJobThreshold < 1*time.Minute:
		return fmt.Errorf("stale job threshold must be at least 1 minute, got %v", c.StaleJobThreshold)
	}
	return nil
}
