package worker

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default config", func(c *Config) {}, false},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, true},
		{"concurrency above cap", func(c *Config) { c.Concurrency = 101 }, true},
		{"sub-second poll interval", func(c *Config) { c.PollInterval = 500 * time.Millisecond }, true},
		{"sub-second job timeout", func(c *Config) { c.JobTimeout = 200 * time.Millisecond }, true},
		{"sub-second shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, true},
		{"stale threshold under a minute", func(c *Config) { c.StaleJobThreshold = 30 * time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	sentinel := errors.New("mention gone")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"permanent error", NewPermanentError(sentinel), true},
		{"wrapped permanent error", fmt.Errorf("execute job: %w", NewPermanentError(sentinel)), true},
		{"plain error", sentinel, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermanentError_PreservesCause(t *testing.T) {
	cause := errors.New("invalid payload")
	err := NewPermanentError(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through PermanentError")
	}
	if err.Error() != "invalid payload" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
