// Package httpapi implements the sentiment Provider against a remote JSON
// scoring API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oleawatch/oleawatch/internal/metrics"
	"github.com/oleawatch/oleawatch/internal/sentiment"
)

// Config contains configuration for the HTTP scoring provider.
type Config struct {
	BaseURL        string // Scoring endpoint, e.g. "https://scoring.internal/v1/score"
	APIKey         string
	ProviderConfig sentiment.ProviderConfig
}

// Provider implements the sentiment Provider interface over a JSON API.
type Provider struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a new HTTP sentiment provider
func New(config Config, logger *slog.Logger) (*Provider, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("sentiment API base URL is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("sentiment API key is required")
	}

	// Set defaults
	if config.ProviderConfig.MaxRetries == 0 {
		config.ProviderConfig.MaxRetries = 3
	}
	if config.ProviderConfig.RetryBaseDelay == 0 {
		config.ProviderConfig.RetryBaseDelay = 1 * time.Second
	}
	if config.ProviderConfig.RequestTimeout == 0 {
		config.ProviderConfig.RequestTimeout = 30 * time.Second
	}

	return &Provider{
		config: config,
		client: &http.Client{
			Timeout: config.ProviderConfig.RequestTimeout,
		},
		logger: logger,
	}, nil
}

// apiRequest is the wire form of one scoring call.
type apiRequest struct {
	Source  string `json:"source"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt"`
}

// apiResponse is the wire form of the provider's reply.
type apiResponse struct {
	Label     string  `json:"label"`
	Relevance float64 `json:"relevance"`
	Rationale string  `json:"rationale"`
}

// Score classifies a mention via the remote API, retrying transient errors
// with exponential backoff.
func (p *Provider) Score(ctx context.Context, params sentiment.ScoreParams) (*sentiment.ScoreResult, error) {
	start := time.Now()

	body, err := json.Marshal(apiRequest{
		Source:  params.Source,
		URL:     params.URL,
		Excerpt: params.Excerpt,
	})
	if err != nil {
		return nil, sentiment.WrapError("build request", err)
	}

	resp, err := p.executeWithRetry(ctx, body)
	if err != nil {
		metrics.SentimentAPICalls.WithLabelValues("error").Inc()
		return nil, sentiment.WrapError("execute request", err)
	}

	label := sentiment.Label(resp.Label)
	if !label.Valid() {
		metrics.SentimentAPICalls.WithLabelValues("error").Inc()
		return nil, sentiment.WrapError("parse response",
			fmt.Errorf("%w: label %q", sentiment.EBadResponse, resp.Label))
	}
	if resp.Relevance < 0 || resp.Relevance > 1 {
		metrics.SentimentAPICalls.WithLabelValues("error").Inc()
		return nil, sentiment.WrapError("parse response",
			fmt.Errorf("%w: relevance %f", sentiment.EBadResponse, resp.Relevance))
	}

	metrics.SentimentAPICalls.WithLabelValues("ok").Inc()
	return &sentiment.ScoreResult{
		Label:     label,
		Relevance: resp.Relevance,
		Rationale: resp.Rationale,
		Duration:  time.Since(start),
	}, nil
}

// executeWithRetry executes the scoring call with exponential backoff retry
func (p *Provider) executeWithRetry(ctx context.Context, body []byte) (*apiResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= p.config.ProviderConfig.MaxRetries; attempt++ {
		resp, err := p.executeRequest(ctx, body)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Only retry on retryable errors
		if !sentiment.IsRetryable(err) {
			return nil, err
		}
		if attempt >= p.config.ProviderConfig.MaxRetries {
			break
		}

		// Exponential backoff: base * 2^(attempt-1)
		delay := p.config.ProviderConfig.RetryBaseDelay * time.Duration(1<<(attempt-1))
		p.logger.Info("Retrying sentiment request", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// executeRequest executes a single HTTP request
func (p *Provider) executeRequest(ctx context.Context, body []byte) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		// Network errors are typically retryable
		return nil, sentiment.EUnavailable
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.mapHTTPError(resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &apiResp, nil
}

// mapHTTPError maps HTTP status codes to sentiment errors
func (p *Provider) mapHTTPError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return sentiment.EUnauthorized
	case http.StatusTooManyRequests:
		return sentiment.ERateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return sentiment.ETimeout
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusInternalServerError:
		return sentiment.EUnavailable
	default:
		return fmt.Errorf("unexpected status code: %d", statusCode)
	}
}
