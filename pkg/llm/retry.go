package llm

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"
	"time"
)

// secureRandomFloat64 generates a cryptographically secure random float64 between 0 and 1
func secureRandomFloat64() (float64, error) {
	var bytes [8]byte
	_, err := rand.Read(bytes[:])
	if err != nil {
		return 0, err
	}
	return float64(binary.BigEndian.Uint64(bytes[:])) / float64(^uint64(0)), nil
}

// RetryConfig defines configuration options for the retry mechanism.
//
// The zero value disables retries.
//
//	RetryConfig{MaxRetries: 3, BaseDelay: time.Second, BackoffFactor: 2.0, Jitter: true}
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts.
	// Total requests = MaxRetries + 1 (original attempt).
	MaxRetries int `json:"max_retries" yaml:"max_retries" toml:"max_retries"`

	// BaseDelay is the initial delay between retries (default: 1 second).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" toml:"base_delay"`

	// MaxDelay caps the delay between retries (default: 60 seconds).
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay" toml:"max_delay"`

	// BackoffFactor multiplies the delay after each retry (default: 2.0).
	BackoffFactor float64 `json:"backoff_factor" yaml:"backoff_factor" toml:"backoff_factor"`

	// Jitter multiplies each delay by a random factor between 0.5 and 1.5.
	Jitter bool `json:"jitter" yaml:"jitter" toml:"jitter"`

	// RetryOnStatusCodes restricts retries to these HTTP status codes.
	// If empty, IsRetryable decides.
	RetryOnStatusCodes []int `json:"retry_on_status_codes,omitempty" yaml:"retry_on_status_codes,omitempty" toml:"retry_on_status_codes"`
}

// DefaultRetryConfig returns a sensible configuration for remote APIs
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     1 * time.Second,
		MaxDelay:      60 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// Enabled reports whether the configuration performs any retry at all
func (c RetryConfig) Enabled() bool {
	return c.MaxRetries > 0
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.BaseDelay <= 0 {
		c.BaseDelay = 1 * time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 60 * time.Second
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = 2.0
	}
	return c
}

// retryClient wraps a Client with retry functionality
type retryClient struct {
	Client
	config RetryConfig
}

// WithRetry wraps client so that retryable errors (rate limits, 5xx, network
// failures) are retried with exponential backoff. A config with MaxRetries <= 0
// returns the client unchanged.
//
//	client = llm.WithRetry(client, llm.DefaultRetryConfig())
func WithRetry(client Client, config RetryConfig) Client {
	if !config.Enabled() {
		return client
	}
	return &retryClient{Client: client, config: config.withDefaults()}
}

// ChatCompletion executes the chat completion with retry logic
func (r *retryClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		resp, err := r.Client.ChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == r.config.MaxRetries || !r.isRetryableError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.calculateDelay(attempt)):
		}
	}

	return nil, lastErr
}

// Ping checks the wrapped backend once, without retries
func (r *retryClient) Ping(ctx context.Context) error {
	return Ping(ctx, r.Client)
}

// isRetryableError determines if an error should trigger a retry
func (r *retryClient) isRetryableError(err error) bool {
	if len(r.config.RetryOnStatusCodes) == 0 {
		return IsRetryable(err)
	}

	llmErr, ok := err.(*Error)
	if !ok {
		return false
	}
	for _, code := range r.config.RetryOnStatusCodes {
		if llmErr.StatusCode == code {
			return true
		}
	}
	return false
}

// calculateDelay computes the delay for a given retry attempt using exponential backoff
func (r *retryClient) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.BaseDelay) * math.Pow(r.config.BackoffFactor, float64(attempt))

	if r.config.Jitter {
		randomValue, err := secureRandomFloat64()
		if err != nil {
			randomValue = 1.0
		}
		delay *= 0.5 + randomValue
	}

	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	return time.Duration(delay)
}
