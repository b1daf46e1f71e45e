package llm

import (
	"context"
	"sync"
	"time"

	"github.com/inercia/go-llm-programs/pkg/logging"
)

type startTimeKey struct{}

// LoggingMiddleware logs every completion with its duration and token usage
type LoggingMiddleware struct {
	logger logging.Logger
}

// NewLoggingMiddleware creates a middleware logging to logger
func NewLoggingMiddleware(logger logging.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logging.OrNoOp(logger)}
}

func (m *LoggingMiddleware) Name() string { return "logging" }

func (m *LoggingMiddleware) ProcessRequest(ctx context.Context, req *ChatRequest) (context.Context, *ChatRequest, error) {
	m.logger.Debug("llm request", "model", req.Model, "messages", len(req.Messages))
	return context.WithValue(ctx, startTimeKey{}, time.Now()), req, nil
}

func (m *LoggingMiddleware) ProcessResponse(ctx context.Context, req *ChatRequest, resp *ChatResponse, err error) (*ChatResponse, error) {
	var elapsed time.Duration
	if start, ok := ctx.Value(startTimeKey{}).(time.Time); ok {
		elapsed = time.Since(start)
	}

	if err != nil {
		m.logger.Error("llm request failed", "model", req.Model, "duration", elapsed, "error", err)
		return resp, err
	}

	m.logger.Debug("llm response",
		"model", resp.Model,
		"duration", elapsed,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"truncated", resp.Truncated(),
	)
	return resp, nil
}

// UsageTracker accumulates token usage and call counts across completions.
// It is safe for concurrent use.
type UsageTracker struct {
	mu     sync.Mutex
	usage  Usage
	calls  int
	errors int
}

// NewUsageTracker creates an empty tracker
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

func (u *UsageTracker) Name() string { return "usage" }

func (u *UsageTracker) ProcessRequest(ctx context.Context, req *ChatRequest) (context.Context, *ChatRequest, error) {
	return ctx, req, nil
}

func (u *UsageTracker) ProcessResponse(_ context.Context, _ *ChatRequest, resp *ChatResponse, err error) (*ChatResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.calls++
	if err != nil {
		u.errors++
		return resp, err
	}
	if resp != nil {
		u.usage = u.usage.Add(resp.Usage)
	}
	return resp, nil
}

// Totals returns the accumulated usage, the number of calls and the number of failed calls
func (u *UsageTracker) Totals() (Usage, int, int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.usage, u.calls, u.errors
}
