package mock

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inercia/go-llm-programs/pkg/llm"
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

// Responder computes a reply for a request. Returning a nil response and nil
// error falls through to the default response.
type Responder func(req llm.ChatRequest) (*llm.ChatResponse, error)

// scripted is a queued reply: either a response or an error
type scripted struct {
	resp *llm.ChatResponse
	err  error
}

// Client implements the llm.Client interface for testing
type Client struct {
	mu             sync.Mutex
	modelInfo      llm.ModelInfo
	script         []scripted
	responder      Responder
	defaultContent *string
	callLog        []llm.ChatRequest
	latency        time.Duration
	failureRate    float64
	closed         bool
}

// NewClient creates a new mock LLM client for testing
func NewClient(modelName, provider string) (*Client, error) {
	return &Client{
		modelInfo: llm.ModelInfo{
			Name:               modelName,
			Provider:           provider,
			MaxTokens:          4096,
			SupportsJSONSchema: true,
		},
	}, nil
}

// New is like NewClient for tests, using a fixed model name
func New() *Client {
	c, _ := NewClient("mock-model", "mock")
	return c
}

// ChatCompletion returns the next scripted reply, the responder's reply or the default response
func (m *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.callLog = append(m.callLog, req)
	latency := m.latency
	failureRate := m.failureRate
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if failureRate > 0 {
		randomValue, err := secureRandomFloat64()
		if err != nil {
			randomValue = 1
		}
		if randomValue < failureRate {
			return nil, &llm.Error{
				Code:       "mock_random_failure",
				Message:    "Simulated random failure",
				Type:       llm.ErrorTypeAPI,
				StatusCode: 503,
			}
		}
	}

	m.mu.Lock()
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		m.mu.Unlock()
		if next.err != nil {
			return nil, next.err
		}
		return next.resp, nil
	}
	responder := m.responder
	defaultContent := m.defaultContent
	m.mu.Unlock()

	if responder != nil {
		resp, err := responder(req)
		if resp != nil || err != nil {
			return resp, err
		}
	}

	if defaultContent != nil {
		return m.textResponse(*defaultContent), nil
	}

	return nil, &llm.Error{
		Code:    "mock_exhausted",
		Message: fmt.Sprintf("mock: no response configured for call #%d", m.CallCount()),
		Type:    llm.ErrorTypeClient,
	}
}

// Ping succeeds unless the client has been closed
func (m *Client) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock client closed")
	}
	return ctx.Err()
}

// GetModelInfo returns the configured model information
func (m *Client) GetModelInfo() llm.ModelInfo {
	return m.modelInfo
}

// Close marks the client as closed
func (m *Client) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *Client) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Client) textResponse(content string) *llm.ChatResponse {
	return NewTextResponse(m.modelInfo.Name, content)
}

// NewTextResponse builds a single-choice response with some plausible usage numbers
func NewTextResponse(model, content string) *llm.ChatResponse {
	completion := len(strings.Fields(content))
	return &llm.ChatResponse{
		ID:    fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Model: model,
		Choices: []llm.Choice{{
			Index:        0,
			Message:      llm.NewAssistantMessage(content),
			FinishReason: llm.FinishReasonStop,
		}},
		Usage: llm.Usage{PromptTokens: 10, CompletionTokens: completion, TotalTokens: 10 + completion},
	}
}

// Configuration methods

// AddResponse queues a response
func (m *Client) AddResponse(response llm.ChatResponse) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{resp: &response})
	return m
}

// AddTextResponse queues a response with the given content
func (m *Client) AddTextResponse(contents ...string) *Client {
	for _, content := range contents {
		m.AddResponse(*m.textResponse(content))
	}
	return m
}

// AddError queues an error
func (m *Client) AddError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{err: err})
	return m
}

// WithError queues a standardized error
func (m *Client) WithError(code, message, errorType string) *Client {
	return m.AddError(&llm.Error{Code: code, Message: message, Type: errorType})
}

// WithSimpleResponse sets the response returned once the script is exhausted
func (m *Client) WithSimpleResponse(content string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultContent = &content
	return m
}

// WithResponder sets a function computing replies once the script is exhausted
func (m *Client) WithResponder(responder Responder) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = responder
	return m
}

// WithTextResponder is WithResponder for functions that only produce text
func (m *Client) WithTextResponder(fn func(req llm.ChatRequest) string) *Client {
	return m.WithResponder(func(req llm.ChatRequest) (*llm.ChatResponse, error) {
		return m.textResponse(fn(req)), nil
	})
}

// WithLatency delays every call
func (m *Client) WithLatency(duration time.Duration) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = duration
	return m
}

// WithFailureRate makes a fraction of the calls fail with a retryable error
func (m *Client) WithFailureRate(rate float64) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureRate = rate
	return m
}

// Assertions

// GetCallLog returns a copy of all received requests
func (m *Client) GetCallLog() []llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.ChatRequest, len(m.callLog))
	copy(out, m.callLog)
	return out
}

// GetLastCall returns the last received request, or nil
func (m *Client) GetLastCall() *llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.callLog) == 0 {
		return nil
	}
	last := m.callLog[len(m.callLog)-1]
	return &last
}

// CallCount returns the number of received requests
func (m *Client) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.callLog)
}

// Reset clears the script, the call log and any responder
func (m *Client) Reset() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = nil
	m.callLog = nil
	m.responder = nil
	m.defaultContent = nil
	return m
}

// LastUserMessage returns the text of the last user message of a request
func LastUserMessage(req llm.ChatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == llm.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

// AssertLastMessageContains reports whether the last user message of the last call contains text
func (m *Client) AssertLastMessageContains(text string) bool {
	last := m.GetLastCall()
	if last == nil {
		return false
	}
	return strings.Contains(LastUserMessage(*last), text)
}

var _ llm.Client = (*Client)(nil)
var _ llm.Pinger = (*Client)(nil)
