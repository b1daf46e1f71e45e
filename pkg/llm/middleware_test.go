package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMiddleware struct {
	name string
	log  *[]string
	mu   *sync.Mutex
}

func (m recordingMiddleware) Name() string { return m.name }

func (m recordingMiddleware) ProcessRequest(ctx context.Context, req *ChatRequest) (context.Context, *ChatRequest, error) {
	m.mu.Lock()
	*m.log = append(*m.log, "req:"+m.name)
	m.mu.Unlock()
	req.Messages = append(req.Messages, NewUserMessage(m.name))
	return ctx, req, nil
}

func (m recordingMiddleware) ProcessResponse(_ context.Context, _ *ChatRequest, resp *ChatResponse, err error) (*ChatResponse, error) {
	m.mu.Lock()
	*m.log = append(*m.log, "resp:"+m.name)
	m.mu.Unlock()
	return resp, err
}

type echoClient struct {
	lastReq ChatRequest
	err     error
}

func (e *echoClient) ChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	e.lastReq = req
	if e.err != nil {
		return nil, e.err
	}
	return &ChatResponse{
		Model:   req.Model,
		Choices: []Choice{{Message: NewAssistantMessage("echo"), FinishReason: FinishReasonStop}},
		Usage:   Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (e *echoClient) GetModelInfo() ModelInfo { return ModelInfo{Name: "echo"} }
func (e *echoClient) Close() error            { return nil }

func TestMiddlewareChainOrder(t *testing.T) {
	t.Parallel()

	var log []string
	mu := &sync.Mutex{}
	inner := &echoClient{}
	client := WithMiddleware(inner,
		recordingMiddleware{name: "first", log: &log, mu: mu},
		recordingMiddleware{name: "second", log: &log, mu: mu},
	)

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "echo", resp.Text())

	assert.Equal(t, []string{"req:first", "req:second", "resp:second", "resp:first"}, log)
	require.Len(t, inner.lastReq.Messages, 2)
	assert.Equal(t, "first", inner.lastReq.Messages[0].Content)
	assert.Equal(t, []string{"first", "second"}, client.Chain().GetMiddlewareNames())

	assert.True(t, client.Chain().RemoveMiddleware("first"))
	assert.False(t, client.Chain().RemoveMiddleware("missing"))
	assert.Equal(t, []string{"second"}, client.Chain().GetMiddlewareNames())
}

func TestUsageTracker(t *testing.T) {
	t.Parallel()

	tracker := NewUsageTracker()
	client := WithMiddleware(&echoClient{}, NewLoggingMiddleware(nil), tracker)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = client.ChatCompletion(context.Background(), ChatRequest{Model: "m"})
		}()
	}
	wg.Wait()

	usage, calls, failures := tracker.Totals()
	assert.Equal(t, 10, calls)
	assert.Equal(t, 0, failures)
	assert.Equal(t, 150, usage.TotalTokens)
	assert.Equal(t, 100, usage.PromptTokens)
}

func TestUsageTrackerCountsErrors(t *testing.T) {
	t.Parallel()

	tracker := NewUsageTracker()
	boom := errors.New("boom")
	client := WithMiddleware(&echoClient{err: boom}, tracker)

	_, err := client.ChatCompletion(context.Background(), ChatRequest{})
	assert.ErrorIs(t, err, boom)

	_, calls, failures := tracker.Totals()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, failures)
}
