package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

func TestNewClientRequiresKeyOrEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewClient(llm.ClientConfig{Model: "gpt-4o-mini"})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "missing_api_key", llmErr.Code)

	_, err = NewClient(llm.ClientConfig{Model: "local", BaseURL: "http://localhost:8080/v1"})
	assert.NoError(t, err)
}

func TestChatCompletionAgainstCompatibleServer(t *testing.T) {
	t.Parallel()

	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","model":"gpt-4o-mini",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"Mars"},"finish_reason":"stop"}],` +
			`"usage":{"prompt_tokens":7,"completion_tokens":1,"total_tokens":8}}`))
	}))
	defer server.Close()

	client, err := NewClient(llm.ClientConfig{Model: "gpt-4o-mini", APIKey: "k", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages:       []llm.Message{llm.NewUserMessage("Which planet is red?")},
		ResponseFormat: llm.NewJSONSchemaResponseFormat("output", "", map[string]any{"type": "object"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "cmpl-1", resp.ID)
	assert.Equal(t, "Mars", resp.Text())
	assert.Equal(t, 8, resp.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	format := got["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestRateLimitError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	client, err := NewClient(llm.ClientConfig{Model: "gpt-4o-mini", APIKey: "k", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewUserMessage("hi")},
	})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, 429, llmErr.StatusCode)
	assert.Equal(t, llm.ErrorTypeRateLimit, llmErr.Type)
	assert.True(t, llm.IsRetryable(err))
}

func TestGetModelInfo(t *testing.T) {
	t.Parallel()

	client, err := NewClient(llm.ClientConfig{Model: "gpt-4o-mini", APIKey: "k"})
	require.NoError(t, err)
	info := client.GetModelInfo()
	assert.Equal(t, 128000, info.MaxTokens)
	assert.True(t, info.SupportsJSONSchema)

	client, err = NewClient(llm.ClientConfig{Model: "gpt-3.5-turbo", APIKey: "k"})
	require.NoError(t, err)
	assert.False(t, client.GetModelInfo().SupportsJSONSchema)
}
