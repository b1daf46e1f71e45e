package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(llm.ClientConfig{Provider: "openrouter"})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "missing_api_key", llmErr.Code)
}

func TestChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "https://example.com", r.Header.Get("HTTP-Referer"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "qwen/qwen3-8b", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "gen-1",
			"model": "qwen/qwen3-8b",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Canberra"}}],
			"usage": {"prompt_tokens": 8, "completion_tokens": 2, "total_tokens": 10}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(llm.ClientConfig{
		Provider: "openrouter",
		Model:    "qwen/qwen3-8b",
		APIKey:   "test",
		BaseURL:  server.URL + "/api/v1",
		Extra:    map[string]string{"site_url": "https://example.com"},
	})
	require.NoError(t, err)

	resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewUserMessage("capital of Australia?")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Canberra", resp.Text())
	assert.Equal(t, 10, resp.Usage.TotalTokens)
	assert.Equal(t, 128000, client.GetModelInfo().MaxTokens)
}

func TestChatCompletionRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "slow down"}}`))
	}))
	defer server.Close()

	client, err := NewClient(llm.ClientConfig{Provider: "openrouter", APIKey: "test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewUserMessage("hi")},
	})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, 429, llmErr.StatusCode)
	assert.True(t, llm.IsRetryable(err))
}

func TestConvertRequestJSON(t *testing.T) {
	client := &Client{model: DefaultModel}
	req := client.convertRequest(llm.ChatRequest{
		Messages:       []llm.Message{llm.NewUserMessage("hi")},
		ResponseFormat: llm.NewJSONSchemaResponseFormat("x", "", map[string]any{"type": "object"}),
	})
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[1].Content.Text, `"type":"object"`)
}
