package ollama

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

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(llm.ClientConfig{Provider: "ollama", Model: "llama3.2:3b", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestChatCompletion(t *testing.T) {
	t.Parallel()

	var got map[string]any
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2:3b","created_at":"2024-01-01T00:00:00Z",` +
			`"message":{"role":"assistant","content":"Berlin"},"done":true,"done_reason":"stop",` +
			`"prompt_eval_count":12,"eval_count":3}` + "\n"))
	})

	temperature := float32(0.2)
	resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage("You answer questions."),
			llm.NewUserMessage("What is the capital of Germany?"),
		},
		Temperature:    &temperature,
		ResponseFormat: llm.NewJSONSchemaResponseFormat("answer", "", map[string]any{"type": "object"}),
	})
	require.NoError(t, err)

	assert.Equal(t, "Berlin", resp.Text())
	assert.Equal(t, llm.FinishReasonStop, resp.Choices[0].FinishReason)
	assert.Equal(t, llm.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15}, resp.Usage)

	assert.Equal(t, "llama3.2:3b", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, map[string]any{"type": "object"}, got["format"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	options := got["options"].(map[string]any)
	assert.InDelta(t, 0.2, options["temperature"], 0.0001)
}

func TestChatCompletionModelNotFound(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama3.2:3b\" not found, try pulling it first"}`))
	})

	_, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewUserMessage("hi")},
	})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, 404, llmErr.StatusCode)
	assert.Equal(t, llm.ErrorTypeModel, llmErr.Type)
	assert.Contains(t, llmErr.Message, "not found")
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(llm.ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewUserMessage("hi")},
	})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrorTypeNetwork, llmErr.Type)
	assert.True(t, llm.IsRetryable(err))

	assert.Error(t, client.Ping(context.Background()))
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	client, err := NewClient(llm.ClientConfig{})
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultOllamaBaseURL, client.baseURL.String())

	info := client.GetModelInfo()
	assert.Equal(t, "llama3.2:3b", info.Name)
	assert.Equal(t, "ollama", info.Provider)
	assert.Equal(t, 131072, info.MaxTokens)

	_, err = NewClient(llm.ClientConfig{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestJSONObjectFormat(t *testing.T) {
	t.Parallel()

	client, err := NewClient(llm.ClientConfig{})
	require.NoError(t, err)

	req, err := client.convertRequest(llm.ChatRequest{ResponseFormat: llm.NewJSONResponseFormat()})
	require.NoError(t, err)
	assert.JSONEq(t, `"json"`, string(req.Format))
	assert.Nil(t, req.Options)
}
