package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// modelContext maps model name patterns to their context windows.
// Models are matched in order, first match wins
var modelContext = []struct {
	pattern   *regexp.Regexp
	maxTokens int
}{
	{regexp.MustCompile(`llama3\.[123]`), 131072},
	{regexp.MustCompile(`qwen`), 32768},
	{regexp.MustCompile(`gpt-oss`), 131072},
	{regexp.MustCompile(`codellama`), 16384},
	{regexp.MustCompile(`mistral`), 32768},
}

// jsonFormat is Ollama's format value for free-form JSON output
var jsonFormat = json.RawMessage(`"json"`)

// Client implements the llm.Client interface for Ollama
type Client struct {
	model   string
	baseURL *url.URL
	api     *api.Client
}

// NewClient creates a new Ollama client
func NewClient(config llm.ClientConfig) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = llm.DefaultOllamaBaseURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &llm.Error{
			Code:    "invalid_base_url",
			Message: fmt.Sprintf("invalid Ollama base URL %q", baseURL),
			Type:    llm.ErrorTypeValidation,
		}
	}

	model := config.Model
	if model == "" {
		model = llm.DefaultOllamaModel
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = llm.DefaultOllamaTimeout // local inference can be slow
	}

	return &Client{
		model:   model,
		baseURL: u,
		api:     api.NewClient(u, &http.Client{Timeout: timeout}),
	}, nil
}

// ChatCompletion performs a chat completion request using Ollama's /api/chat endpoint
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	ollamaReq, err := c.convertRequest(req)
	if err != nil {
		return nil, err
	}

	var final api.ChatResponse
	var content strings.Builder
	err = c.api.Chat(ctx, ollamaReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			final = resp
		}
		return nil
	})
	if err != nil {
		return nil, convertError(err)
	}

	return c.convertResponse(final, content.String()), nil
}

// Ping checks that the Ollama server is up
func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.Heartbeat(ctx); err != nil {
		return convertError(err)
	}
	return nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	maxTokens := 4096
	for _, m := range modelContext {
		if m.pattern.MatchString(c.model) {
			maxTokens = m.maxTokens
			break
		}
	}

	return llm.ModelInfo{
		Name:               c.model,
		Provider:           "ollama",
		MaxTokens:          maxTokens,
		SupportsJSONSchema: true,
	}
}

// Close cleans up resources
func (c *Client) Close() error {
	return nil
}

// convertRequest converts our format to Ollama's
func (c *Client) convertRequest(req llm.ChatRequest) (*api.ChatRequest, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]api.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	stream := false
	ollamaReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
	}

	if req.ResponseFormat != nil {
		switch req.ResponseFormat.Type {
		case llm.ResponseFormatJSON:
			ollamaReq.Format = jsonFormat
		case llm.ResponseFormatJSONSchema:
			schema, err := req.ResponseFormat.SchemaJSON()
			if err != nil {
				return nil, &llm.Error{Code: "request_error", Message: err.Error(), Type: llm.ErrorTypeClient}
			}
			if schema == nil {
				schema = jsonFormat
			}
			ollamaReq.Format = schema
		}
	}

	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		options["top_p"] = *req.TopP
	}
	if req.MaxTokens != nil {
		options["num_predict"] = *req.MaxTokens
	}
	if len(options) > 0 {
		ollamaReq.Options = options
	}

	return ollamaReq, nil
}

// convertResponse converts the final Ollama chunk and the accumulated content to our format
func (c *Client) convertResponse(resp api.ChatResponse, content string) *llm.ChatResponse {
	finishReason := llm.FinishReasonStop
	if resp.DoneReason == "length" {
		finishReason = llm.FinishReasonLength
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}

	return &llm.ChatResponse{
		ID:    fmt.Sprintf("ollama-%d", time.Now().UnixNano()),
		Model: model,
		Choices: []llm.Choice{{
			Index:        0,
			Message:      llm.NewAssistantMessage(content),
			FinishReason: finishReason,
		}},
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}
}

// convertError converts an Ollama error to our standardized format.
// Context cancellation is returned unchanged.
func convertError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return llm.NewErrorFromStatus("ollama", statusErr.StatusCode, statusErr.ErrorMessage)
	}

	return llm.NewNetworkError("ollama", err)
}
