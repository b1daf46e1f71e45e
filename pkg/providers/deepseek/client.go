package deepseek

import (
	"context"
	"errors"
	"strings"

	"github.com/cohesion-org/deepseek-go"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// DefaultModel is used when the config does not name one
const DefaultModel = "deepseek-chat"

// Client implements the llm.Client interface for DeepSeek
type Client struct {
	client    *deepseek.Client
	model     string
	customURL bool
}

// NewClient creates a new DeepSeek client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for DeepSeek",
			Type:    llm.ErrorTypeAuthentication,
		}
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	var opts []deepseek.Option
	if config.BaseURL != "" {
		if config.BaseURL == "http://" || config.BaseURL == "https://" {
			return nil, &llm.Error{
				Code:    "invalid_base_url",
				Message: "base URL cannot be just a protocol",
				Type:    llm.ErrorTypeValidation,
			}
		}
		opts = append(opts, deepseek.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, deepseek.WithTimeout(config.Timeout))
	}

	client, err := deepseek.NewClientWithOptions(config.APIKey, opts...)
	if err != nil {
		return nil, &llm.Error{
			Code:    "client_creation_error",
			Message: "failed to create DeepSeek client: " + err.Error(),
			Type:    llm.ErrorTypeClient,
		}
	}

	return &Client{
		client:    client,
		model:     config.Model,
		customURL: config.BaseURL != "",
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	deepseekReq := c.convertRequest(req)

	resp, err := c.client.CreateChatCompletion(ctx, &deepseekReq)
	if err != nil {
		return nil, convertError(err)
	}

	return convertResponse(resp), nil
}

// Ping lists the models available to the key. The models endpoint only
// exists on the official API, so custom base URLs cannot be checked.
func (c *Client) Ping(ctx context.Context) error {
	if c.customURL {
		return llm.ErrPingUnsupported
	}
	if _, err := deepseek.ListAllModels(c.client, ctx); err != nil {
		return convertError(err)
	}
	return nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	maxTokens := 65536
	if strings.Contains(c.model, "coder") {
		maxTokens = 16384
	}
	return llm.ModelInfo{
		Name:      c.model,
		Provider:  "deepseek",
		MaxTokens: maxTokens,
	}
}

// Close is a no-op, the deepseek-go client owns its HTTP client
func (c *Client) Close() error {
	return nil
}

// convertRequest converts our llm.ChatRequest to DeepSeek format.
// DeepSeek has no schema-constrained output, so JSON formats become a
// trailing system instruction.
func (c *Client) convertRequest(req llm.ChatRequest) deepseek.ChatCompletionRequest {
	messages := make([]deepseek.ChatCompletionMessage, 0, len(req.Messages)+1)
	for _, msg := range req.Messages {
		messages = append(messages, deepseek.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	if req.ResponseFormat != nil && req.ResponseFormat.Type != llm.ResponseFormatText {
		instruction := "Respond only with a valid JSON object."
		if schema, err := req.ResponseFormat.SchemaJSON(); err == nil && schema != nil {
			instruction = "Respond only with JSON conforming to this schema:\n" + string(schema)
		}
		messages = append(messages, deepseek.ChatCompletionMessage{
			Role:    string(llm.RoleSystem),
			Content: instruction,
		})
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	deepseekReq := deepseek.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if req.Temperature != nil {
		deepseekReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		deepseekReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		deepseekReq.TopP = *req.TopP
	}
	return deepseekReq
}

func convertResponse(resp *deepseek.ChatCompletionResponse) *llm.ChatResponse {
	choices := make([]llm.Choice, len(resp.Choices))
	for i, choice := range resp.Choices {
		choices[i] = llm.Choice{
			Index:        choice.Index,
			Message:      llm.NewAssistantMessage(choice.Message.Content),
			FinishReason: choice.FinishReason,
		}
	}

	return &llm.ChatResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Choices: choices,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}

// convertError maps DeepSeek errors by their message, the SDK does not
// expose a typed status error
func convertError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") || strings.Contains(msg, "authentication"):
		return llm.NewErrorFromStatus("deepseek", 401, err.Error())
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "429"):
		return llm.NewErrorFromStatus("deepseek", 429, err.Error())
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		return llm.NewErrorFromStatus("deepseek", 404, err.Error())
	case strings.Contains(msg, "insufficient balance") || strings.Contains(msg, "402"):
		return llm.NewErrorFromStatus("deepseek", 402, err.Error())
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused"):
		return llm.NewNetworkError("deepseek", err)
	case strings.Contains(msg, "503") || strings.Contains(msg, "500") || strings.Contains(msg, "server"):
		return llm.NewErrorFromStatus("deepseek", 503, err.Error())
	}

	return &llm.Error{
		Code:    "api_error",
		Message: err.Error(),
		Type:    llm.ErrorTypeAPI,
	}
}
