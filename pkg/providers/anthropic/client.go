package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// DefaultModel is used when the config does not name one
const DefaultModel = "claude-3-5-haiku-latest"

// defaultMaxTokens is sent when the request has no limit, the API requires one
const defaultMaxTokens = 4096

// Client implements llm.Client for Anthropic
type Client struct {
	client anthropic.Client
	model  string
}

// NewClient creates a new Anthropic client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for Anthropic",
			Type:    llm.ErrorTypeAuthentication,
		}
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// retries are configured on our side, see llm.WithRetry
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: config.Timeout}))
	}

	return &Client{
		client: anthropic.NewClient(opts...),
		model:  config.Model,
	}, nil
}

// ChatCompletion sends the conversation to the Messages API
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, convertError(err)
	}

	return convertMessage(msg), nil
}

// Ping lists the models visible to the API key
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return convertError(err)
	}
	return nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:      c.model,
		Provider:  "anthropic",
		MaxTokens: 200000,
	}
}

// Close closes the client
func (c *Client) Close() error {
	return nil
}

func (c *Client) buildParams(req llm.ChatRequest) (anthropic.MessageNewParams, error) {
	system, rest := llm.SplitSystem(req.Messages)

	if req.ResponseFormat != nil && req.ResponseFormat.Type != llm.ResponseFormatText {
		instruction := "Respond only with a valid JSON object."
		if schema, err := req.ResponseFormat.SchemaJSON(); err == nil && schema != nil {
			instruction = "Respond only with JSON conforming to this schema:\n" + string(schema)
		}
		system = strings.TrimSpace(system + "\n\n" + instruction)
	}

	messages := make([]anthropic.MessageParam, 0, len(rest))
	for _, msg := range rest {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == llm.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	if len(messages) == 0 {
		return anthropic.MessageNewParams{}, &llm.Error{Code: "invalid_request", Message: "no user or assistant messages provided", Type: llm.ErrorTypeValidation, StatusCode: 400}
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: defaultMaxTokens,
		Messages:  messages,
	}
	if req.MaxTokens != nil {
		params.MaxTokens = int64(*req.MaxTokens)
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*req.Temperature))
	}
	if req.TopP != nil {
		params.TopP = anthropic.Float(float64(*req.TopP))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params, nil
}

func convertMessage(msg *anthropic.Message) *llm.ChatResponse {
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	finishReason := llm.FinishReasonStop
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		finishReason = llm.FinishReasonLength
	}

	return &llm.ChatResponse{
		ID:    msg.ID,
		Model: string(msg.Model),
		Choices: []llm.Choice{{
			Message:      llm.NewAssistantMessage(text.String()),
			FinishReason: finishReason,
		}},
		Usage: llm.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
}

func convertError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return llm.NewErrorFromStatus("anthropic", apiErr.StatusCode, apiErr.Error())
	}
	return llm.NewNetworkError("anthropic", err)
}
