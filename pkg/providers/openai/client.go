package openai

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/sashabaranov/go-openai"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// ModelAttribute represents a model attribute with its pattern and value
type ModelAttribute[T any] struct {
	Pattern *regexp.Regexp
	Value   T
}

var (
	// contextLength maps model patterns to their context windows
	contextLength = []ModelAttribute[int]{
		{regexp.MustCompile(`^gpt-4\.1`), 1047576},
		{regexp.MustCompile(`^gpt-4o`), 128000},
		{regexp.MustCompile(`^gpt-4-turbo`), 128000},
		{regexp.MustCompile(`^o[134]`), 200000},
		{regexp.MustCompile(`^gpt-4(-0613)?$`), 8192},
		{regexp.MustCompile(`^gpt-3\.5-turbo`), 16384},
		{regexp.MustCompile(`.*`), 4096},
	}

	// schemaSupport lists the models accepting json_schema response formats
	schemaSupport = []ModelAttribute[bool]{
		{regexp.MustCompile(`^(gpt-4o|gpt-4\.1|o[134])`), true},
		{regexp.MustCompile(`.*`), false},
	}
)

// getModelAttribute returns the attribute value for a given model by matching against patterns
func getModelAttribute[T any](model string, attributes []ModelAttribute[T]) T {
	for _, attr := range attributes {
		if attr.Pattern.MatchString(model) {
			return attr.Value
		}
	}
	var zero T
	return zero
}

// Client implements the llm.Client interface for OpenAI
type Client struct {
	client *openai.Client
	model  string
	custom bool
}

// NewClient creates a new OpenAI client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for OpenAI",
			Type:    llm.ErrorTypeAuthentication,
		}
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
		custom: config.BaseURL != "",
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.convertRequest(req))
	if err != nil {
		return nil, convertError(err)
	}
	return convertResponse(resp), nil
}

// Ping lists the available models as a lightweight health check
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return convertError(err)
	}
	return nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:      c.model,
		Provider:  "openai",
		MaxTokens: getModelAttribute(c.model, contextLength),
		// OpenAI-compatible servers generally accept json_schema
		SupportsJSONSchema: c.custom || getModelAttribute(c.model, schemaSupport),
	}
}

// Close cleans up resources
func (c *Client) Close() error {
	return nil
}

func (c *Client) convertRequest(req llm.ChatRequest) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if req.Temperature != nil {
		openaiReq.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		openaiReq.TopP = *req.TopP
	}
	if req.MaxTokens != nil {
		openaiReq.MaxTokens = *req.MaxTokens
	}
	openaiReq.ResponseFormat = convertResponseFormat(req.ResponseFormat)

	return openaiReq
}

func convertResponseFormat(format *llm.ResponseFormat) *openai.ChatCompletionResponseFormat {
	if format == nil {
		return nil
	}

	switch format.Type {
	case llm.ResponseFormatJSON:
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	case llm.ResponseFormatJSONSchema:
		schema, err := format.SchemaJSON()
		if err != nil || schema == nil {
			return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
		}
		strict := format.JSONSchema.Strict != nil && *format.JSONSchema.Strict
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        format.JSONSchema.Name,
				Description: format.JSONSchema.Description,
				Schema:      schema,
				Strict:      strict,
			},
		}
	}
	return nil
}

func convertResponse(resp openai.ChatCompletionResponse) *llm.ChatResponse {
	choices := make([]llm.Choice, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		choices = append(choices, llm.Choice{
			Index:        choice.Index,
			Message:      llm.NewAssistantMessage(choice.Message.Content),
			FinishReason: string(choice.FinishReason),
		})
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

// convertError converts OpenAI error to our format
func convertError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		llmErr := llm.NewErrorFromStatus("openai", apiErr.HTTPStatusCode, apiErr.Message)
		if code, ok := apiErr.Code.(string); ok && code != "" {
			llmErr.Code = code
		}
		return llmErr
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewErrorFromStatus("openai", reqErr.HTTPStatusCode, reqErr.Error())
	}

	return llm.NewNetworkError("openai", err)
}
