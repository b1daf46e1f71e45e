package openrouter

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/revrost/go-openrouter"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// DefaultModel is used when the config does not name one
const DefaultModel = "openai/gpt-4o-mini"

// contextLengths maps model id patterns to their context sizes. First match wins.
var contextLengths = []struct {
	pattern   *regexp.Regexp
	maxTokens int
}{
	{regexp.MustCompile(`^google/gemini`), 1000000},
	{regexp.MustCompile(`^anthropic/claude`), 200000},
	{regexp.MustCompile(`^openai/gpt-4o`), 128000},
	{regexp.MustCompile(`^(meta-llama|qwen|deepseek)/`), 128000},
}

// Client implements the llm.Client interface for OpenRouter
type Client struct {
	client *openrouter.Client
	model  string
}

// NewClient creates a new OpenRouter client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for OpenRouter",
			Type:    llm.ErrorTypeAuthentication,
		}
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	clientConfig := openrouter.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	if siteURL := config.Extra["site_url"]; siteURL != "" {
		clientConfig.HttpReferer = siteURL
	}
	if appName := config.Extra["app_name"]; appName != "" {
		clientConfig.XTitle = appName
	}

	return &Client{
		client: openrouter.NewClientWithConfig(*clientConfig),
		model:  config.Model,
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

// Ping lists the models available to the key
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return convertError(err)
	}
	return nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	maxTokens := 32768
	for _, l := range contextLengths {
		if l.pattern.MatchString(c.model) {
			maxTokens = l.maxTokens
			break
		}
	}
	return llm.ModelInfo{
		Name:      c.model,
		Provider:  "openrouter",
		MaxTokens: maxTokens,
	}
}

// Close closes the client
func (c *Client) Close() error {
	return nil
}

// convertRequest converts our request to the OpenRouter format. Upstream
// vendors differ in their structured output support, so JSON formats are
// requested through a system instruction.
func (c *Client) convertRequest(req llm.ChatRequest) openrouter.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	openrouterReq := openrouter.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openrouter.ChatCompletionMessage, 0, len(req.Messages)+1),
	}
	if req.Temperature != nil {
		openrouterReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		openrouterReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		openrouterReq.TopP = *req.TopP
	}

	for _, msg := range req.Messages {
		openrouterReq.Messages = append(openrouterReq.Messages, openrouter.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: openrouter.Content{Text: msg.Content},
		})
	}

	if req.ResponseFormat != nil && req.ResponseFormat.Type != llm.ResponseFormatText {
		instruction := "Respond only with a valid JSON object."
		if schema, err := req.ResponseFormat.SchemaJSON(); err == nil && schema != nil {
			instruction = "Respond only with JSON conforming to this schema:\n" + string(schema)
		}
		openrouterReq.Messages = append(openrouterReq.Messages, openrouter.ChatCompletionMessage{
			Role:    string(llm.RoleSystem),
			Content: openrouter.Content{Text: instruction},
		})
	}

	return openrouterReq
}

// convertResponse converts OpenRouter response to our format
func convertResponse(resp openrouter.ChatCompletionResponse) *llm.ChatResponse {
	response := &llm.ChatResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Choices: make([]llm.Choice, 0, len(resp.Choices)),
	}

	if resp.Usage != nil {
		response.Usage = llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	for _, choice := range resp.Choices {
		response.Choices = append(response.Choices, llm.Choice{
			Index:        choice.Index,
			FinishReason: string(choice.FinishReason),
			Message:      llm.NewAssistantMessage(choice.Message.Content.Text),
		})
	}

	return response
}

// convertError converts OpenRouter errors to our internal error format
func convertError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		return llm.NewErrorFromStatus("openrouter", apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openrouter.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewErrorFromStatus("openrouter", reqErr.HTTPStatusCode, reqErr.Error())
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout") {
		return llm.NewNetworkError("openrouter", err)
	}

	return &llm.Error{
		Code:    "openrouter_error",
		Message: err.Error(),
		Type:    llm.ErrorTypeAPI,
	}
}
