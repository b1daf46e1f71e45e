package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// safeIntToInt32 safely converts int to int32
func safeIntToInt32(val int) int32 {
	if val > 2147483647 {
		return 2147483647
	}
	if val < 0 {
		return 0
	}
	return int32(val)
}

// contextWindows maps Gemini model patterns to their context sizes.
// Models are matched in order, first match wins
var contextWindows = []struct {
	pattern   *regexp.Regexp
	maxTokens int
}{
	{regexp.MustCompile(`gemini-1\.5-pro`), 2000000},
	{regexp.MustCompile(`gemini-(1\.5|2\.0|2\.5)-flash`), 1000000},
	{regexp.MustCompile(`gemini-2\.5-pro`), 1000000},
}

// Client implements llm.Client for Gemini
type Client struct {
	model string
	genai *genai.Client
}

// NewClient creates a new Gemini client using the official Google Gen AI library.
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{Code: "missing_api_key", Message: "API key is required for Gemini", Type: llm.ErrorTypeAuthentication}
	}
	if config.Model == "" {
		config.Model = llm.DefaultGeminiModel
	}

	genaiConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.Timeout > 0 {
		genaiConfig.HTTPOptions.Timeout = &config.Timeout
	}
	if config.BaseURL != "" {
		genaiConfig.HTTPOptions.BaseURL = config.BaseURL
	}

	genaiClient, err := genai.NewClient(context.Background(), genaiConfig)
	if err != nil {
		return nil, &llm.Error{
			Code:    "client_creation_error",
			Message: fmt.Sprintf("failed to create genai client: %v", err),
			Type:    llm.ErrorTypeClient,
		}
	}

	return &Client{
		model: config.Model,
		genai: genaiClient,
	}, nil
}

// ChatCompletion performs a non-streaming content generation request.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	system, contents, err := convertMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, buildConfig(req, system))
	if err != nil {
		return nil, convertError(err)
	}

	return convertResponse(model, resp), nil
}

// Ping fetches the model metadata as a health check
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.genai.Models.Get(ctx, c.model, nil); err != nil {
		return convertError(err)
	}
	return nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	maxTokens := 30720
	for _, w := range contextWindows {
		if w.pattern.MatchString(c.model) {
			maxTokens = w.maxTokens
			break
		}
	}
	return llm.ModelInfo{
		Name:               c.model,
		Provider:           "gemini",
		MaxTokens:          maxTokens,
		SupportsJSONSchema: false,
	}
}

// Close is a no-op: the genai client holds no resources that need releasing
func (c *Client) Close() error {
	return nil
}

func buildConfig(req llm.ChatRequest, system string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.MaxTokens != nil {
		config.MaxOutputTokens = safeIntToInt32(*req.MaxTokens)
	}

	if req.ResponseFormat != nil && req.ResponseFormat.Type != llm.ResponseFormatText {
		config.ResponseMIMEType = "application/json"
		if schema, err := req.ResponseFormat.SchemaJSON(); err == nil && schema != nil {
			system = strings.TrimSpace(system + "\n\nRespond only with JSON conforming to this schema:\n" + string(schema))
		}
	}

	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(system)},
		}
	}
	return config
}

// convertMessages splits out the system prompt and converts the rest to genai contents
func convertMessages(messages []llm.Message) (string, []*genai.Content, error) {
	system, rest := llm.SplitSystem(messages)

	contents := make([]*genai.Content, 0, len(rest))
	for _, msg := range rest {
		role := genai.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	if len(contents) == 0 {
		return "", nil, &llm.Error{Code: "invalid_request", Message: "no user or assistant messages provided", Type: llm.ErrorTypeValidation, StatusCode: 400}
	}
	return system, contents, nil
}

// convertResponse converts genai response to our internal format
func convertResponse(model string, resp *genai.GenerateContentResponse) *llm.ChatResponse {
	out := &llm.ChatResponse{
		ID:      fmt.Sprintf("gemini-%s", time.Now().Format(time.RFC3339Nano)),
		Model:   model,
		Choices: []llm.Choice{},
	}
	if resp == nil {
		return out
	}

	if resp.UsageMetadata != nil {
		out.Usage = llm.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	for i, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		var text strings.Builder
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part != nil {
					text.WriteString(part.Text)
				}
			}
		}

		finishReason := llm.FinishReasonStop
		if candidate.FinishReason == genai.FinishReasonMaxTokens {
			finishReason = llm.FinishReasonLength
		} else if strings.Contains(string(candidate.FinishReason), "SAFETY") {
			finishReason = "content_filter"
		}

		out.Choices = append(out.Choices, llm.Choice{
			Index:        i,
			Message:      llm.NewAssistantMessage(text.String()),
			FinishReason: finishReason,
		})
	}

	return out
}

// convertError converts genai errors to our internal error format
func convertError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewErrorFromStatus("gemini", apiErr.Code, apiErr.Message)
	}

	return llm.NewNetworkError("gemini", err)
}
