package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// DefaultRegion is used when no region is given in the client config
const DefaultRegion = "us-east-1"

// DefaultModel is used when no model is given in the client config
const DefaultModel = "anthropic.claude-3-haiku-20240307-v1:0"

// Client implements the llm.Client interface for AWS Bedrock
type Client struct {
	bedrockClient        *bedrock.Client
	bedrockRuntimeClient *bedrockruntime.Client
	model                string
	region               string
}

// NewClient creates a new AWS Bedrock client
func NewClient(config llm.ClientConfig) (*Client, error) {
	region := DefaultRegion
	if r := config.Extra["region"]; r != "" {
		region = r
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, &llm.Error{
			Code:    "aws_config_error",
			Message: fmt.Sprintf("failed to load AWS configuration: %v", err),
			Type:    llm.ErrorTypeAuthentication,
		}
	}

	bedrockClient := bedrock.NewFromConfig(awsConfig, func(o *bedrock.Options) {
		if endpoint := config.Extra["bedrock_endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	bedrockRuntimeClient := bedrockruntime.NewFromConfig(awsConfig, func(o *bedrockruntime.Options) {
		if endpoint := config.Extra["bedrock_runtime_endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if config.BaseURL != "" {
			o.BaseEndpoint = aws.String(config.BaseURL)
		}
	})

	return &Client{
		bedrockClient:        bedrockClient,
		bedrockRuntimeClient: bedrockRuntimeClient,
		model:                config.Model,
		region:               region,
	}, nil
}

// ChatCompletion performs a chat completion request through the Converse API
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	input, err := c.buildInput(req)
	if err != nil {
		return nil, err
	}

	output, err := c.bedrockRuntimeClient.Converse(ctx, input)
	if err != nil {
		return nil, convertError(err)
	}

	return convertOutput(aws.ToString(input.ModelId), output), nil
}

// Ping lists the foundation models visible to the configured credentials
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.bedrockClient.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{}); err != nil {
		return convertError(err)
	}
	return nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:               c.model,
		Provider:           "bedrock",
		MaxTokens:          getMaxTokensForModel(c.model),
		SupportsJSONSchema: false,
	}
}

// Close closes the client
func (c *Client) Close() error {
	return nil
}

func (c *Client) buildInput(req llm.ChatRequest) (*bedrockruntime.ConverseInput, error) {
	system, rest := llm.SplitSystem(req.Messages)

	if req.ResponseFormat != nil && req.ResponseFormat.Type != llm.ResponseFormatText {
		instruction := "Respond only with a valid JSON object."
		if schema, err := req.ResponseFormat.SchemaJSON(); err == nil && schema != nil {
			instruction = "Respond only with JSON conforming to this schema:\n" + string(schema)
		}
		system = strings.TrimSpace(system + "\n\n" + instruction)
	}

	messages := make([]types.Message, 0, len(rest))
	for _, msg := range rest {
		role := types.ConversationRoleUser
		if msg.Role == llm.RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		messages = append(messages, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: msg.Content}},
		})
	}
	if len(messages) == 0 {
		return nil, &llm.Error{Code: "invalid_request", Message: "no user or assistant messages provided", Type: llm.ErrorTypeValidation, StatusCode: 400}
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(model),
		Messages: messages,
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: req.Temperature,
			TopP:        req.TopP,
		},
	}
	if req.MaxTokens != nil {
		input.InferenceConfig.MaxTokens = aws.Int32(int32(min(*req.MaxTokens, 1<<31-1)))
	}
	if system != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: system}}
	}
	return input, nil
}

func convertOutput(model string, output *bedrockruntime.ConverseOutput) *llm.ChatResponse {
	resp := &llm.ChatResponse{
		ID:      fmt.Sprintf("bedrock-%d", time.Now().UnixNano()),
		Model:   model,
		Choices: []llm.Choice{},
	}
	if output == nil {
		return resp
	}

	if output.Usage != nil {
		resp.Usage = llm.Usage{
			PromptTokens:     int(aws.ToInt32(output.Usage.InputTokens)),
			CompletionTokens: int(aws.ToInt32(output.Usage.OutputTokens)),
			TotalTokens:      int(aws.ToInt32(output.Usage.TotalTokens)),
		}
	}

	msg, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return resp
	}

	var text strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}

	finishReason := llm.FinishReasonStop
	if output.StopReason == types.StopReasonMaxTokens {
		finishReason = llm.FinishReasonLength
	}

	resp.Choices = append(resp.Choices, llm.Choice{
		Message:      llm.NewAssistantMessage(text.String()),
		FinishReason: finishReason,
	})
	return resp
}

// getMaxTokensForModel returns the context size for the given model id
func getMaxTokensForModel(model string) int {
	switch {
	case strings.Contains(model, "claude-3"):
		return 200000
	case strings.Contains(model, "claude-v2"):
		return 100000
	case strings.Contains(model, "llama3"):
		return 128000
	case strings.Contains(model, "mistral"):
		return 32000
	case strings.Contains(model, "titan"):
		return 8000
	}
	return 4000
}

// convertError converts AWS SDK errors to our internal error format
func convertError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return llm.NewNetworkError("bedrock", err)
	}

	status := 0
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		status = withStatus.HTTPStatusCode()
	}

	switch apiErr.ErrorCode() {
	case "ThrottlingException", "TooManyRequestsException", "ServiceQuotaExceededException":
		status = 429
	case "AccessDeniedException", "UnrecognizedClientException":
		status = 403
	case "ResourceNotFoundException":
		status = 404
	case "ValidationException":
		status = 400
	}
	if status == 0 {
		status = 500
	}

	return llm.NewErrorFromStatus("bedrock", status, fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage()))
}
