// Configuration types and response format specifications
package llm

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOllamaModel = "llama3.2:3b"
)

const DefaultOllamaBaseURL = "http://localhost:11434"

const (
	DefaultOllamaTimeout = 60 * time.Second
	DefaultCloudTimeout  = 30 * time.Second
)

// ClientConfig holds configuration for creating LLM clients
type ClientConfig struct {
	Provider string            `json:"provider" yaml:"provider" toml:"provider"` // ollama, openai, gemini, anthropic, etc.
	Model    string            `json:"model" yaml:"model" toml:"model"`
	APIKey   string            `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key"`
	BaseURL  string            `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url"`
	Timeout  time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout"`
	Extra    map[string]string `json:"extra,omitempty" yaml:"extra,omitempty" toml:"extra"` // Provider-specific configs
}

// DefaultClientConfig returns the configuration of a local Ollama server
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Provider: "ollama",
		Model:    DefaultOllamaModel,
		BaseURL:  DefaultOllamaBaseURL,
		Timeout:  DefaultOllamaTimeout,
	}
}

// ResponseFormat specifies the desired response format for structured outputs
type ResponseFormat struct {
	Type       ResponseFormatType `json:"type"`
	JSONSchema *JSONSchema        `json:"json_schema,omitempty"`
}

// ResponseFormatType defines the type of response format
type ResponseFormatType string

const (
	// ResponseFormatText indicates plain text response (default)
	ResponseFormatText ResponseFormatType = "text"
	// ResponseFormatJSON indicates JSON object response without strict schema
	ResponseFormatJSON ResponseFormatType = "json_object"
	// ResponseFormatJSONSchema indicates JSON response with strict schema validation
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// JSONSchema represents a JSON Schema specification for structured outputs
type JSONSchema struct {
	Name        string      `json:"name,omitempty"`        // Schema name (required by some providers)
	Description string      `json:"description,omitempty"` // Human-readable description
	Schema      interface{} `json:"schema"`                // The actual JSON Schema object
	Strict      *bool       `json:"strict,omitempty"`      // Enable strict validation (OpenAI-specific)
}

// parseTimeoutFromEnv parses timeout from environment variable with fallback to default
func parseTimeoutFromEnv(envVar string, defaultTimeout time.Duration) time.Duration {
	if timeoutStr := os.Getenv(envVar); timeoutStr != "" {
		if timeoutSecs, err := strconv.Atoi(timeoutStr); err == nil && timeoutSecs > 0 {
			return time.Duration(timeoutSecs) * time.Second
		}
	}
	return defaultTimeout
}

// GetLLMFromEnv picks a backend from well-known environment variables.
//
// Priority: a custom OpenAI-compatible endpoint (OPENAI_BASE_URL), then OpenAI,
// Gemini, Anthropic and DeepSeek API keys, and finally a local Ollama server.
func GetLLMFromEnv() ClientConfig {
	// Priority 1: Custom OpenAI-compatible endpoint
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			apiKey = "dummy" // Some endpoints don't require real keys
		}

		model := DefaultOpenAIModel
		if customModel := os.Getenv("OPENAI_MODEL"); customModel != "" {
			model = customModel
		} else if customModel := os.Getenv("MODEL"); customModel != "" {
			model = customModel
		}

		return ClientConfig{
			Provider: "openai",
			Model:    model,
			APIKey:   apiKey,
			BaseURL:  baseURL,
			Timeout:  parseTimeoutFromEnv("OPENAI_TIMEOUT", DefaultCloudTimeout),
		}
	}

	// Priority 2: OpenAI API
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		return ClientConfig{
			Provider: "openai",
			Model:    DefaultOpenAIModel,
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("OPENAI_TIMEOUT", DefaultCloudTimeout),
		}
	}

	// Priority 3: Gemini API
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		model := DefaultGeminiModel
		if customModel := os.Getenv("GEMINI_MODEL"); customModel != "" {
			model = customModel
		}

		return ClientConfig{
			Provider: "gemini",
			Model:    model,
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("GEMINI_TIMEOUT", DefaultCloudTimeout),
		}
	}

	// Priority 4: Anthropic API
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		model := "claude-3-5-haiku-latest"
		if customModel := os.Getenv("ANTHROPIC_MODEL"); customModel != "" {
			model = customModel
		}

		return ClientConfig{
			Provider: "anthropic",
			Model:    model,
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("ANTHROPIC_TIMEOUT", DefaultCloudTimeout),
		}
	}

	// Priority 5: DeepSeek API
	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" {
		return ClientConfig{
			Provider: "deepseek",
			Model:    "deepseek-chat",
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("DEEPSEEK_TIMEOUT", DefaultCloudTimeout),
		}
	}

	// Default: Ollama (local, free)
	config := DefaultClientConfig()
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		config.Model = model
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		config.BaseURL = host
	}
	config.Timeout = parseTimeoutFromEnv("OLLAMA_TIMEOUT", DefaultOllamaTimeout)
	return config
}
