package factory

import (
	"fmt"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// DefaultProvider is used when the configuration names no provider
const DefaultProvider = "ollama"

// AutoProvider selects the provider from well-known environment variables,
// see llm.GetLLMFromEnv
const AutoProvider = "auto"

// Factory creates LLM clients based on configuration
type Factory struct{}

// New creates a new client factory
func New() *Factory {
	return &Factory{}
}

// CreateClient creates an LLM client based on the configuration
func (f *Factory) CreateClient(config llm.ClientConfig) (llm.Client, error) {
	provider := strings.ToLower(config.Provider)
	if provider == "" {
		provider = DefaultProvider
	}

	if provider == AutoProvider {
		config = llm.GetLLMFromEnv()
		provider = config.Provider
	}

	if config.Model == "" {
		return nil, &llm.Error{
			Code:    "missing_model",
			Message: "model is required",
			Type:    llm.ErrorTypeValidation,
		}
	}

	constructor, exists := GetProvider(provider)
	if !exists {
		return nil, &llm.Error{
			Code:    "unsupported_provider",
			Message: fmt.Sprintf("unsupported provider: %s (available: %s)", provider, strings.Join(ListProviders(), ", ")),
			Type:    llm.ErrorTypeValidation,
		}
	}

	config.Provider = provider
	return constructor(config)
}
