package factory

import (
	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/providers/anthropic"
	"github.com/inercia/go-llm-programs/pkg/providers/bedrock"
	"github.com/inercia/go-llm-programs/pkg/providers/deepseek"
	"github.com/inercia/go-llm-programs/pkg/providers/gemini"
	"github.com/inercia/go-llm-programs/pkg/providers/mock"
	"github.com/inercia/go-llm-programs/pkg/providers/ollama"
	"github.com/inercia/go-llm-programs/pkg/providers/openai"
	"github.com/inercia/go-llm-programs/pkg/providers/openrouter"
)

func init() {
	RegisterProvider("ollama", func(config llm.ClientConfig) (llm.Client, error) {
		return ollama.NewClient(config)
	})
	RegisterProvider("openai", func(config llm.ClientConfig) (llm.Client, error) {
		return openai.NewClient(config)
	})
	RegisterProvider("gemini", func(config llm.ClientConfig) (llm.Client, error) {
		return gemini.NewClient(config)
	})
	RegisterProvider("anthropic", func(config llm.ClientConfig) (llm.Client, error) {
		return anthropic.NewClient(config)
	})
	RegisterProvider("bedrock", func(config llm.ClientConfig) (llm.Client, error) {
		return bedrock.NewClient(config)
	})
	RegisterProvider("deepseek", func(config llm.ClientConfig) (llm.Client, error) {
		return deepseek.NewClient(config)
	})
	RegisterProvider("openrouter", func(config llm.ClientConfig) (llm.Client, error) {
		return openrouter.NewClient(config)
	})

	// The mock provider fills every requested output field with a
	// placeholder, for dry runs of the command line without a backend
	RegisterProvider("mock", func(config llm.ClientConfig) (llm.Client, error) {
		model := config.Model
		if model == "" {
			model = "mock-model"
		}
		client, err := mock.NewClient(model, "mock")
		if err != nil {
			return nil, err
		}
		return client.WithFieldResponder(nil), nil
	})
}
