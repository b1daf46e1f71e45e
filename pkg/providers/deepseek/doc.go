// Package deepseek provides an LLM client for DeepSeek models.
//
// Usage:
//
//	client, err := deepseek.NewClient(llm.ClientConfig{
//	    Provider: "deepseek",
//	    APIKey:   "your-api-key",
//	    Model:    "deepseek-chat",
//	})
package deepseek
