// Package openai implements llm.Client for OpenAI and OpenAI-compatible
// endpoints (vLLM, LM Studio, llama.cpp server, LiteLLM...) using
// github.com/sashabaranov/go-openai.
//
// JSON schema response formats are passed through natively.
package openai
