// Package anthropic implements llm.Client for Anthropic's Messages API
// using the official anthropic-sdk-go.
//
// System messages are hoisted into the request's system blocks, as the
// Messages API only accepts user and assistant turns.
package anthropic
