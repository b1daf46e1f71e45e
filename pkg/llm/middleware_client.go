package llm

import (
	"context"
	"fmt"
)

// EnhancedClient wraps an LLM client with a middleware chain
type EnhancedClient struct {
	Client
	chain *MiddlewareChain
}

// WithMiddleware wraps client so that every completion goes through the given middleware
func WithMiddleware(client Client, middlewares ...Middleware) *EnhancedClient {
	return &EnhancedClient{
		Client: client,
		chain:  NewMiddlewareChain(middlewares...),
	}
}

// Chain returns the middleware chain, which can be modified at runtime
func (e *EnhancedClient) Chain() *MiddlewareChain {
	return e.chain
}

// Unwrap returns the wrapped client
func (e *EnhancedClient) Unwrap() Client {
	return e.Client
}

// ChatCompletion implements Client interface with middleware processing
func (e *EnhancedClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	ctx, processedReq, err := e.chain.ProcessRequest(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("middleware request processing failed: %w", err)
	}

	resp, err := e.Client.ChatCompletion(ctx, *processedReq)

	return e.chain.ProcessResponse(ctx, processedReq, resp, err)
}

// Ping forwards health checks to the wrapped client
func (e *EnhancedClient) Ping(ctx context.Context) error {
	return Ping(ctx, e.Client)
}
