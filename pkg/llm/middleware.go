package llm

import (
	"context"
	"fmt"
	"sync"
)

// Middleware defines the interface for LLM middleware components
type Middleware interface {
	// Name returns the middleware name for identification
	Name() string

	// ProcessRequest processes the request before sending to LLM. The returned
	// context is passed to the rest of the chain and to ProcessResponse.
	ProcessRequest(ctx context.Context, req *ChatRequest) (context.Context, *ChatRequest, error)

	// ProcessResponse processes the response (or error) after receiving from LLM
	ProcessResponse(ctx context.Context, req *ChatRequest, resp *ChatResponse, err error) (*ChatResponse, error)
}

// MiddlewareChain manages a chain of LLM middleware
type MiddlewareChain struct {
	mu          sync.RWMutex
	middlewares []Middleware
}

// NewMiddlewareChain creates a new middleware chain
func NewMiddlewareChain(middlewares ...Middleware) *MiddlewareChain {
	chain := &MiddlewareChain{}
	for _, middleware := range middlewares {
		chain.AddMiddleware(middleware)
	}
	return chain
}

// AddMiddleware adds a middleware to the end of the chain
func (c *MiddlewareChain) AddMiddleware(middleware Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, middleware)
}

// RemoveMiddleware removes a middleware by name
func (c *MiddlewareChain) RemoveMiddleware(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, middleware := range c.middlewares {
		if middleware.Name() == name {
			c.middlewares = append(c.middlewares[:i], c.middlewares[i+1:]...)
			return true
		}
	}
	return false
}

func (c *MiddlewareChain) snapshot() []Middleware {
	c.mu.RLock()
	defer c.mu.RUnlock()
	middlewares := make([]Middleware, len(c.middlewares))
	copy(middlewares, c.middlewares)
	return middlewares
}

// ProcessRequest processes request through the middleware chain
func (c *MiddlewareChain) ProcessRequest(ctx context.Context, req *ChatRequest) (context.Context, *ChatRequest, error) {
	currentReq := req
	var err error

	for _, middleware := range c.snapshot() {
		ctx, currentReq, err = middleware.ProcessRequest(ctx, currentReq)
		if err != nil {
			return ctx, nil, fmt.Errorf("middleware %s failed: %w", middleware.Name(), err)
		}
	}

	return ctx, currentReq, nil
}

// ProcessResponse processes response through the middleware chain (in reverse order).
// A middleware may replace the response or the error; failures of the
// middleware itself do not stop the chain.
func (c *MiddlewareChain) ProcessResponse(ctx context.Context, req *ChatRequest, resp *ChatResponse, err error) (*ChatResponse, error) {
	middlewares := c.snapshot()

	currentResp := resp
	currentErr := err
	for i := len(middlewares) - 1; i >= 0; i-- {
		currentResp, currentErr = middlewares[i].ProcessResponse(ctx, req, currentResp, currentErr)
	}

	return currentResp, currentErr
}

// GetMiddlewareNames returns the names of all middleware in the chain
func (c *MiddlewareChain) GetMiddlewareNames() []string {
	middlewares := c.snapshot()
	names := make([]string, len(middlewares))
	for i, middleware := range middlewares {
		names[i] = middleware.Name()
	}
	return names
}
