// Client interfaces
package llm

import (
	"context"
	"errors"
)

// ErrPingUnsupported is returned by Ping for clients that cannot check their backend
var ErrPingUnsupported = errors.New("health check not supported")

// Client defines the core interface that all LLM clients must implement
type Client interface {
	// ChatCompletion performs a chat completion request
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// GetModelInfo returns information about the model being used
	GetModelInfo() ModelInfo

	// Close cleans up any resources used by the client
	Close() error
}

// Pinger is implemented by clients that can check whether their backend is reachable
// without running a completion.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the backend of the client. Clients that do not implement
// Pinger return ErrPingUnsupported.
func Ping(ctx context.Context, client Client) error {
	if p, ok := client.(Pinger); ok {
		return p.Ping(ctx)
	}
	return ErrPingUnsupported
}
