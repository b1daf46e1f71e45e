package factory

import (
	"context"
	"errors"
	"sync"

	"github.com/inercia/go-llm-programs/pkg/cache"
	"github.com/inercia/go-llm-programs/pkg/config"
	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/logging"
)

// ErrClosed is returned by Client once the bootstrap has been closed
var ErrClosed = errors.New("bootstrap closed")

// Bootstrap builds the process-wide language model client once, on first use.
// Client and Close are safe for concurrent use.
//
// The backend client is wrapped, innermost first, with retries (when
// enabled), logging and usage middleware, and the response cache (when
// enabled). Construction never contacts the backend: an unreachable server
// surfaces as a network error on the first request.
type Bootstrap struct {
	cfg     *config.Config
	logger  logging.Logger
	factory *Factory
	usage   *llm.UsageTracker

	once   sync.Once
	mu     sync.Mutex
	client llm.Client
	store  cache.Store
	err    error
	closed bool
}

// NewBootstrap prepares a bootstrap for cfg. Nothing is constructed until Client is called.
func NewBootstrap(cfg *config.Config, logger logging.Logger) *Bootstrap {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Bootstrap{
		cfg:     cfg,
		logger:  logging.OrNoOp(logger),
		factory: New(),
		usage:   llm.NewUsageTracker(),
	}
}

// Client returns the shared client, constructing it on the first call.
// Later calls return the same client, or the same error.
func (b *Bootstrap) Client(ctx context.Context) (llm.Client, error) {
	b.once.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			b.err = ErrClosed
			return
		}
		b.client, b.store, b.err = b.build(ctx)
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed && b.err == nil {
		return nil, ErrClosed
	}
	return b.client, b.err
}

func (b *Bootstrap) build(ctx context.Context) (llm.Client, cache.Store, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, nil, err
	}

	client, err := b.factory.CreateClient(b.cfg.LLM)
	if err != nil {
		return nil, nil, err
	}

	info := client.GetModelInfo()
	b.logger.Info("language model configured",
		"provider", info.Provider,
		"model", info.Name,
		"base_url", b.cfg.LLM.BaseURL)

	if b.cfg.Retry.Enabled() {
		client = llm.WithRetry(client, b.cfg.Retry)
	}

	client = llm.WithMiddleware(client,
		llm.NewLoggingMiddleware(b.logger.With("component", "llm")),
		b.usage,
	)

	store, err := cache.NewStore(ctx, b.cfg.Cache)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if store != nil {
		b.logger.Info("response cache enabled", "backend", b.cfg.Cache.Backend, "ttl", b.cfg.Cache.TTL)
		client = cache.Wrap(client, store, b.cfg.Cache.TTL, b.logger.With("component", "cache"))
	}

	return client, store, nil
}

// Usage returns the token usage accumulated by the client, the number of
// requests and the number of failed requests
func (b *Bootstrap) Usage() (llm.Usage, int, int) {
	return b.usage.Totals()
}

// Close releases the client and the cache store, if they were constructed.
// Closing twice is a no-op.
func (b *Bootstrap) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if b.client != nil {
		errs = append(errs, b.client.Close())
	}
	if b.store != nil {
		errs = append(errs, b.store.Close())
	}
	return errors.Join(errs...)
}
