package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/logging"
)

// Key returns the cache key of a request: the hex sha256 of its JSON encoding
func Key(req llm.ChatRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Client is an llm.Client answering repeated requests from a Store
type Client struct {
	llm.Client
	store  Store
	ttl    time.Duration
	logger logging.Logger
}

// Wrap returns client with a read-through cache in front of ChatCompletion.
// A nil store returns client unchanged.
func Wrap(client llm.Client, store Store, ttl time.Duration, logger logging.Logger) llm.Client {
	if store == nil {
		return client
	}
	return &Client{
		Client: client,
		store:  store,
		ttl:    ttl,
		logger: logging.OrNoOp(logger),
	}
}

// ChatCompletion implements llm.Client. Store failures are logged and the
// request goes to the backend.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.Client.GetModelInfo().Name
	}

	key, err := Key(req)
	if err != nil {
		c.logger.Warn("cannot compute cache key", "error", err)
		return c.Client.ChatCompletion(ctx, req)
	}

	raw, found, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("cache lookup failed", "key", key, "error", err)
	case found:
		var resp llm.ChatResponse
		if err := json.Unmarshal(raw, &resp); err == nil {
			c.logger.Debug("cache hit", "key", key)
			return &resp, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	resp, err := c.Client.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("cache store failed", "key", key, "error", err)
		}
	}
	return resp, nil
}

// Ping forwards to the wrapped client
func (c *Client) Ping(ctx context.Context) error {
	return llm.Ping(ctx, c.Client)
}

// Close closes the wrapped client. The store is owned by the caller.
func (c *Client) Close() error {
	return c.Client.Close()
}
