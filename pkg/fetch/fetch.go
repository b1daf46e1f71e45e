// Package fetch retrieves the external text used as context by
// retrieval-augmented programs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inercia/go-llm-programs/pkg/config"
	"github.com/inercia/go-llm-programs/pkg/logging"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "go-llm-programs/1.0"

// Fetcher returns the body of a document as text
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches documents over HTTP
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    logging.Logger
}

// NewHTTPFetcher creates a fetcher from cfg. A zero timeout disables the
// deadline and a zero MaxBytes disables the size limit.
func NewHTTPFetcher(cfg config.FetchConfig, logger logging.Logger) *HTTPFetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: ua,
		maxBytes:  cfg.MaxBytes,
		logger:    logging.OrNoOp(logger),
	}
}

// Fetch implements Fetcher. Responses outside the 2xx range are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("fetch %s: reading body: %w", url, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return "", fmt.Errorf("fetch %s: body exceeds %d bytes", url, f.maxBytes)
	}

	f.logger.Debug("fetched context", "url", url, "bytes", len(data), "duration", time.Since(start))
	return string(data), nil
}

// Static is a Fetcher returning fixed text for every URL
type Static string

// Fetch implements Fetcher
func (s Static) Fetch(context.Context, string) (string, error) {
	return string(s), nil
}
