package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-llm-programs/pkg/config"
)

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ua":
			_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
		case "/":
			_, _ = w.Write([]byte("Mj API docs: github.com/akgns/mj-api"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := config.Default().Fetch
	cfg.MaxBytes = 32
	f := NewHTTPFetcher(cfg, nil)

	text, err := f.Fetch(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "Mj API docs: github.com/akgns/mj-api", text)

	ua, err := f.Fetch(context.Background(), server.URL+"/ua")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, ua)

	_, err = f.Fetch(context.Background(), server.URL+"/missing")
	assert.ErrorContains(t, err, "unexpected status 404")

	_, err = f.Fetch(context.Background(), server.URL+"/big")
	assert.ErrorContains(t, err, "exceeds 32 bytes")

	cfg.Timeout = 20 * time.Millisecond
	cfg.UserAgent = "tester"
	_, err = NewHTTPFetcher(cfg, nil).Fetch(context.Background(), server.URL+"/slow")
	assert.Error(t, err)
}

func TestHTTPFetcherCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPFetcher(config.FetchConfig{}, nil).Fetch(ctx, "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic(t *testing.T) {
	t.Parallel()

	text, err := Static("fixed").Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "fixed", text)
}
