package factory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-llm-programs/pkg/config"
	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/providers/mock"
)

func TestFactory(t *testing.T) {
	t.Parallel()

	t.Run("missing model", func(t *testing.T) {
		t.Parallel()

		_, err := New().CreateClient(llm.ClientConfig{Provider: "openai"})
		var llmErr *llm.Error
		require.ErrorAs(t, err, &llmErr)
		assert.Equal(t, "missing_model", llmErr.Code)
		assert.Equal(t, llm.ErrorTypeValidation, llmErr.Type)
	})

	t.Run("unsupported provider", func(t *testing.T) {
		t.Parallel()

		_, err := New().CreateClient(llm.ClientConfig{Provider: "unsupported", Model: "some-model"})
		var llmErr *llm.Error
		require.ErrorAs(t, err, &llmErr)
		assert.Equal(t, "unsupported_provider", llmErr.Code)
		assert.Contains(t, llmErr.Message, "ollama")
	})

	t.Run("provider names are case insensitive", func(t *testing.T) {
		t.Parallel()

		client, err := New().CreateClient(llm.ClientConfig{Provider: "Mock", Model: "m"})
		require.NoError(t, err)
		assert.Equal(t, "mock", client.GetModelInfo().Provider)
	})

	t.Run("empty provider defaults to ollama", func(t *testing.T) {
		t.Parallel()

		client, err := New().CreateClient(llm.ClientConfig{Model: "llama3.2:3b"})
		require.NoError(t, err)
		assert.Equal(t, "ollama", client.GetModelInfo().Provider)
	})
}

func TestAutoProvider(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("OLLAMA_MODEL", "qwen3:4b")

	client, err := New().CreateClient(llm.ClientConfig{Provider: AutoProvider})
	require.NoError(t, err)

	info := client.GetModelInfo()
	assert.Equal(t, "ollama", info.Provider)
	assert.Equal(t, "qwen3:4b", info.Name)
}

func TestListProvidersSorted(t *testing.T) {
	t.Parallel()

	names := ListProviders()
	assert.True(t, sort.StringsAreSorted(names))
	for _, want := range []string{"anthropic", "bedrock", "deepseek", "gemini", "mock", "ollama", "openai", "openrouter"} {
		assert.Contains(t, names, want)
	}
}

func TestBootstrapConstructsOnce(t *testing.T) {
	var constructed atomic.Int32
	backend := mock.New().WithSimpleResponse("hello")
	RegisterProvider("counting", func(cfg llm.ClientConfig) (llm.Client, error) {
		constructed.Add(1)
		return backend, nil
	})

	cfg := config.Default()
	cfg.LLM.Provider = "counting"
	boot := NewBootstrap(cfg, nil)

	var wg sync.WaitGroup
	clients := make([]llm.Client, 8)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := boot.Client(context.Background())
			assert.NoError(t, err)
			clients[i] = client
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), constructed.Load())
	for _, c := range clients[1:] {
		assert.Same(t, clients[0], c)
	}

	resp, err := clients[0].ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text())

	usage, calls, failures := boot.Usage()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, failures)
	assert.Positive(t, usage.TotalTokens)

	require.NoError(t, boot.Close())
	assert.True(t, backend.Closed())
}

func TestBootstrapErrorIsSticky(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.LLM.Provider = "does-not-exist"
	boot := NewBootstrap(cfg, nil)

	_, err1 := boot.Client(context.Background())
	_, err2 := boot.Client(context.Background())
	require.Error(t, err1)
	assert.Same(t, err1, err2)
	assert.NoError(t, boot.Close())
}

func TestBootstrapWithCache(t *testing.T) {
	backend := mock.New().WithSimpleResponse("cached")
	RegisterProvider("cache-test", func(cfg llm.ClientConfig) (llm.Client, error) {
		return backend, nil
	})

	cfg := config.Default()
	cfg.LLM.Provider = "cache-test"
	cfg.Cache.Backend = config.CacheMemory
	boot := NewBootstrap(cfg, nil)
	defer func() { _ = boot.Close() }()

	client, err := boot.Client(context.Background())
	require.NoError(t, err)

	req := llm.ChatRequest{Messages: []llm.Message{llm.NewUserMessage("same question")}}
	for i := 0; i < 3; i++ {
		resp, err := client.ChatCompletion(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "cached", resp.Text())
	}
	assert.Equal(t, 1, backend.CallCount())
}

func TestBootstrapInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Cache.Backend = "memcached"

	_, err := NewBootstrap(cfg, nil).Client(context.Background())
	assert.ErrorContains(t, err, "memcached")
}

func TestBootstrapPingWithRetries(t *testing.T) {
	t.Parallel()

	for _, retries := range []int{0, 3} {
		t.Run(fmt.Sprintf("retries=%d", retries), func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			cfg.LLM.BaseURL = "http://127.0.0.1:1"
			cfg.Retry.MaxRetries = retries
			boot := NewBootstrap(cfg, nil)
			defer func() { _ = boot.Close() }()

			client, err := boot.Client(context.Background())
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = llm.Ping(ctx, client)
			require.Error(t, err)
			assert.NotErrorIs(t, err, llm.ErrPingUnsupported)
		})
	}
}

func TestBootstrapClose(t *testing.T) {
	t.Parallel()

	t.Run("client after close", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.LLM.Provider = "mock"
		boot := NewBootstrap(cfg, nil)

		_, err := boot.Client(context.Background())
		require.NoError(t, err)
		require.NoError(t, boot.Close())
		require.NoError(t, boot.Close())

		_, err = boot.Client(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("close before first use", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.LLM.Provider = "mock"
		boot := NewBootstrap(cfg, nil)
		require.NoError(t, boot.Close())

		_, err := boot.Client(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("concurrent with client", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.LLM.Provider = "mock"
		boot := NewBootstrap(cfg, nil)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				client, err := boot.Client(context.Background())
				if err != nil {
					assert.ErrorIs(t, err, ErrClosed)
					return
				}
				assert.NotNil(t, client)
			}()
			go func() {
				defer wg.Done()
				assert.NoError(t, boot.Close())
			}()
		}
		wg.Wait()

		_, err := boot.Client(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
	})
}
