package examples

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inercia/go-llm-programs/pkg/factory"
	"github.com/inercia/go-llm-programs/pkg/fetch"
	"github.com/inercia/go-llm-programs/pkg/llm"
)

// liveEnv connects to the backend selected by the environment, skipping the
// test unless LLM_INTEGRATION_TESTS is set and the backend answers a ping
func liveEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	if os.Getenv("LLM_INTEGRATION_TESTS") == "" {
		t.Skip("set LLM_INTEGRATION_TESTS=1 to run against a live backend")
	}

	client, err := factory.New().CreateClient(llm.GetLLMFromEnv())
	require.NoError(t, err, "Failed to create LLM client")
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := llm.Ping(ctx, client); err != nil && !errors.Is(err, llm.ErrPingUnsupported) {
		t.Skipf("backend not reachable: %v", err)
	}

	info := client.GetModelInfo()
	t.Logf("using %s provider with model %s", info.Provider, info.Name)

	var out bytes.Buffer
	return &Env{Client: client, Fetcher: fetch.Static(page), Out: &out}, &out
}

func TestIntegrationExamples(t *testing.T) {
	env, out := liveEnv(t)

	for _, name := range []string{"predict", "float-answer", "translate", "stacked"} {
		t.Run(name, func(t *testing.T) {
			ex, ok := Lookup(name)
			require.True(t, ok)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			require.NoError(t, ex.Run(ctx, env))
			t.Log(out.String())
			out.Reset()
		})
	}
}

func TestIntegrationCountLetter(t *testing.T) {
	env, _ := liveEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	count, err := RunCountLetter(ctx, env)
	require.NoError(t, err)
	t.Logf("strawberry has %d r's according to the model", count)
}
