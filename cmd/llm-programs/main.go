// Command llm-programs runs the demonstration language model programs
// against a configurable backend.
//
//	llm-programs list
//	llm-programs run float-answer predict
//	llm-programs --provider openai --model gpt-4o-mini run --all
//	llm-programs --config llm-programs.yaml ping
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/inercia/go-llm-programs/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logging.New(logging.Options{}).Error("llm-programs failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "llm-programs",
		Usage: "run declarative language model programs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "configuration file (.yaml, .yml or .toml)",
				EnvVars: []string{"LLM_PROGRAMS_CONFIG"},
			},
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Usage: "provider name, or auto to detect from the environment"},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name"},
			&cli.StringFlag{Name: "base-url", Usage: "backend base URL"},
			&cli.DurationFlag{Name: "timeout", Usage: "request timeout"},
			&cli.StringFlag{Name: "cache", Usage: "response cache backend: off, memory or redis"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
			&cli.StringFlag{Name: "url", Usage: "page fetched as context by the retrieval examples"},
			&cli.Float64Flag{Name: "temperature", Usage: "sampling temperature sent with every request"},
			&cli.IntFlag{Name: "max-tokens", Usage: "completion token limit sent with every request"},
			&cli.IntFlag{Name: "max-iters", Usage: "iteration limit of the agent examples"},
			&cli.IntFlag{Name: "workers", Usage: "concurrency of the parallel example"},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run one or more examples in order",
				ArgsUsage: "<example>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "run every example"},
				},
				Action: runCommand,
			},
			{
				Name:   "list",
				Usage:  "list the available examples",
				Action: listCommand,
			},
			{
				Name:   "ping",
				Usage:  "check that the configured backend is reachable",
				Action: pingCommand,
			},
		},
	}
}
