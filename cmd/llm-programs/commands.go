package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/inercia/go-llm-programs/internal/examples"
	"github.com/inercia/go-llm-programs/pkg/config"
	"github.com/inercia/go-llm-programs/pkg/factory"
	"github.com/inercia/go-llm-programs/pkg/fetch"
	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/logging"
)

// loadConfig layers defaults, the config file, the environment and flags
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if c.IsSet("provider") {
		cfg.LLM.Provider = strings.ToLower(c.String("provider"))
	}
	if c.IsSet("model") {
		cfg.LLM.Model = c.String("model")
	}
	if c.IsSet("base-url") {
		cfg.LLM.BaseURL = c.String("base-url")
	}
	if c.IsSet("timeout") {
		cfg.LLM.Timeout = c.Duration("timeout")
	}
	if c.IsSet("cache") {
		cfg.Cache.Backend = strings.ToLower(c.String("cache"))
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if c.IsSet("url") {
		cfg.Fetch.URL = c.String("url")
	}
	if c.IsSet("temperature") {
		t := float32(c.Float64("temperature"))
		cfg.Program.Temperature = &t
	}
	if c.IsSet("max-tokens") {
		cfg.Program.MaxTokens = c.Int("max-tokens")
	}
	if c.IsSet("max-iters") {
		cfg.Program.MaxIters = c.Int("max-iters")
	}
	if c.IsSet("workers") {
		cfg.Program.NumWorkers = c.Int("workers")
	}
	cfg.ResolveAPIKey()

	return cfg, cfg.Validate()
}

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{Level: level, Format: format}), nil
}

func setup(c *cli.Context) (*config.Config, logging.Logger, *factory.Bootstrap, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, factory.NewBootstrap(cfg, logger), nil
}

// selectExamples resolves the requested names, keeping their order
func selectExamples(c *cli.Context) ([]examples.Example, error) {
	if c.Bool("all") {
		return examples.All(), nil
	}
	names := c.Args().Slice()
	if len(names) == 0 {
		return nil, fmt.Errorf("no example given, valid examples: %s", strings.Join(examples.Names(), ", "))
	}

	selected := make([]examples.Example, 0, len(names))
	for _, name := range names {
		ex, ok := examples.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown example %q, valid examples: %s", name, strings.Join(examples.Names(), ", "))
		}
		selected = append(selected, ex)
	}
	return selected, nil
}

func runCommand(c *cli.Context) error {
	selected, err := selectExamples(c)
	if err != nil {
		return err
	}
	cfg, logger, boot, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = boot.Close() }()

	client, err := boot.Client(c.Context)
	if err != nil {
		return err
	}

	env := &examples.Env{
		Client:      client,
		Logger:      logger,
		Fetcher:     fetch.NewHTTPFetcher(cfg.Fetch, logger.With("component", "fetch")),
		Out:         c.App.Writer,
		ContextURL:  cfg.Fetch.URL,
		Temperature: cfg.Program.Temperature,
		MaxIters:    cfg.Program.MaxIters,
		NumWorkers:  cfg.Program.NumWorkers,
	}
	if cfg.Program.MaxTokens > 0 {
		n := cfg.Program.MaxTokens
		env.MaxTokens = &n
	}

	start := time.Now()
	for _, ex := range selected {
		logger.Debug("running example", "example", ex.Name)
		if err := ex.Run(c.Context, env); err != nil {
			return fmt.Errorf("example %s: %w", ex.Name, err)
		}
	}
	elapsed := time.Since(start)

	usage, requests, failed := boot.Usage()
	fmt.Fprintf(c.App.Writer, "\nTotal time taken: %.2fms\n", float64(elapsed.Microseconds())/1000)
	fmt.Fprintf(c.App.Writer, "Token usage: %d prompt, %d completion, %d total (%d requests, %d failed)\n",
		usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, requests, failed)
	return nil
}

func listCommand(c *cli.Context) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	for _, ex := range examples.All() {
		fmt.Fprintf(w, "%s\t%s\n", ex.Name, ex.Description)
	}
	return w.Flush()
}

func pingCommand(c *cli.Context) error {
	_, _, boot, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = boot.Close() }()

	client, err := boot.Client(c.Context)
	if err != nil {
		return err
	}
	info := client.GetModelInfo()
	err = llm.Ping(c.Context, client)
	switch {
	case errors.Is(err, llm.ErrPingUnsupported):
		fmt.Fprintf(c.App.Writer, "%s backend has no health check, skipped (model %s)\n", info.Provider, info.Name)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s backend is reachable (model %s)\n", info.Provider, info.Name)
	return nil
}
