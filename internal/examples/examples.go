// Package examples contains the demonstration programs run by the
// llm-programs command. Each example builds its modules from the Env it is
// given and writes its results to Env.Out.
package examples

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/inercia/go-llm-programs/pkg/config"
	"github.com/inercia/go-llm-programs/pkg/fetch"
	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/logging"
	"github.com/inercia/go-llm-programs/pkg/program"
)

// Env is everything an example needs to run
type Env struct {
	Client  llm.Client
	Logger  logging.Logger
	Fetcher fetch.Fetcher
	Out     io.Writer
	// ContextURL is the page fetched by the retrieval examples.
	ContextURL string

	Temperature *float32
	MaxTokens   *int
	// MaxIters overrides the iteration limit of the agent examples when positive.
	MaxIters   int
	NumWorkers int
}

func (e *Env) program() program.Config {
	return program.Config{
		Client:      e.Client,
		Logger:      e.Logger,
		Temperature: e.Temperature,
		MaxTokens:   e.MaxTokens,
	}
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.out(), format, args...)
}

func (e *Env) contextURL() string {
	if e.ContextURL == "" {
		return config.DefaultContextURL
	}
	return e.ContextURL
}

func (e *Env) maxIters(def int) int {
	if e.MaxIters > 0 {
		return e.MaxIters
	}
	return def
}

// RunFunc runs one example
type RunFunc func(ctx context.Context, env *Env) error

// Example is a named, runnable demonstration
type Example struct {
	Name        string
	Description string
	Run         RunFunc
}

var registry = []Example{
	{"float-answer", "chain of thought with a float answer to a dice probability question", RunFloatAnswer},
	{"basic-answer", "chain of thought over a typed signature with factoid answers", RunBasicAnswer},
	{"rag", "answer a question about a fetched web page", RunRag},
	{"rag-extract", "extract integer settings from a fetched web page", RunRagExtraction},
	{"react-rag", "agent converting an extracted interval to seconds with a math tool", func(ctx context.Context, env *Env) error {
		_, err := RunReActWithRag(ctx, env)
		return err
	}},
	{"count-letter", "agent counting letters in a word with a counting tool", func(ctx context.Context, env *Env) error {
		_, err := RunCountLetter(ctx, env)
		return err
	}},
	{"summarize", "summarize a paragraph", RunSummarize},
	{"translate", "translate a sentence into Turkish", RunTranslate},
	{"predict", "single prediction without reasoning", RunPredict},
	{"multiple-choice", "three candidate answers reconciled by a comparison", RunMultipleChoice},
	{"parallel", "classify several texts concurrently", RunParallel},
	{"typed-cot", "chain of thought returning a list of structured records", RunTypedChainOfThought},
	{"stacked", "custom module chaining two reasoning calls", RunStacked},
}

// All returns the examples in their canonical order
func All() []Example {
	return append([]Example(nil), registry...)
}

// Names returns the example names, sorted
func Names() []string {
	names := make([]string, len(registry))
	for i, ex := range registry {
		names[i] = ex.Name
	}
	sort.Strings(names)
	return names
}

// Lookup finds an example by name
func Lookup(name string) (Example, bool) {
	for _, ex := range registry {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}
