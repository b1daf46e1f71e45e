package examples

import (
	"context"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/program"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

// Candidates is the number of completions compared by the multiple choice example
const Candidates = 3

var multipleChoice = must(signature.New("Answer multiple choice questions by comparing options.",
	[]signature.Field{{Name: "question"}, {Name: "options"}},
	[]signature.Field{
		{Name: "answer", Description: "The best answer choice (A, B, C, or D)"},
		{Name: "reasoning", Description: "Explanation for the answer"},
	}))

type option struct {
	Key   string
	Value string
}

func formatOptions(opts []option) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = o.Key + ": " + o.Value
	}
	return strings.Join(parts, ", ")
}

// RunMultipleChoice samples three answers and reconciles them
func RunMultipleChoice(ctx context.Context, env *Env) error {
	cfg := env.program()
	predictor := program.NewPredict(cfg, multipleChoice)
	solver := program.NewMultiChainComparison(cfg, multipleChoice, Candidates)

	question := "Which planet is known as the Red Planet?"
	options := []option{{"A", "Venus"}, {"B", "Mars"}, {"C", "Jupiter"}, {"D", "Saturn"}}
	inputs := program.Inputs{"question": question, "options": formatOptions(options)}

	completions, err := program.Repeat(ctx, predictor, inputs, Candidates)
	if err != nil {
		return err
	}
	pred, err := solver.Compare(ctx, completions, inputs)
	if err != nil {
		return err
	}

	env.printf("Question: %s\n", question)
	env.printf("Options: %s\n", formatOptions(options))
	env.printf("Selected Answer: %s\n", pred.String("answer"))
	env.printf("Reasoning: %s\n", pred.String(program.RationaleField))
	return nil
}

var newsTexts = []string{
	"The stock market saw significant gains today",
	"Scientists discover new species in Amazon rainforest",
	"New smartphone model released with advanced features",
}

// RunParallel classifies the news texts concurrently and prints them in order
func RunParallel(ctx context.Context, env *Env) error {
	predictor := program.NewPredict(env.program(), signature.MustParse("text -> category"))

	jobs := make([]program.Job, len(newsTexts))
	for i, text := range newsTexts {
		jobs[i] = program.Job{Module: predictor, Inputs: program.Inputs{"text": text}}
	}

	runner := program.Parallel{NumWorkers: env.NumWorkers, Logger: env.Logger}
	results, err := runner.Run(ctx, jobs)
	if err != nil {
		return err
	}
	for i, text := range newsTexts {
		env.printf("\nText: %s\n", text)
		env.printf("Category: %s\n", results[i].String("category"))
	}
	return nil
}
