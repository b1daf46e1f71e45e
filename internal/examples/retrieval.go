package examples

import (
	"context"
	"fmt"

	"github.com/inercia/go-llm-programs/pkg/program"
	"github.com/inercia/go-llm-programs/pkg/signature"
	"github.com/inercia/go-llm-programs/pkg/tools"
)

type pageText struct {
	Text string `json:"text"`
}

// ImageGenerationSettings are the values extracted from the API page
type ImageGenerationSettings struct {
	PageSize          int `json:"pageSize" desc:"number of images per page"`
	IntervalInMinutes int `json:"intervalInMinutes" desc:"interval in minutes"`
	TotalImages       int `json:"totalImages" desc:"total number of images to generate"`
}

func (e *Env) fetchContext(ctx context.Context) (string, error) {
	if e.Fetcher == nil {
		return "", fmt.Errorf("no fetcher configured")
	}
	return e.Fetcher.Fetch(ctx, e.contextURL())
}

// RunRag answers a question about the fetched page
func RunRag(ctx context.Context, env *Env) error {
	page, err := env.fetchContext(ctx)
	if err != nil {
		return err
	}

	rag := program.NewChainOfThought(env.program(), signature.MustParse("context, question -> response"))
	question := "What is the github repo of the Mj API?"
	pred, err := rag.Forward(ctx, program.Inputs{"context": []string{page}, "question": question})
	if err != nil {
		return err
	}
	env.printf("Question: %s\n", question)
	env.printf("Answer: %s\n", pred.String("response"))
	return nil
}

func extractSettings(ctx context.Context, env *Env) (ImageGenerationSettings, error) {
	page, err := env.fetchContext(ctx)
	if err != nil {
		return ImageGenerationSettings{}, err
	}
	extractor, err := program.NewTypedChainOfThought[pageText, ImageGenerationSettings](env.program(),
		"Extract structured information about image generation.")
	if err != nil {
		return ImageGenerationSettings{}, err
	}
	settings, _, err := extractor.Call(ctx, pageText{Text: page})
	return settings, err
}

// RunRagExtraction extracts integer settings from the fetched page
func RunRagExtraction(ctx context.Context, env *Env) error {
	settings, err := extractSettings(ctx, env)
	if err != nil {
		return err
	}
	env.printf("Page Size: %d\n", settings.PageSize)
	env.printf("Interval Minutes: %d\n", settings.IntervalInMinutes)
	env.printf("Total Images: %d\n", settings.TotalImages)
	return nil
}

// RunReActWithRag extracts the generation interval from the page and lets
// an agent convert it to seconds with the evaluate_math tool. It returns the
// agent's answer.
func RunReActWithRag(ctx context.Context, env *Env) (int, error) {
	react, err := program.NewReAct(env.program(), signature.MustParse("question -> answer: int"),
		[]tools.Tool{tools.NewEvaluateMathTool(env.Logger)}, env.maxIters(1))
	if err != nil {
		return 0, err
	}

	settings, err := extractSettings(ctx, env)
	if err != nil {
		return 0, err
	}

	pred, err := react.Forward(ctx, program.Inputs{
		"question": fmt.Sprintf("What is %d minutes in seconds?", settings.IntervalInMinutes),
	})
	if err != nil {
		return 0, err
	}
	seconds, err := pred.Int("answer")
	if err != nil {
		return 0, err
	}

	env.printf("Interval in minutes: %d\n", settings.IntervalInMinutes)
	env.printf("Interval in seconds: %d\n", seconds)
	return seconds, nil
}
