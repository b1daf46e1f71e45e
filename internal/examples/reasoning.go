package examples

import (
	"context"

	"github.com/inercia/go-llm-programs/pkg/program"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

const summarySample = "DSPy is a framework that simplifies the process of constructing machine learning problems " +
	"that are based on chains of thought and require fewer steps because of its structure. " +
	"The incorporation of specialist tools into language models is another feature of this system. " +
	"The creation of applications, including those using artificial intelligence, can benefit greatly " +
	"from the utilization of this instrument. " +
	"It provides a declarative approach to building LLM applications through Python code rather than prompts. " +
	"The framework enables optimization of prompts and chains automatically while maintaining reproducibility. " +
	"Integration with external tools and retrieval systems is seamless, making it ideal for production deployments."

// RunFloatAnswer asks a probability question expecting a float
func RunFloatAnswer(ctx context.Context, env *Env) error {
	math := program.NewChainOfThought(env.program(), signature.MustParse("question -> answer: float"))
	pred, err := math.Forward(ctx, program.Inputs{
		"question": "Three dice are tossed. What is the probability that the sum equals 3?",
	})
	if err != nil {
		return err
	}
	answer, err := pred.Float("answer")
	if err != nil {
		return err
	}
	env.printf("Answer: %v\n", answer)
	return nil
}

type factoidQuestion struct {
	Question string `json:"question"`
}

type factoidAnswer struct {
	Answer string `json:"answer" desc:"often between 1 and 5 words"`
}

// RunBasicAnswer answers a factoid question and shows the reasoning
func RunBasicAnswer(ctx context.Context, env *Env) error {
	qa, err := program.NewTypedChainOfThought[factoidQuestion, factoidAnswer](env.program(),
		"Answer questions with short factoid answers.")
	if err != nil {
		return err
	}

	question := "Turkey is a country in which continent?"
	out, pred, err := qa.Call(ctx, factoidQuestion{Question: question})
	if err != nil {
		return err
	}
	env.printf("Question: %s\n", question)
	env.printf("Answer: %s\n", out.Answer)
	env.printf("Reasoning: %s\n", pred.Reasoning())
	return nil
}

// RunSummarize summarizes a paragraph
func RunSummarize(ctx context.Context, env *Env) error {
	summarize := program.NewChainOfThought(env.program(), signature.MustParse("text -> summary"))
	pred, err := summarize.Forward(ctx, program.Inputs{"text": summarySample})
	if err != nil {
		return err
	}
	env.printf("Original text: %s\n", summarySample)
	env.printf("Summary: %s\n", pred.String("summary"))
	return nil
}

// RunTranslate translates a sentence into Turkish
func RunTranslate(ctx context.Context, env *Env) error {
	translate := program.NewChainOfThought(env.program(), signature.MustParse("text, target_language -> translation"))

	text := "Hello, world! DSPy is a great tool for building AI applications."
	language := "Turkish"
	pred, err := translate.Forward(ctx, program.Inputs{"text": text, "target_language": language})
	if err != nil {
		return err
	}
	env.printf("Original text: %s\n", text)
	env.printf("Translation (%s): %s\n", language, pred.String("translation"))
	return nil
}

// RunPredict makes a single prediction without intermediate reasoning
func RunPredict(ctx context.Context, env *Env) error {
	predictor := program.NewPredict(env.program(), signature.MustParse("question -> answer"))

	question := "What is the capital of Germany?"
	pred, err := predictor.Forward(ctx, program.Inputs{"question": question})
	if err != nil {
		return err
	}
	env.printf("Question: %s\n", question)
	env.printf("Answer: %s\n", pred.String("answer"))
	return nil
}

// doubleChain first reasons about a question and then answers it in one
// word, given that reasoning
type doubleChain struct {
	think  *program.ChainOfThought
	answer *program.ChainOfThought
}

func newDoubleChain(cfg program.Config) *doubleChain {
	return &doubleChain{
		think:  program.NewChainOfThought(cfg, signature.MustParse("question -> step_by_step_thought")),
		answer: program.NewChainOfThought(cfg, signature.MustParse("question, thought -> one_word_answer")),
	}
}

func (d *doubleChain) Forward(ctx context.Context, inputs program.Inputs) (*program.Prediction, error) {
	first, err := d.think.Forward(ctx, inputs)
	if err != nil {
		return nil, err
	}
	thought := first.String("step_by_step_thought")

	second, err := d.answer.Forward(ctx, program.Inputs{"question": inputs["question"], "thought": thought})
	if err != nil {
		return nil, err
	}

	pred := program.NewPrediction([]string{"thought", "answer"}, map[string]any{
		"thought": thought,
		"answer":  second.String("one_word_answer"),
	})
	pred.Usage = first.Usage.Add(second.Usage)
	return pred, nil
}

// RunStacked chains two reasoning calls in a custom module
func RunStacked(ctx context.Context, env *Env) error {
	question := "What is the total years between the Roman Empire's founding and the fall of Rome?"

	var module program.Module = newDoubleChain(env.program())
	pred, err := module.Forward(ctx, program.Inputs{"question": question})
	if err != nil {
		return err
	}
	env.printf("\nQuestion: %s\n", question)
	env.printf("Thought Process: %s\n", pred.String("thought"))
	env.printf("Final Answer: %s\n", pred.String("answer"))
	return nil
}
