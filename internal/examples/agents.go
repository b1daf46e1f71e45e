package examples

import (
	"context"

	"github.com/inercia/go-llm-programs/pkg/program"
	"github.com/inercia/go-llm-programs/pkg/signature"
	"github.com/inercia/go-llm-programs/pkg/tools"
)

var letterCounter = must(signature.New("Count occurrences of a letter in a word.",
	[]signature.Field{
		{Name: "word", Description: "the word to search in"},
		{Name: "letter", Description: "single letter to count"},
	},
	[]signature.Field{
		{Name: "answer", Type: signature.TypeInt, Description: "number of occurrences of the letter in the word"},
	}))

// RunCountLetter lets an agent count the r's in strawberry with the
// count_letter tool and returns its answer
func RunCountLetter(ctx context.Context, env *Env) (int, error) {
	react, err := program.NewReAct(env.program(), letterCounter,
		[]tools.Tool{tools.NewCountLetterTool()}, env.maxIters(1))
	if err != nil {
		return 0, err
	}

	word, letter := "strawberry", "r"
	pred, err := react.Forward(ctx, program.Inputs{"word": word, "letter": letter})
	if err != nil {
		return 0, err
	}
	count, err := pred.Int("answer")
	if err != nil {
		return 0, err
	}

	env.printf("Word: %s\n", word)
	env.printf("Letter '%s' count: %d\n", letter, count)
	return count, nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
