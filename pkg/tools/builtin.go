package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr"

	"github.com/inercia/go-llm-programs/pkg/logging"
)

// CountLetter counts the case-insensitive occurrences of letter in word.
// It returns 0 when word or letter is empty, or when letter is not exactly one character.
func CountLetter(word, letter string) int {
	if word == "" || letter == "" || utf8.RuneCountInString(letter) != 1 {
		return 0
	}
	return strings.Count(strings.ToLower(word), strings.ToLower(letter))
}

// EvaluateMath evaluates an arithmetic expression such as "5 * 60"
func EvaluateMath(expression string) (any, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	result, err := expr.Eval(expression, nil)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expression, err)
	}
	return result, nil
}

// CountLetterArgs are the arguments of the count_letter tool
type CountLetterArgs struct {
	Word   string `json:"word" required:"true" description:"the word to search in"`
	Letter string `json:"letter" required:"true" description:"single letter to count"`
}

// NewCountLetterTool returns the count_letter tool
func NewCountLetterTool() Tool {
	return NewFunc("count_letter", "Counts occurrences of a letter in a word",
		func(_ context.Context, args CountLetterArgs) (int, error) {
			return CountLetter(args.Word, args.Letter), nil
		})
}

// EvaluateMathArgs are the arguments of the evaluate_math tool
type EvaluateMathArgs struct {
	Expression string `json:"expression" required:"true" description:"arithmetic expression, e.g. 5 * 60"`
}

// NewEvaluateMathTool returns the evaluate_math tool. Every evaluated
// expression is logged at info level.
func NewEvaluateMathTool(logger logging.Logger) Tool {
	logger = logging.OrNoOp(logger)
	return NewFunc("evaluate_math", "Evaluates a mathematical expression and returns the result",
		func(_ context.Context, args EvaluateMathArgs) (any, error) {
			logger.Info("evaluating math expression", "expression", args.Expression)
			return EvaluateMath(args.Expression)
		}).WithLogger(logger)
}
