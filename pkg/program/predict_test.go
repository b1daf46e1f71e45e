package program

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/providers/mock"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

func TestPredictForward(t *testing.T) {
	t.Parallel()

	client := mock.New().AddTextResponse("[[ ## answer ## ]]\nBerlin\n\n[[ ## completed ## ]]")
	temp := float32(0.2)
	p := NewPredict(Config{Client: client, Temperature: &temp}, signature.MustParse("question -> answer"))

	pred, err := p.Forward(context.Background(), Inputs{"question": "What is the capital of Germany?"})
	require.NoError(t, err)
	assert.Equal(t, "Berlin", pred.String("answer"))
	assert.NotEmpty(t, pred.ID)
	assert.Equal(t, []string{"answer"}, pred.Keys)
	assert.Positive(t, pred.Usage.TotalTokens)

	require.Equal(t, 1, client.CallCount())
	call := client.GetLastCall()
	assert.Equal(t, "mock-model", call.Model)
	require.NotNil(t, call.Temperature)
	assert.Equal(t, temp, *call.Temperature)
	assert.Nil(t, call.ResponseFormat)
	assert.Contains(t, mock.LastUserMessage(*call), "What is the capital of Germany?")
}

func TestPredictValidation(t *testing.T) {
	t.Parallel()

	sig := signature.MustParse("question -> answer")

	_, err := NewPredict(Config{}, sig).Forward(context.Background(), Inputs{"question": "q"})
	assert.ErrorIs(t, err, ErrNoClient)

	client := mock.New()
	_, err = NewPredict(Config{Client: client}, sig).Forward(context.Background(), Inputs{"query": "q"})
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Zero(t, client.CallCount())
}

func TestPredictFallsBackToJSON(t *testing.T) {
	t.Parallel()

	client := mock.New().AddTextResponse("Berlin", `{"answer": "Berlin"}`)
	p := NewPredict(Config{Client: client}, signature.MustParse("question -> answer"))

	pred, err := p.Forward(context.Background(), Inputs{"question": "q"})
	require.NoError(t, err)
	assert.Equal(t, "Berlin", pred.String("answer"))

	calls := client.GetCallLog()
	require.Len(t, calls, 2)
	assert.Nil(t, calls[0].ResponseFormat)
	require.NotNil(t, calls[1].ResponseFormat)
	assert.Equal(t, llm.ResponseFormatJSONSchema, calls[1].ResponseFormat.Type)
	assert.Equal(t, 23, pred.Usage.TotalTokens, "usage of both attempts is summed")
}

func TestPredictParseFailure(t *testing.T) {
	t.Parallel()

	client := mock.New().AddTextResponse("no idea", "still no idea")
	p := NewPredict(Config{Client: client}, signature.MustParse("question -> answer: int"))

	_, err := p.Forward(context.Background(), Inputs{"question": "q"})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "json", perr.Adapter)
	assert.Equal(t, "still no idea", perr.Raw)
	assert.Equal(t, 2, client.CallCount())
}

func TestPredictExplicitJSONAdapterDoesNotRetry(t *testing.T) {
	t.Parallel()

	client := mock.New().AddTextResponse("not json")
	p := NewPredict(Config{Client: client, Adapter: JSONAdapter{}}, signature.MustParse("question -> answer"))

	_, err := p.Forward(context.Background(), Inputs{"question": "q"})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, client.CallCount())
}

func TestPredictClientError(t *testing.T) {
	t.Parallel()

	client := mock.New().WithError("rate_limit", "slow down", llm.ErrorTypeRateLimit)
	p := NewPredict(Config{Client: client}, signature.MustParse("question -> answer"))

	_, err := p.Forward(context.Background(), Inputs{"question": "q"})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "rate_limit", llmErr.Code)
}

func TestChainOfThought(t *testing.T) {
	t.Parallel()

	client := mock.New().AddTextResponse(
		`[[ ## reasoning ## ]]
There are 216 outcomes and 108 have an even sum.

[[ ## answer ## ]]
0.5

[[ ## completed ## ]]`)
	cot := NewChainOfThought(Config{Client: client}, signature.MustParse("question -> answer: float"))

	sig := cot.Signature()
	require.Len(t, sig.Outputs, 2)
	assert.Equal(t, ReasoningField, sig.Outputs[0].Name)
	assert.Equal(t, "Let's think step by step in order to", sig.Outputs[0].Prefix)

	pred, err := cot.Forward(context.Background(), Inputs{"question": "dice?"})
	require.NoError(t, err)
	answer, err := pred.Float("answer")
	require.NoError(t, err)
	assert.Equal(t, 0.5, answer)
	assert.Equal(t, "There are 216 outcomes and 108 have an even sum.", pred.Reasoning())
	assert.Equal(t, []string{"reasoning", "answer"}, pred.Keys)
}
