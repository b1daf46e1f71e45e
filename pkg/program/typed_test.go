package program

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-llm-programs/pkg/providers/mock"
)

type questionInput struct {
	Question string `json:"question"`
}

type factoidOutput struct {
	Answer string `json:"answer" desc:"often between 1 and 5 words"`
}

type character struct {
	Name     string `json:"name"`
	ClanName string `json:"clanName"`
}

type charactersOutput struct {
	Characters []character `json:"characters"`
}

type statsOutput struct {
	PageSize int `json:"pageSize"`
	Interval int `json:"intervalInMinutes"`
}

func TestTypedChainOfThought(t *testing.T) {
	t.Parallel()

	client := mock.New().AddTextResponse(
		"[[ ## reasoning ## ]]\nTurkey spans Anatolia and Thrace.\n\n[[ ## answer ## ]]\nAsia and Europe\n\n[[ ## completed ## ]]")
	typed, err := NewTypedChainOfThought[questionInput, factoidOutput](Config{Client: client}, "Answer questions with short factoid answers.")
	require.NoError(t, err)

	out, pred, err := typed.Call(context.Background(), questionInput{Question: "Turkey is a country in which continent?"})
	require.NoError(t, err)
	assert.Equal(t, "Asia and Europe", out.Answer)
	assert.Equal(t, "Turkey spans Anatolia and Thrace.", pred.Reasoning())

	call := client.GetLastCall()
	assert.Contains(t, call.Messages[0].Content, "`answer` (str): often between 1 and 5 words")
	assert.Contains(t, call.Messages[0].Content, "Answer questions with short factoid answers.")
	assert.Contains(t, mock.LastUserMessage(*call), "Turkey is a country in which continent?")
}

func TestTypedPredictStructuredOutputs(t *testing.T) {
	t.Parallel()

	client := mock.New().AddTextResponse(
		"[[ ## characters ## ]]\n[{\"name\": \"Naruto Uzumaki\", \"clanName\": \"Uzumaki\"}, {\"name\": \"Sasuke Uchiha\", \"clanName\": \"Uchiha\"}]\n\n[[ ## completed ## ]]")
	typed, err := NewTypedPredict[questionInput, charactersOutput](Config{Client: client}, "")
	require.NoError(t, err)
	assert.Equal(t, "list[character]", typed.Signature().Outputs[0].TypeName())

	out, _, err := typed.Call(context.Background(), questionInput{Question: "List the main characters."})
	require.NoError(t, err)
	assert.Equal(t, []character{
		{Name: "Naruto Uzumaki", ClanName: "Uzumaki"},
		{Name: "Sasuke Uchiha", ClanName: "Uchiha"},
	}, out.Characters)
	assert.Contains(t, client.GetLastCall().Messages[0].Content, "must adhere to the JSON schema")
}

func TestTypedPredictIntegers(t *testing.T) {
	t.Parallel()

	client := mock.New().AddTextResponse("[[ ## pageSize ## ]]\n50\n\n[[ ## intervalInMinutes ## ]]\n5.\n\n[[ ## completed ## ]]")
	typed, err := NewTypedPredict[questionInput, statsOutput](Config{Client: client}, "")
	require.NoError(t, err)

	out, _, err := typed.Call(context.Background(), questionInput{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, statsOutput{PageSize: 50, Interval: 5}, out)
}
