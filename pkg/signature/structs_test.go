package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type character struct {
	Name     string `json:"name"`
	ClanName string `json:"clanName" desc:"The name of the clan the character belongs to"`
}

type friendsQuery struct {
	Question string `json:"question"`
}

type friendsAnswer struct {
	Friends []character `json:"friends" desc:"List of Naruto's friends with their names and clans"`
	Count   int         `json:"count,omitempty"`
	Score   float64     `json:"score"`
	Sure    bool        `json:"sure"`
	Tags    map[string]string
	ignored string
	Skipped string `json:"-"`
}

func TestFromStructs(t *testing.T) {
	t.Parallel()

	sig, err := FromStructs(friendsQuery{}, &friendsAnswer{}, "Return the friends.")
	require.NoError(t, err)

	assert.Equal(t, "Return the friends.", sig.Instructions)
	assert.Equal(t, []string{"question"}, sig.InputNames())
	assert.Equal(t, []string{"friends", "count", "score", "sure", "Tags"}, sig.OutputNames())

	friends := sig.Outputs[0]
	assert.Equal(t, TypeList, friends.Type)
	assert.Equal(t, "list[character]", friends.TypeName())
	assert.Equal(t, "List of Naruto's friends with their names and clans", friends.Description)
	require.NotNil(t, friends.Schema)
	assert.Contains(t, friends.Schema, "items")

	assert.Equal(t, TypeInt, sig.Outputs[1].Type)
	assert.Equal(t, TypeFloat, sig.Outputs[2].Type)
	assert.Equal(t, TypeBool, sig.Outputs[3].Type)
	assert.Equal(t, TypeDict, sig.Outputs[4].Type)
	assert.Equal(t, "dict[str, str]", sig.Outputs[4].Annotation)
}

func TestFromStructsDefaultsInstructions(t *testing.T) {
	t.Parallel()

	type in struct {
		Text string `json:"text"`
	}
	type out struct {
		Summary string `json:"summary"`
	}

	sig, err := FromStructs(in{}, out{}, "")
	require.NoError(t, err)
	assert.Equal(t, "Given the fields `text`, produce the fields `summary`.", sig.Instructions)
}

func TestFromStructsRejectsNonStructs(t *testing.T) {
	t.Parallel()

	_, err := FromStructs("question", friendsAnswer{}, "")
	assert.Error(t, err)

	type noOutputs struct{}
	_, err = FromStructs(friendsQuery{}, noOutputs{}, "")
	assert.Error(t, err)

	type badOutput struct {
		Ch chan int `json:"ch"`
	}
	_, err = FromStructs(friendsQuery{}, badOutput{}, "")
	assert.ErrorContains(t, err, "unsupported type")
}
