package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	sig, err := Parse("context, question -> response")
	require.NoError(t, err)
	assert.Equal(t, []string{"context", "question"}, sig.InputNames())
	assert.Equal(t, []string{"response"}, sig.OutputNames())
	assert.Equal(t, TypeString, sig.Outputs[0].Type)
	assert.Equal(t, "Given the fields `context`, `question`, produce the fields `response`.", sig.Instructions)

	sig, err = Parse("question -> answer: float")
	require.NoError(t, err)
	assert.Equal(t, TypeFloat, sig.Outputs[0].Type)

	sig, err = Parse("items: list[str], scores: dict[str, int] -> best: int, ok: bool")
	require.NoError(t, err)
	require.Len(t, sig.Inputs, 2)
	assert.Equal(t, TypeList, sig.Inputs[0].Type)
	assert.Equal(t, "list[str]", sig.Inputs[0].TypeName())
	assert.Equal(t, TypeDict, sig.Inputs[1].Type)
	assert.Equal(t, "dict[str, int]", sig.Inputs[1].Annotation)
	assert.Equal(t, TypeBool, sig.Outputs[1].Type)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shorthand string
		want      string
	}{
		{"question answer", "exactly one"},
		{"a -> b -> c", "exactly one"},
		{"question -> ", "no output"},
		{"question, -> answer", "empty field name"},
		{"1question -> answer", "invalid field name"},
		{"question -> question", "duplicate"},
		{"a, a -> b", "duplicate"},
		{"question -> answer: decimal", "unknown type"},
		{"question -> answer: list[]", "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.shorthand, func(t *testing.T) {
			_, err := Parse(tt.shorthand)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	assert.Panics(t, func() { MustParse("nope") })
}

func TestString(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"context, question -> response",
		"question -> answer: float",
		"text, target_language -> translation",
		"items: list[str] -> counts: dict[str, int]",
	} {
		assert.Equal(t, s, MustParse(s).String())
	}
}

func TestDerivationsCopy(t *testing.T) {
	t.Parallel()

	base := MustParse("question -> answer")
	cot := base.PrependOutput(Field{Name: "reasoning", Prefix: "Let's think step by step in order to"})
	withCtx := base.AppendInput(Field{Name: "trajectory"})
	renamed := base.WithInstructions("Be brief.")

	assert.Equal(t, []string{"reasoning", "answer"}, cot.OutputNames())
	assert.Equal(t, TypeString, cot.Outputs[0].Type)
	assert.Equal(t, "Let's think step by step in order to", cot.Outputs[0].Desc())
	assert.Equal(t, []string{"question", "trajectory"}, withCtx.InputNames())
	assert.Equal(t, "Be brief.", renamed.Instructions)

	// the original is untouched
	assert.Equal(t, []string{"answer"}, base.OutputNames())
	assert.Equal(t, []string{"question"}, base.InputNames())
	assert.NotEqual(t, "Be brief.", base.Instructions)
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	_, err := New("", []Field{{Name: "q"}}, nil)
	assert.Error(t, err)

	_, err = New("", []Field{{Name: "q", Type: "decimal"}}, []Field{{Name: "a"}})
	assert.ErrorContains(t, err, "unknown type")

	sig, err := New("Answer.", []Field{{Name: "q"}}, []Field{{Name: "a", Type: TypeInt}})
	require.NoError(t, err)
	assert.Equal(t, "Answer.", sig.Instructions)
	assert.Equal(t, TypeString, sig.Inputs[0].Type)

	field, ok := sig.Output("a")
	require.True(t, ok)
	assert.Equal(t, TypeInt, field.Type)
	_, ok = sig.Input("a")
	assert.False(t, ok)
}
