package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptTemplateRender(t *testing.T) {
	t.Parallel()

	pt, err := NewPromptTemplate(`Hello {{.Name}}, fields: {{join .Fields ", "}}; first is #{{add 0 1}} {{quote "x"}}`)
	require.NoError(t, err)

	out, err := pt.Render(map[string]any{"Name": "Ada", "Fields": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, fields: a, b; first is #1 `x`", out)
}

func TestPromptTemplateDoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	out, err := MustPromptTemplate(`{{.}}`).Render(`<b>"quoted" & more</b>`)
	require.NoError(t, err)
	assert.Equal(t, `<b>"quoted" & more</b>`, out)
}

func TestPromptTemplateErrors(t *testing.T) {
	t.Parallel()

	_, err := NewPromptTemplate("{{.Broken")
	assert.Error(t, err)

	assert.Panics(t, func() { MustPromptTemplate("{{") })

	_, err = PromptTemplate{}.Render(nil)
	assert.Error(t, err)
}
