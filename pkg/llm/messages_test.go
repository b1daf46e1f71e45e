package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSystem(t *testing.T) {
	t.Parallel()

	system, rest := SplitSystem([]Message{
		NewSystemMessage("You are terse."),
		NewUserMessage("hi"),
		NewSystemMessage("Answer in JSON."),
		NewAssistantMessage("hello"),
	})
	assert.Equal(t, "You are terse.\n\nAnswer in JSON.", system)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}, rest)

	system, rest = SplitSystem([]Message{NewUserMessage("only")})
	assert.Empty(t, system)
	assert.Len(t, rest, 1)
}

func TestChatResponseHelpers(t *testing.T) {
	t.Parallel()

	var nilResp *ChatResponse
	assert.Empty(t, nilResp.Text())
	assert.False(t, nilResp.Truncated())

	resp := &ChatResponse{Choices: []Choice{{
		Message:      NewAssistantMessage("partial"),
		FinishReason: "LENGTH",
	}}}
	assert.Equal(t, "partial", resp.Text())
	assert.True(t, resp.Truncated())

	total := Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}.Add(Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30})
	assert.Equal(t, Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33}, total)
}
