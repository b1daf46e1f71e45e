package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "json in code block",
			response: "Here is the data:\n```json\n{\"key\": \"value\"}\n```",
			want:     `{"key": "value"}`,
		},
		{
			name:     "json in code block with extra whitespace",
			response: "```json\n   {\"name\": \"John\", \"age\": 30}   \n```",
			want:     `{"name": "John", "age": 30}`,
		},
		{
			name:     "uppercase language tag",
			response: "```JSON\n{\"a\": 1}\n```",
			want:     `{"a": 1}`,
		},
		{
			name:     "json without code block",
			response: "The result is {\"status\": \"success\", \"count\": 5}",
			want:     `{"status": "success", "count": 5}`,
		},
		{
			name:     "json object at beginning",
			response: `{"error": false, "data": {"items": []}} and some other text`,
			want:     `{"error": false, "data": {"items": []}}`,
		},
		{
			name:     "json array",
			response: "Items: [{\"id\": 1}, {\"id\": 2}]",
			want:     "[{\"id\": 1}, {\"id\": 2}]",
		},
		{
			name:     "braces inside strings",
			response: `prefix {"text": "a } tricky { value"} suffix`,
			want:     `{"text": "a } tricky { value"}`,
		},
		{
			name:     "trailing comma is cleaned",
			response: "```json\n{\n\"a\": 1,\n}\n```",
			want:     "{\n\"a\": 1\n}",
		},
		{
			name:     "ansi colour codes",
			response: "\x1b[92m{\"ok\": true}\x1b[0m",
			want:     `{"ok": true}`,
		},
		{
			name:     "no json content",
			response: "just words",
			want:     "just words",
		},
		{
			name:     "empty string",
			response: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONFromResponse(tt.response))
		})
	}
}

func TestExtractJSONToStruct(t *testing.T) {
	t.Parallel()

	type person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	var p person
	require.NoError(t, ExtractJSONToStruct("Sure!\n```json\n{\"name\": \"Ada\", \"age\": 36}\n```", &p))
	assert.Equal(t, person{Name: "Ada", Age: 36}, p)

	assert.Error(t, ExtractJSONToStruct("no json here", &p))
}

func TestRemoveBlocks(t *testing.T) {
	t.Parallel()

	text := "<think>\nlet me see\n</think>Answer: 42 <think>more</think>"
	assert.Equal(t, "Answer: 42 ", RemoveBlocks(text, "think"))
	assert.Equal(t, "untouched", RemoveBlocks("untouched", "think"))
}
