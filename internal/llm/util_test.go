package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"name": "Jane"}`, `{"name": "Jane"}`},
		{"json fence", "```json\n{\"name\": \"Jane\"}\n```", `{"name": "Jane"}`},
		{"uppercase tag", "```JSON\n{\"name\": \"Jane\"}\n```", `{"name": "Jane"}`},
		{"generic fence", "```\n{\"name\": \"Jane\"}\n```", `{"name": "Jane"}`},
		{"fence on one line", "```{\"name\": \"Jane\"}```", `{"name": "Jane"}`},
		{
			name:  "prose around fence",
			input: "Here is the CV document:\n```json\n{\"sections\": {}}\n```\nLet me know if anything is missing!",
			want:  `{"sections": {}}`,
		},
		{
			name:  "preamble without fence",
			input: "Sure! Here's the structured resume:\n\n{\"sections\": {\"summary\": \"Go developer\"}}",
			want:  `{"sections": {"summary": "Go developer"}}`,
		},
		{
			name:  "trailing remark",
			input: "{\"sections\": {}}\n\nI left out the references section.",
			want:  `{"sections": {}}`,
		},
		{
			name:  "braces and quotes inside strings",
			input: `Result: {"summary": "Loves {curly} braces and \"quotes\""} done`,
			want:  `{"summary": "Loves {curly} braces and \"quotes\""}`,
		},
		{
			name:  "bracketed prose before the object",
			input: "Here is the resume [structured as requested]:\n{\"sections\": {\"summary\": \"Go developer\"}}",
			want:  `{"sections": {"summary": "Go developer"}}`,
		},
		{
			name:  "bracketed note inside a fence",
			input: "```json\n[note: trimmed]\n{\"sections\": {}}\n```",
			want:  `{"sections": {}}`,
		},
		{"array", "Sections:\n[\"summary\", \"skills\"]", `["summary", "skills"]`},
		{"refusal is returned trimmed", "  I'm sorry, I can't help with that.\n", "I'm sorry, I can't help with that."},
		{"truncated object is returned as is", `{"sections": {"summary": "Go`, `{"sections": {"summary": "Go`},
		{"blank", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		open, close byte
		want        string
	}{
		{"nested", `{"a": [1, {"b": 2}]} tail`, '{', '}', `{"a": [1, {"b": 2}]}`},
		{"escaped backslash before quote", `{"path": "C:\\"} tail`, '{', '}', `{"path": "C:\\"}`},
		{"array of objects", `[{"x": "]"}, {}] more`, '[', ']', `[{"x": "]"}, {}]`},
		{"not at start", ` {"a": 1}`, '{', '}', ""},
		{"unterminated", `{"a": {"b": 1}`, '{', '}', ""},
		{"empty", "", '{', '}', ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBalanced(tt.input, tt.open, tt.close))
		})
	}
}

func TestStripFence(t *testing.T) {
	// The opening ``` has already been consumed
	assert.Equal(t, `{"a": 1}`, stripFence("json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripFence("\n{\"a\": 1}\n```"))
	// A first line with JSON punctuation is content, not a language tag
	assert.Equal(t, "{\"a\":\n1}", stripFence("{\"a\":\n1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripFence(`{"a": 1}`))
}
