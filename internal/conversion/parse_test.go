package conversion

import (
	"testing"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const janeJSON = `{
	"sections": {
		"header": {"name": "Jane Doe", "contact_info": {"email": {"value": "jane@x.com", "link": "mailto:jane@x.com"}}},
		"summary": "Backend engineer & mentor.",
		"experience": {"section_title": "Experience", "items": [
			{"title": "Engineer", "company": "Acme", "dates": {"start": "Jan 2020", "is_current": true}}
		]},
		"hobbies_and_stuff": {"items": ["chess"]}
	},
	"metadata": {"section_order": ["experience", "summary"]}
}`

func TestParseCVDocument(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain JSON", janeJSON},
		{"json fence", "```json\n" + janeJSON + "\n```"},
		{"generic fence", "```\n" + janeJSON + "\n```"},
		{"preamble and trailing text", "Sure! Here is the resume:\n" + janeJSON + "\nLet me know if you need changes."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseCVDocument(tt.input)
			require.NoError(t, err)

			assert.Equal(t, []string{"header", "summary", "experience", "hobbies_and_stuff"}, doc.Sections.Keys())
			assert.Equal(t, []string{"experience", "summary"}, doc.Metadata.SectionOrder)
		})
	}
}

func TestParseCVDocument_NullsAndBareArrays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		tag   string
	}{
		{
			name:  "current role with null end date",
			input: `{"sections": {"experience": {"items": [{"title": "Engineer", "company": "Acme", "dates": {"start": "2021", "end": null, "is_current": true}}]}}}`,
			tag:   "experience",
		},
		{
			name:  "null header title",
			input: `{"sections": {"header": {"name": "Jane Doe", "title": null}}}`,
			tag:   "header",
		},
		{
			name:  "bare array section",
			input: `{"sections": {"experience": [{"title": "Engineer", "company": "Acme"}]}}`,
			tag:   "experience",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseCVDocument(tt.input)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.tag}, doc.Sections.Keys())
		})
	}
}

func TestParseCVDocument_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json at all", "not json at all"},
		{"empty", "   "},
		{"fenced garbage", "```json\nnot json at all\n```"},
		{"truncated", `{"sections": {"summary": "cut`},
		{"array at top level", `[{"sections": {}}]`},
		{"missing sections", `{"metadata": {}}`},
		{"sections is an array", `{"sections": []}`},
		{"negative rule", `{"sections": {"summary": "x"}, "rendering_rules": {"max_items_per_section": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseCVDocument(tt.input)
			assert.Nil(t, doc)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, ParseMessage, parseErr.Message)
			assert.Contains(t, err.Error(), "could not parse AI response")
		})
	}
}

func TestParseCVDocument_SchemaErrorIsWrapped(t *testing.T) {
	_, err := ParseCVDocument(`{"sections": "nope"}`)

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}
