package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCVDocument_SectionsKeepInputOrder(t *testing.T) {
	jsonInput := `{
		"sections": {
			"skills": {"categories": []},
			"header": {"name": "Jane"},
			"experience": {"items": []},
			"summary": "Hello"
		},
		"metadata": {"section_order": ["summary"], "schema_version": "1.0"}
	}`

	var doc CVDocument
	require.NoError(t, json.Unmarshal([]byte(jsonInput), &doc))

	assert.Equal(t, []string{"skills", "header", "experience", "summary"}, doc.Sections.Keys())
	assert.Equal(t, 4, doc.Sections.Len())
	assert.True(t, doc.Sections.Has("header"))
	assert.False(t, doc.Sections.Has("projects"))
	assert.Equal(t, []string{"summary"}, doc.Metadata.SectionOrder)
	assert.Equal(t, "1.0", doc.Metadata.SchemaVersion)

	raw, ok := doc.Sections.Raw("summary")
	require.True(t, ok)
	assert.JSONEq(t, `"Hello"`, string(raw))
}

func TestCVDocument_MarshalPreservesOrder(t *testing.T) {
	sections := NewSections()
	require.NoError(t, sections.Set("summary", "Hi"))
	require.NoError(t, sections.Set("experience", ListSection[ExperienceItem]{Items: []ExperienceItem{{Title: "Engineer"}}}))
	require.NoError(t, sections.Set("summary", "Hello"))

	data, err := json.Marshal(CVDocument{Sections: sections})
	require.NoError(t, err)

	var decoded CVDocument
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"summary", "experience"}, decoded.Sections.Keys())

	raw, _ := decoded.Sections.Raw("summary")
	assert.JSONEq(t, `"Hello"`, string(raw))
}

func TestSections_UnmarshalErrors(t *testing.T) {
	var doc CVDocument
	err := json.Unmarshal([]byte(`{"sections": ["experience"]}`), &doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected an object, got array")

	require.NoError(t, json.Unmarshal([]byte(`{"sections": null}`), &doc))
	assert.Equal(t, 0, doc.Sections.Len())
}

func TestSections_KeysReturnsCopy(t *testing.T) {
	sections := NewSections()
	require.NoError(t, sections.Set("summary", "Hi"))

	keys := sections.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"summary"}, sections.Keys())
}

func TestRenderingRules_Defaults(t *testing.T) {
	rules := RenderingRules{}.WithDefaults()

	assert.Equal(t, DefaultDateFormat, rules.DateFormat)
	assert.True(t, rules.HideEmpty())
	assert.Equal(t, 0, rules.MaxItemsPerSection)
	assert.Equal(t, DefaultTruncateDescriptionsAt, rules.TruncateAt())
}

func TestRenderingRules_ExplicitValuesWin(t *testing.T) {
	var rules RenderingRules
	require.NoError(t, json.Unmarshal([]byte(`{"hide_empty_sections": false, "truncate_descriptions_at": 0, "date_format": "YYYY"}`), &rules))

	rules = rules.WithDefaults()
	assert.False(t, rules.HideEmpty())
	assert.Equal(t, 0, rules.TruncateAt())
	assert.Equal(t, "YYYY", rules.DateFormat)
}

func TestRenderingRules_Merge(t *testing.T) {
	hide := false
	fallback := RenderingRules{DateFormat: "MM/YYYY", HideEmptySections: &hide, MaxItemsPerSection: 3}

	merged := RenderingRules{MaxItemsPerSection: 5}.Merge(fallback)
	assert.Equal(t, "MM/YYYY", merged.DateFormat)
	assert.False(t, merged.HideEmpty())
	assert.Equal(t, 5, merged.MaxItemsPerSection)
	assert.Nil(t, merged.TruncateDescriptionsAt)
}

func TestRenderingRules_Validate(t *testing.T) {
	negative := -1
	tests := []struct {
		name    string
		rules   RenderingRules
		wantErr bool
	}{
		{name: "zero value", rules: RenderingRules{}},
		{name: "limits set", rules: RenderingRules{MaxItemsPerSection: 4}},
		{name: "negative max items", rules: RenderingRules{MaxItemsPerSection: -1}, wantErr: true},
		{name: "negative truncation", rules: RenderingRules{TruncateDescriptionsAt: &negative}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
