package prompts

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(ConversionFile, KeySystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Schema}}")
	assert.Contains(t, prompt, "Return ONLY a single JSON object")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(ConversionFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet(ConversionFile, KeyConvert)
		assert.Contains(t, prompt, "{{.ResumeText}}")
		assert.Contains(t, prompt, "{{.SectionOrder}}")
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{
			name:     "replaces every placeholder",
			template: "Hello {{.Name}}, welcome to {{.Company}}! Bye {{.Name}}.",
			data:     map[string]string{"Name": "Alice", "Company": "Acme Corp"},
			expected: "Hello Alice, welcome to Acme Corp! Bye Alice.",
		},
		{
			name:     "no placeholders",
			template: "No placeholders here",
			data:     map[string]string{"Key": "Value"},
			expected: "No placeholders here",
		},
		{
			name:     "missing value leaves placeholder",
			template: "Hello {{.Name}}",
			data:     map[string]string{},
			expected: "Hello {{.Name}}",
		},
		{
			name:     "values are not expanded again",
			template: "{{.A}} {{.B}}",
			data:     map[string]string{"A": "{{.B}}", "B": "b"},
			expected: "{{.B}} b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render(ConversionFile, KeyConvert, map[string]string{
		"ResumeText":   "Jane Doe\nSoftware Engineer",
		"SectionOrder": "",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Jane Doe\nSoftware Engineer")
	assert.NotContains(t, prompt, "{{.")

	_, err = Render(ConversionFile, "missing", nil)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(ConversionFile)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyConvert, KeySectionOrderHint, KeySystem}, keys)
}

func TestCaching_Concurrent(t *testing.T) {
	ClearCache()

	first, err := Get(ConversionFile, KeySystem)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := Get(ConversionFile, KeySystem)
			assert.NoError(t, err)
			assert.Equal(t, first, prompt)
		}()
	}
	wg.Wait()
}
