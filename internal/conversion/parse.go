package conversion

import (
	"encoding/json"
	"errors"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/tidwall/gjson"
)

var (
	errEmptyResponse = errors.New("response is empty")
	errInvalidJSON   = errors.New("response is not valid JSON")
)

// ParseCVDocument turns raw model output into a CV document.
// Markdown fences and chatter around the JSON are stripped first; the remainder
// must be valid JSON that satisfies the shared CV document schema.
// Every failure is a *ParseError.
func ParseCVDocument(raw string) (*types.CVDocument, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, parseError(errEmptyResponse)
	}
	if !gjson.Valid(cleaned) {
		return nil, parseError(errInvalidJSON)
	}

	if err := schemas.ValidateCVDocument(cleaned); err != nil {
		return nil, parseError(err)
	}

	var doc types.CVDocument
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, parseError(err)
	}
	return &doc, nil
}
