package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/conversion"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// Error codes returned in the "error" field of a JSON error body
const (
	CodeInvalidRequest        = "invalid_request"
	CodePayloadTooLarge       = "payload_too_large"
	CodeUnsupportedFileType   = "unsupported_file_type"
	CodeNoText                = "no_text_extracted"
	CodeUnknownTemplate       = "unknown_template"
	CodeEmptyDocument         = "empty_document"
	CodeParseFailed           = "ai_response_unparseable"
	CodeProviderMisconfigured = "provider_misconfigured"
	CodeProviderUnavailable   = "provider_unavailable"
	CodeGenerationFailed      = "document_generation_failed"
	CodeRateLimited           = "rate_limit_exceeded"
	CodeInternal              = "internal_error"
)

// ErrorBody is the JSON body of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	// Slots lists per-slot failures when every provider slot failed
	Slots []SlotFailure `json:"slots,omitempty"`
}

// SlotFailure describes one provider slot's failure
type SlotFailure struct {
	Slot       string `json:"slot"`
	Provider   string `json:"provider,omitempty"`
	Kind       string `json:"kind"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// ErrorCode returns the machine-readable code for an error
func ErrorCode(err error) string {
	_, code := classify(err)
	return code
}

func classify(err error) (int, string) {
	var (
		validationErr  *ErrValidation
		tooLargeErr    *http.MaxBytesError
		unsupportedErr *ingestion.UnsupportedTypeError
		extractionErr  *ingestion.ExtractionError
		parseErr       *conversion.ParseError
		providerErr    *llm.ProviderError
		templateErr    *rendering.TemplateError
		renderErr      *rendering.RenderError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge, CodePayloadTooLarge
	case errors.As(err, &unsupportedErr):
		return http.StatusUnsupportedMediaType, CodeUnsupportedFileType
	case errors.Is(err, ingestion.ErrNoText), errors.Is(err, conversion.ErrEmptyResume):
		return http.StatusBadRequest, CodeNoText
	case errors.As(err, &extractionErr):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, rendering.ErrUnknownTemplate):
		return http.StatusBadRequest, CodeUnknownTemplate
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, CodeParseFailed
	case errors.Is(err, rendering.ErrNoSections):
		return http.StatusUnprocessableEntity, CodeEmptyDocument
	case errors.As(err, &providerErr):
		if providerErr.Kind == llm.KindConfiguration {
			return http.StatusServiceUnavailable, CodeProviderMisconfigured
		}
		return http.StatusBadGateway, CodeProviderUnavailable
	case errors.As(err, &templateErr), errors.As(err, &renderErr):
		return http.StatusInternalServerError, CodeGenerationFailed
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// errorBody builds the response body for err.
// Model output and internal causes are kept out of Message; Detail carries the cause.
func errorBody(err error) ErrorBody {
	status, code := classify(err)
	body := ErrorBody{Error: code, Message: err.Error()}

	var parseErr *conversion.ParseError
	var providerErr *llm.ProviderError
	switch {
	case errors.As(err, &parseErr):
		body.Message = conversion.ParseMessage
		if parseErr.Cause != nil {
			body.Detail = parseErr.Cause.Error()
		}
	case errors.As(err, &providerErr):
		body.Message = providerMessage(providerErr)
		body.Slots = slotFailures(providerErr)
	case status == http.StatusInternalServerError:
		body.Message = "document generation failed"
		body.Detail = err.Error()
	}
	return body
}

func providerMessage(err *llm.ProviderError) string {
	switch err.Kind {
	case llm.KindConfiguration:
		return "AI provider is not configured correctly: " + err.Message
	case llm.KindQuota:
		return "AI provider quota exceeded: " + err.Message
	default:
		return "AI provider is temporarily unavailable: " + err.Message
	}
}

func slotFailures(err *llm.ProviderError) []SlotFailure {
	attempts := err.Attempts
	if len(attempts) == 0 {
		attempts = []*llm.ProviderError{err}
	}

	failures := make([]SlotFailure, 0, len(attempts))
	for _, a := range attempts {
		message := a.Message
		if a.Cause != nil {
			message += ": " + a.Cause.Error()
		}
		failures = append(failures, SlotFailure{
			Slot:       a.Slot,
			Provider:   string(a.Provider),
			Kind:       string(a.Kind),
			StatusCode: a.StatusCode,
			Message:    message,
		})
	}
	return failures
}
