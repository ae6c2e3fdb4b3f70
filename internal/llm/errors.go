package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind tells a caller what to do about a provider failure
type ErrorKind string

const (
	// KindConfiguration means the slot cannot work until its settings change (missing or rejected key, unknown model)
	KindConfiguration ErrorKind = "configuration"
	// KindQuota means the provider is rate limiting or the account is out of quota
	KindQuota ErrorKind = "quota"
	// KindTransient means the call may succeed if retried (network error, 5xx, empty response)
	KindTransient ErrorKind = "transient"
)

// ProviderError represents a failed call to an LLM provider
type ProviderError struct {
	Provider   Provider
	Slot       string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Cause      error
	// Attempts holds the per-slot failures when this error summarizes a fallback run
	Attempts []*ProviderError
}

func (e *ProviderError) Error() string {
	var sb strings.Builder
	sb.WriteString("provider error")
	if e.Slot != "" {
		sb.WriteString(fmt.Sprintf(" [%s/%s]", e.Slot, e.Provider))
	}
	sb.WriteString(fmt.Sprintf(" (%s)", e.Kind))
	if e.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf(" status %d", e.StatusCode))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether retrying the same slot may help
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindQuota || e.Kind == KindTransient
}

// configError builds a configuration error for a slot
func configError(slot Slot, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider: slot.Provider,
		Slot:     slot.Name,
		Kind:     KindConfiguration,
		Message:  message,
		Cause:    cause,
	}
}

// kindForStatus maps an HTTP status code to an error kind
func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusNotFound, code == http.StatusBadRequest,
		code == http.StatusPaymentRequired:
		return KindConfiguration
	case code == http.StatusTooManyRequests:
		return KindQuota
	default:
		return KindTransient
	}
}

// classifyOpenRouterError converts a go-openai error into a ProviderError
func classifyOpenRouterError(slot Slot, err error) *ProviderError {
	pe := &ProviderError{
		Provider: slot.Provider,
		Slot:     slot.Name,
		Kind:     KindTransient,
		Message:  "chat completion failed",
		Cause:    err,
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
		pe.Kind = kindForStatus(apiErr.HTTPStatusCode)
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
		pe.Kind = kindForStatus(reqErr.HTTPStatusCode)
	}
	return pe
}

// classifyGeminiError converts a genai error into a ProviderError.
// The SDK talks REST, so HTTP codes come first; gRPC statuses are the fallback.
func classifyGeminiError(slot Slot, err error) *ProviderError {
	pe := &ProviderError{
		Provider: slot.Provider,
		Slot:     slot.Name,
		Kind:     KindTransient,
		Message:  "generate content failed",
		Cause:    err,
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		pe.Message = "response blocked by safety settings"
		return pe
	}

	if code := geminiHTTPCode(err); code > 0 {
		pe.StatusCode = code
		pe.Kind = kindForStatus(code)
		return pe
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied, codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
			pe.Kind = KindConfiguration
		case codes.ResourceExhausted:
			pe.Kind = KindQuota
		}
		pe.StatusCode = httpStatusForCode(st.Code())
	}
	return pe
}

// geminiHTTPCode returns the HTTP status carried by a REST error, or 0
func geminiHTTPCode(err error) int {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPCode() > 0 {
		return apiErr.HTTPCode()
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}

// httpStatusForCode reports the HTTP status equivalent of a gRPC code, or 0 for OK/Unknown
func httpStatusForCode(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Internal:
		return http.StatusInternalServerError
	default:
		return 0
	}
}

// isContextError reports whether err is caused by cancellation or a deadline
func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
