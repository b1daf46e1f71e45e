// Error types and handling
package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types shared by all providers
const (
	ErrorTypeClient         = "client_error"
	ErrorTypeNetwork        = "network_error"
	ErrorTypeAPI            = "api_error"
	ErrorTypeAuthentication = "authentication_error"
	ErrorTypeValidation     = "validation_error"
	ErrorTypeRateLimit      = "rate_limit_error"
	ErrorTypeModel          = "model_error"
)

// Error represents a standardized LLM error
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewErrorFromStatus builds an Error for an HTTP status returned by a provider,
// classifying it into one of the standard error types.
func NewErrorFromStatus(provider string, status int, message string) *Error {
	errorType := ErrorTypeAPI
	code := fmt.Sprintf("%s_%d", provider, status)

	switch {
	case status == http.StatusBadRequest:
		errorType = ErrorTypeValidation
		code = "bad_request"
	case status == http.StatusUnauthorized:
		errorType = ErrorTypeAuthentication
		code = "invalid_api_key"
	case status == http.StatusForbidden:
		errorType = ErrorTypeAuthentication
		code = "insufficient_permissions"
	case status == http.StatusNotFound:
		errorType = ErrorTypeModel
		code = "model_not_found"
	case status == http.StatusTooManyRequests:
		errorType = ErrorTypeRateLimit
		code = "rate_limit_exceeded"
	case status >= 500:
		code = "server_error"
	}

	if message == "" {
		message = fmt.Sprintf("%s: HTTP %d", provider, status)
	}

	return &Error{
		Code:       code,
		Message:    message,
		Type:       errorType,
		StatusCode: status,
	}
}

// NewNetworkError wraps a transport failure (connection refused, DNS, timeout)
func NewNetworkError(provider string, err error) *Error {
	return &Error{
		Code:    "network_error",
		Message: fmt.Sprintf("%s: request failed: %v", provider, err),
		Type:    ErrorTypeNetwork,
	}
}

// IsRetryable reports whether err is a transient failure: rate limiting,
// server side errors or network errors.
func IsRetryable(err error) bool {
	var llmErr *Error
	if !errors.As(err, &llmErr) {
		return false
	}
	switch {
	case llmErr.Type == ErrorTypeRateLimit, llmErr.Type == ErrorTypeNetwork:
		return true
	case llmErr.StatusCode == http.StatusTooManyRequests:
		return true
	case llmErr.StatusCode >= 500 && llmErr.StatusCode < 600:
		return true
	}
	return false
}
