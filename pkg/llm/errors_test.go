package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorFromStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   int
		wantType string
		wantCode string
	}{
		{400, ErrorTypeValidation, "bad_request"},
		{401, ErrorTypeAuthentication, "invalid_api_key"},
		{403, ErrorTypeAuthentication, "insufficient_permissions"},
		{404, ErrorTypeModel, "model_not_found"},
		{429, ErrorTypeRateLimit, "rate_limit_exceeded"},
		{502, ErrorTypeAPI, "server_error"},
		{418, ErrorTypeAPI, "ollama_418"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := NewErrorFromStatus("ollama", tt.status, "")
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRetryable(NewErrorFromStatus("x", 429, "")))
	assert.True(t, IsRetryable(NewErrorFromStatus("x", 500, "")))
	assert.True(t, IsRetryable(NewNetworkError("x", errors.New("connection refused"))))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", NewErrorFromStatus("x", 503, ""))))
	assert.False(t, IsRetryable(NewErrorFromStatus("x", 400, "")))
	assert.False(t, IsRetryable(errors.New("other")))
	assert.False(t, IsRetryable(nil))
}
