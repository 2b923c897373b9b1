package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      string
		retries   int
		variables map[string]interface{}
	}{
		{
			name:      "input validation carries the field",
			err:       NewInputValidationError("applicants[0].age", "must be between 18 and 75"),
			code:      "INPUT_VALIDATION_FAILED",
			retries:   0,
			variables: map[string]interface{}{"field": "applicants[0].age", "originalErrorCode": "INPUT_VALIDATION_FAILED"},
		},
		{
			name:      "timeouts are retried",
			err:       NewJobTimeoutError(context.DeadlineExceeded),
			code:      "JOB_TIMEOUT",
			retries:   2,
			variables: map[string]interface{}{"originalErrorCode": "JOB_TIMEOUT"},
		},
		{
			name:      "calculation failures are not retried",
			err:       NewCalculationFailedError(fmt.Errorf("unexpected result")),
			code:      "CALCULATION_FAILED",
			retries:   0,
			variables: map[string]interface{}{"originalErrorCode": "CALCULATION_FAILED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.code, bpmnErr.Code)
			assert.Equal(t, tt.retries, bpmnErr.Retries)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, tt.code, vars["errorCode"])
			for k, v := range tt.variables {
				assert.Equal(t, v, vars[k], k)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	validation := NewInputValidationError("propertyPrice", "must be greater than zero")
	wrapped := fmt.Errorf("execute: %w", validation)
	assert.Same(t, validation, Normalize(wrapped))

	timeout := Normalize(fmt.Errorf("redis: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeJobTimeout, timeout.Code)
	assert.True(t, timeout.Retryable)

	other := Normalize(fmt.Errorf("boom"))
	require.NotNil(t, other)
	assert.Equal(t, ErrCodeInternal, other.Code)
	assert.Equal(t, "boom", other.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputValidationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseFailed))
	assert.Equal(t, "POLICY", GetErrorCategory(ErrCodePolicyLoadFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodeJobTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeInputValidationFailed))
}
