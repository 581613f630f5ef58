// Package errors provides the standardized error taxonomy for the AI
// orchestration service.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderError       ErrorCode = "PROVIDER_ERROR"
	ErrCodeGenerationFailed    ErrorCode = "GENERATION_FAILED"
	ErrCodeAnalysisUnavailable ErrorCode = "ANALYSIS_UNAVAILABLE"
	ErrCodeUploadFailed        ErrorCode = "UPLOAD_FAILED"
	ErrCodeInvalidPayload      ErrorCode = "INVALID_PAYLOAD"
	ErrCodeStoreWriteFailed    ErrorCode = "STORE_WRITE_FAILED"
)

// ServiceError represents a structured application error.
type ServiceError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ServiceError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewCacheUnavailableError signals a cache backend failure. Callers must
// treat this as a miss, never as a fatal error.
func NewCacheUnavailableError(err error) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache backend unavailable, degrading to uncached operation",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProviderTimeoutError creates a retryable provider timeout error.
func NewProviderTimeoutError(provider string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeProviderTimeout,
		Message:   fmt.Sprintf("Provider '%s' call timed out", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderError creates a retryable external provider error.
func NewProviderError(provider string, err error) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeProviderError,
		Message:   fmt.Sprintf("Provider '%s' call failed", provider),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewGenerationFailedError surfaces a text-generation failure to the caller.
// There is no lower-cost substitute for plain text generation, so nothing is
// silently degraded.
func NewGenerationFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Content generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAnalysisUnavailableError marks a single intelligence facet as
// unavailable. Composite reports replace the facet with a placeholder
// instead of propagating this.
func NewAnalysisUnavailableError(facet string, err error) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeAnalysisUnavailable,
		Message:   fmt.Sprintf("%s analysis unavailable", facet),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"facet": facet},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUploadFailedError creates an image hosting upload error. In the image
// resolution chain this is treated the same as a generation failure.
func NewUploadFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeUploadFailed,
		Message:   "Image hosting upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidPayloadError creates a non-retryable request validation error.
func NewInvalidPayloadError(details string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Capability request payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreWriteFailedError creates a retryable report persistence error.
func NewStoreWriteFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Report store write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderError, ErrCodeStoreWriteFailed:
		return 3
	case ErrCodeProviderTimeout, ErrCodeCacheUnavailable:
		return 2
	case ErrCodeGenerationFailed, ErrCodeAnalysisUnavailable, ErrCodeUploadFailed:
		return 1
	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}
