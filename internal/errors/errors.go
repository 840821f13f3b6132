// Package errors defines stable error codes for every depscope failure mode.
// Per-file and per-edge failures are recorded in the analysis output instead
// of being raised; only top-level input errors and exhausted retries abort a
// run.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates a malformed alias or tool configuration.
	// Always recoverable: the run degrades to an empty alias table.
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ResolveFailed indicates an import could not be mapped to a file.
	// Recorded per-edge as unresolved, never fatal.
	ResolveFailed ErrorCode = "RESOLVE_FAILED"
	// SourceUnreadable indicates a file could not be read (local error or
	// remote 404). Treated as "no content" for that file.
	SourceUnreadable ErrorCode = "SOURCE_UNREADABLE"
	// RateLimited indicates the remote API quota is exhausted
	RateLimited ErrorCode = "RATE_LIMITED"
	// NetworkFailed indicates a transient network failure survived all retries
	NetworkFailed ErrorCode = "NETWORK_FAILED"
	// InputInvalid indicates bad top-level input (repository path, issue text)
	InputInvalid ErrorCode = "INPUT_INVALID"
	// LLMUnavailable indicates the generative-model collaborator failed
	LLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// Cancelled indicates the run was aborted cooperatively
	Cancelled ErrorCode = "CANCELLED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AnalysisError represents a depscope error with a code, message, and cause
type AnalysisError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new AnalysisError without a cause
func New(code ErrorCode, message string) *AnalysisError {
	return &AnalysisError{Code: code, Message: message}
}

// Wrap creates a new AnalysisError wrapping an underlying error
func Wrap(code ErrorCode, message string, cause error) *AnalysisError {
	return &AnalysisError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AnalysisError) WithDetails(details interface{}) *AnalysisError {
	e.Details = details
	return e
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns InternalError when err carries no AnalysisError.
func CodeOf(err error) ErrorCode {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
