package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Conversion errors
	ErrCodeParseFailure ErrorCode = "PARSE_FAILURE"
	ErrCodeEmptySession ErrorCode = "EMPTY_SESSION"

	// Discovery errors
	ErrCodeUnreadableFile   ErrorCode = "UNREADABLE_FILE"
	ErrCodeBackendInference ErrorCode = "BACKEND_INFERENCE"

	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// RecapError represents a structured error with context
type RecapError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *RecapError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RecapError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *RecapError) WithDetail(key string, value interface{}) *RecapError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *RecapError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new RecapError
func New(code ErrorCode, message string) *RecapError {
	return &RecapError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a RecapError
func Wrap(err error, code ErrorCode, message string) *RecapError {
	return &RecapError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error carries a specific RecapError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	recapErr, ok := err.(*RecapError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return recapErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	recapErr, ok := err.(*RecapError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return recapErr.Code
}
