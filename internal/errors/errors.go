package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeSchemaError      = "SCHEMA_ERROR"
	CodeArchiveError     = "ARCHIVE_ERROR"
	CodeDecodeError      = "DECODE_ERROR"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Common error constructors

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// ResourceNotFound marks a missing startup resource such as the
// reference catalog file. Fatal: the tool cannot run without it.
func ResourceNotFound(path string) *AppError {
	return New(CodeResourceNotFound, fmt.Sprintf("resource not found: %s", path))
}

// SchemaError marks a startup resource whose shape is wrong, e.g. a
// catalog file missing a required column.
func SchemaError(message string) *AppError {
	return New(CodeSchemaError, message)
}

func ArchiveError(cause error) *AppError {
	return &AppError{
		Code:    CodeArchiveError,
		Message: "archive request failed",
		Cause:   cause,
	}
}

func DecodeError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDecodeError,
		Message: message,
		Cause:   cause,
	}
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
