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

// HasCode reports whether err is an AppError carrying the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeInsufficientGroupSize = "INSUFFICIENT_GROUP_SIZE"
	CodeUnsupportedMetric     = "UNSUPPORTED_METRIC"
	CodeDegenerateInput       = "DEGENERATE_INPUT"
	CodeEmptyIntersection     = "EMPTY_INTERSECTION"
	CodeConfigInvalid         = "CONFIG_INVALID"
	CodeParseError            = "PARSE_ERROR"
	CodeDatabaseError         = "DATABASE_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
	CodeInvalidInput          = "INVALID_INPUT"
)

// Common error constructors
func InsufficientGroupSize(group string, size int) *AppError {
	return New(CodeInsufficientGroupSize,
		fmt.Sprintf("phenotype group %q has %d samples, it must be >= 3", group, size))
}

func UnsupportedMetric(name string) *AppError {
	return New(CodeUnsupportedMetric, fmt.Sprintf("ranking metric %q is not supported", name))
}

func DegenerateInput(message string) *AppError {
	return New(CodeDegenerateInput, message)
}

func EmptyIntersection(term string) *AppError {
	return New(CodeEmptyIntersection,
		fmt.Sprintf("gene set %q has no overlap with the ranked gene universe", term))
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ParseError(message string) *AppError {
	return New(CodeParseError, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
