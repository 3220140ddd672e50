package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried by AppError.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeConfig       = "CONFIG_ERROR"
	CodeInternal     = "INTERNAL"
	CodeUnavailable  = "UNAVAILABLE"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrUnavailable  = errors.New("service unavailable")

	// Upload rejections. Messages are client-facing.
	ErrMissingFile        = fmt.Errorf("%w: No file part", ErrInvalidInput)
	ErrEmptyFilename      = fmt.Errorf("%w: No selected file", ErrInvalidInput)
	ErrUnsupportedFormat  = fmt.Errorf("%w: Invalid file", ErrInvalidInput)
	ErrReformatterMissing = fmt.Errorf("%w: reformatter not configured", ErrUnavailable)
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Reject builds the client-input AppError for one of the upload rejections.
func Reject(cause error, message string) *AppError {
	return NewAppError(CodeInvalidInput, message, cause)
}

// IsClientError reports whether err is a client-input rejection.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// RejectionMessage returns the client-facing text for a rejection.
func RejectionMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingFile):
		return "No file part"
	case errors.Is(err, ErrEmptyFilename):
		return "No selected file"
	case errors.Is(err, ErrUnsupportedFormat):
		return "Invalid file"
	}
	var ae *AppError
	if errors.As(err, &ae) && ae.Code == CodeInvalidInput {
		return ae.Message
	}
	return "invalid input"
}
