package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
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

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = fmt.Errorf("%w: validation failed", ErrInvalidInput)
	ErrTimeout      = errors.New("processing timed out")
	ErrQueueClosed  = errors.New("queue closed")
)

// Analysis error kinds. Stages wrap these; the processor turns them into defaults.
var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrNoMetadata        = errors.New("no document metadata")
	ErrPageFailed        = errors.New("page extraction failed")
	ErrEmptyText         = errors.New("empty text")
	ErrClassification    = errors.New("classification failed")
	ErrPattern           = errors.New("pattern failed")
)

// Upload validation codes
const (
	CodeNoFile     = "NO_FILE"
	CodeNoFilename = "NO_FILENAME"
	CodeNotPDF     = "NOT_PDF"
	CodeEmptyFile  = "EMPTY_FILE"
	CodeTooLarge   = "TOO_LARGE"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// AppErrorCode returns the code of the first AppError in err's chain, or "".
func AppErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// RecoverError converts a recovered panic value into an error of the given kind.
func RecoverError(kind error, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return fmt.Errorf("%w: %v", kind, r)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func DeadlineExceededError(message string) error {
	return status.Error(codes.DeadlineExceeded, message)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps an application error onto a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(err.Error())
	case errors.Is(err, ErrTimeout):
		return DeadlineExceededError(err.Error())
	case errors.Is(err, ErrQueueClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return InternalError(err.Error())
	}
}
