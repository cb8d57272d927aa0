package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// InvalidInputMessage describes a caller contract violation (e.g. empty query).
	InvalidInputMessage = "invalid input"
	// ClassificationErrorMessage describes failures of the intent classification call.
	ClassificationErrorMessage = "intent classification failed"
	// EvidenceErrorMessage describes failures of the evidence fetch call.
	EvidenceErrorMessage = "evidence fetch failed"
	// DispatchErrorMessage describes failures of the tool dispatch call.
	DispatchErrorMessage = "tool dispatch failed"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
)

// ErrEmptyQuery is returned when a turn is handed an empty user query.
// It is the only failure the orchestrator surfaces as a Go error instead
// of a reply envelope.
var ErrEmptyQuery = New(nil, http.StatusBadRequest, InvalidInputMessage)

// AppError wraps an underlying error with an HTTP-equivalent status and a
// message that is safe to show to clients.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapClassification tags a failure from the classification provider.
func WrapClassification(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, ClassificationErrorMessage)
}

// WrapEvidence tags a failure from the evidence provider.
func WrapEvidence(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, EvidenceErrorMessage)
}

// WrapDispatch tags a failure from the tool dispatch provider.
func WrapDispatch(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, DispatchErrorMessage)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
