package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// UpstreamErrorMessage describes failures of external services (pinning, chain RPC).
	UpstreamErrorMessage = "upstream service failed"
	// UpstreamTimeoutMessage describes an upstream call that ran out of time.
	UpstreamTimeoutMessage = "upstream service timed out"
)

// AppError wraps an underlying error with an HTTP-like status and safe message.
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

// WrapUpstream attributes an error to the named external service. Context
// deadlines map to a gateway timeout so callers can treat them as retryable.
func WrapUpstream(service string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(fmt.Errorf("%s: %w", service, err), http.StatusGatewayTimeout, UpstreamTimeoutMessage)
	}
	return New(fmt.Errorf("%s: %w", service, err), http.StatusBadGateway, UpstreamErrorMessage)
}

// StatusOf returns the status carried by the first AppError in the chain,
// or 500 when there is none.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	return err != nil && StatusOf(err) == http.StatusNotFound
}
