package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input the client got wrong; it never reaches the analysis service.
	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable is returned when the analysis service refuses the connection.
	ErrUpstreamUnavailable = errors.New("analysis service unavailable")
)

// ValidationError describes a rejected request field
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UpstreamError is an error response (or an unusable body) from the analysis service.
// StatusCode is relayed to the gateway's caller as-is.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analysis service returned status %d: %s", e.StatusCode, e.Message)
}
