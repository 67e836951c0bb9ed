package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Type    string
	Message string
	Code    string
}

func (e DomainError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// ValidationError represents a validation error
type ValidationError struct {
	DomainError
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		DomainError: DomainError{
			Type:    "VALIDATION_ERROR",
			Message: message,
			Code:    "VALIDATION_FAILED",
		},
	}
}

// NotConnectedError is returned when a send is attempted while the session
// is not connected. It carries the status observed at rejection time so
// callers can distinguish "never paired" from "mid-reconnect".
type NotConnectedError struct {
	DomainError
	Status Status
}

// NewNotConnectedError creates a new not connected error
func NewNotConnectedError(status Status) *NotConnectedError {
	return &NotConnectedError{
		DomainError: DomainError{
			Type:    "NOT_CONNECTED_ERROR",
			Message: fmt.Sprintf("session is not connected (status: %s)", status),
			Code:    "NOT_CONNECTED",
		},
		Status: status,
	}
}

// SendFailedError is returned when the transport accepted a send but the
// delivery attempt itself failed. The underlying error is preserved.
type SendFailedError struct {
	DomainError
	Err error
}

// NewSendFailedError creates a new send failed error
func NewSendFailedError(err error) *SendFailedError {
	return &SendFailedError{
		DomainError: DomainError{
			Type:    "SEND_FAILED_ERROR",
			Message: fmt.Sprintf("failed to send message: %v", err),
			Code:    "SEND_FAILED",
		},
		Err: err,
	}
}

// Unwrap returns the underlying transport error
func (e *SendFailedError) Unwrap() error {
	return e.Err
}

func ErrInvalidRecipient(message string) error {
	return NewValidationError(fmt.Sprintf("invalid recipient: %s", message))
}
