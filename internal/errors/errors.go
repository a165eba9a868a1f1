// Package errors provides custom error types for the dashboard client.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrConnectionFailed = errors.New("connection failed")
	ErrRequestFailed    = errors.New("request failed")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrInputValidation  = errors.New("input validation failed")
	ErrMissingInput     = errors.New("missing input")
	ErrNoResults        = errors.New("no results held")
)

// TransportError represents a network failure talking to an endpoint.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s]: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrConnectionFailed for any transport error.
func (e *TransportError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// NewTransportError creates a new TransportError.
func NewTransportError(endpoint string, err error) *TransportError {
	return &TransportError{
		Endpoint: endpoint,
		Err:      err,
	}
}

// ApplicationError represents an endpoint answering without success.
type ApplicationError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *ApplicationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("application error [%s] status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("application error [%s]: %s", e.Endpoint, e.Message)
}

func (e *ApplicationError) Unwrap() error {
	return ErrRequestFailed
}

// NewApplicationError creates a new ApplicationError.
func NewApplicationError(endpoint string, status int, message string) *ApplicationError {
	return &ApplicationError{
		Endpoint: endpoint,
		Status:   status,
		Message:  message,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewMissingInputError creates a ValidationError for a required input that
// was never provided.
func NewMissingInputError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   nil,
		Message: message,
		Err:     ErrMissingInput,
	}
}

// ConfigurationError represents a lookup against a static table or config key
// that does not exist.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error [%s]: %s", e.Key, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{
		Key:     key,
		Message: message,
	}
}

// EmptyStateError is returned when an export runs before anything was held.
type EmptyStateError struct {
	What    string
	Message string
}

func (e *EmptyStateError) Error() string {
	return fmt.Sprintf("empty state [%s]: %s", e.What, e.Message)
}

func (e *EmptyStateError) Unwrap() error {
	return ErrNoResults
}

// NewEmptyStateError creates a new EmptyStateError.
func NewEmptyStateError(what, message string) *EmptyStateError {
	return &EmptyStateError{
		What:    what,
		Message: message,
	}
}

// UserMessage renders err as the single notification shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var app *ApplicationError
	var transport *TransportError
	var validation *ValidationError
	var cfg *ConfigurationError
	var empty *EmptyStateError

	switch {
	case As(err, &app):
		return "Error: " + app.Message
	case As(err, &transport):
		return fmt.Sprintf("Error contacting %s: %v", transport.Endpoint, transport.Err)
	case As(err, &validation):
		return validation.Message
	case As(err, &cfg):
		return cfg.Message
	case As(err, &empty):
		return empty.Message
	default:
		return "Error: " + err.Error()
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
