// Package errors provides custom error types for the propscan system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Common sentinel errors for the propscan system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrRemoteUnavailable indicates that the property service answered with a server error
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrUnauthorized indicates that the property service rejected the credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an unexpected answer from the property service.
// Message is the human-readable reason; for failed creates it is the
// message the service put in its JSON error body.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (%s %s: status %d)", e.Message, e.Method, e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s (%s %s): %v", e.Message, e.Method, e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("%s (%s %s)", e.Message, e.Method, e.Endpoint)
	}
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return target == ErrUnauthorized
	case e.StatusCode >= 500:
		return target == ErrRemoteUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(method, endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "rule"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "stat", "open", "write"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "list", "delete", "remove"
	Resource  string // "property", "collection", "request"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRemoteUnavailable checks if an error indicates a server-side failure
func IsRemoteUnavailable(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable)
}

// IsUnauthorized checks if the service rejected the credentials
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
