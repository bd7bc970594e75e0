// Package errors provides custom error types for the bqdc system.
// These errors separate fatal configuration problems from recoverable
// per-field write failures and enable programmatic error checking
// throughout the reconciliation pipeline.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the bqdc system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTemplateInvalid indicates a tag template is missing a required key
	ErrTemplateInvalid = errors.New("tag template invalid")

	// ErrCredentials indicates the service account key could not be resolved
	ErrCredentials = errors.New("credentials unresolved")

	// ErrStoreUnavailable indicates a remote store call failed
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConfigError represents a configuration error. Configuration errors are
// fatal: no partial work is attempted once one is raised.
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

// TemplateError indicates a tag template does not carry a key the
// reconciliation engine depends on.
type TemplateError struct {
	Template string
	Key      string
}

// Error implements the error interface
func (e *TemplateError) Error() string {
	return fmt.Sprintf("tag template %s is missing required key %q", e.Template, e.Key)
}

// Is implements errors.Is support
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplateInvalid
}

// NewTemplateError creates a new TemplateError
func NewTemplateError(template, key string) *TemplateError {
	return &TemplateError{Template: template, Key: key}
}

// StoreError represents a failed call against one of the two remote stores
type StoreError struct {
	Store     string // "bigquery" or "datacatalog"
	Operation string // "get", "list", "create", "update", "delete", "lookup"
	Resource  string
	Err       error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: failed to %s %s: %v", e.Store, e.Operation, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Store, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// NewStoreError creates a new StoreError
func NewStoreError(store, operation, resource string, err error) *StoreError {
	return &StoreError{
		Store:     store,
		Operation: operation,
		Resource:  resource,
		Err:       err,
	}
}

// IOError represents an error during interchange file I/O
type IOError struct {
	Operation string // "read", "write", "create", "delete"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ValidationError represents a validation failure on caller input
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTemplateInvalid checks if an error is a template validation error
func IsTemplateInvalid(err error) bool {
	return errors.Is(err, ErrTemplateInvalid)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStoreUnavailable checks if an error is a remote store failure
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapStore wraps an error as a StoreError
func WrapStore(store, operation, resource string, err error) error {
	if err == nil {
		return nil
	}
	return NewStoreError(store, operation, resource, err)
}
