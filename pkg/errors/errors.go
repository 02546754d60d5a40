// Package errors defines the error taxonomy of the catalog mirror.
//
// Fetch failures (FetchError, wrapping APIError, TimeoutError, or ParseError)
// are transient: the reconciler retries the failing name. Store failures
// (StoreError, BatchError) end the cycle and stop the worker.
package errors

import (
	"errors"
	"fmt"
)

// Re-exported so callers need a single errors import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Sentinels matched with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetchFailed marks a remote or snapshot fetch that produced no usable
	// data. It never escapes a cycle.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrNoData is returned to readers before the first cycle completes.
	ErrNoData = errors.New("no data available yet")

	ErrTimeout  = errors.New("operation timed out")
	ErrCanceled = errors.New("operation canceled")
	ErrStore    = errors.New("store failure")
)

// FetchKind names the remote resource family a fetch targeted.
type FetchKind string

// Fetch kinds.
const (
	FetchCategory     FetchKind = "category"
	FetchManufacturer FetchKind = "manufacturer"
)

// FetchError is a failed category or manufacturer fetch.
type FetchError struct {
	Kind       FetchKind
	Name       string
	URL        string // request URL or snapshot path
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s %s failed (status %d): %s", e.Kind, e.Name, e.StatusCode, msg)
	}
	return fmt.Sprintf("fetch %s %s failed: %s", e.Kind, e.Name, msg)
}

func (e *FetchError) Unwrap() error        { return e.Err }
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// NewFetchError wraps err as a failed fetch of name.
func NewFetchError(kind FetchKind, name, url string, err error) *FetchError {
	return &FetchError{Kind: kind, Name: name, URL: url, Err: err}
}

// APIError is a non-200 answer from the catalog API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError creates an APIError.
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
}

// TimeoutError is a request that exceeded its deadline.
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: duration, Message: message}
}

// ParseError is a payload or file that could not be decoded.
type ParseError struct {
	Format  string // "json", "yaml", "availability"
	File    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// WrapParse wraps err as a ParseError; nil stays nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// IOError is a filesystem failure, typically on snapshot files.
type IOError struct {
	Operation string // "read", "write", "create", "rename"
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WrapIO wraps err as an IOError; nil stays nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// StoreError is a failed read or write against the mirror database.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error        { return e.Err }
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// WrapStore wraps err as a StoreError; nil stays nil.
func WrapStore(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Operation: operation, Err: err}
}

// BatchError reports the chunk at which a batched mutation stopped.
// Chunks before Chunk were committed and stay applied.
type BatchError struct {
	Op     string // "insert", "update", "delete"
	Chunk  int
	Chunks int
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %s failed at chunk %d/%d: %v", e.Op, e.Chunk+1, e.Chunks, e.Err)
}

func (e *BatchError) Unwrap() error        { return e.Err }
func (e *BatchError) Is(target error) bool { return target == ErrStore }

// NewBatchError creates a BatchError for the zero-based chunk index.
func NewBatchError(op string, chunk, chunks int, err error) *BatchError {
	return &BatchError{Op: op, Chunk: chunk, Chunks: chunks, Err: err}
}

// NotFoundError is a missing mirror row.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError is rejected input: an option, a config key, or a flag.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError is a configuration that cannot be used as given.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// IsNotFound reports whether err is a missing row.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err is rejected input.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsFetchFailed reports whether err is a transient fetch failure.
func IsFetchFailed(err error) bool { return errors.Is(err, ErrFetchFailed) }

// IsNoData reports whether no cycle has completed yet.
func IsNoData(err error) bool { return errors.Is(err, ErrNoData) }

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsCanceled reports whether err is a cancellation.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// IsStore reports whether err originates in the mirror store.
func IsStore(err error) bool { return errors.Is(err, ErrStore) }
