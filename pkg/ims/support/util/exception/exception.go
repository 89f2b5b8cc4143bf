// Package exception provides custom error types and error handling utilities for the imsbase store.
// It standardizes errors raised by the repositories, the bulk loader and the job ledger,
// allowing callers to categorize them for retry decisions.
package exception

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// StoreError is a custom error type for failures inside the store.
// It holds the module where the error occurred, a message, the wrapped
// original error, and a flag indicating whether the operation is retryable.
type StoreError struct {
	// Module indicates the module where the error occurred (e.g., "ingest", "ledger", "repository").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// isRetryable indicates whether this error is retryable.
	isRetryable bool
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string
}

// NewStoreError creates a new StoreError instance.
// module: The module where the error occurred.
// message: The error message.
// originalErr: The original error to wrap.
// isRetryable: Whether the failed operation may be retried.
func NewStoreError(module, message string, originalErr error, isRetryable bool) *StoreError {
	// Capture stack trace (for debugging purposes)
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	stackTrace := string(buf[:n])

	return &StoreError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		StackTrace:  stackTrace,
	}
}

// NewStoreErrorf creates a new non-retryable StoreError using a format string.
func NewStoreErrorf(module, format string, a ...interface{}) *StoreError {
	return NewStoreError(module, fmt.Sprintf(format, a...), nil, false)
}

// OptimisticLockingFailure is the sentinel name for an optimistic locking failure.
const OptimisticLockingFailure = "OptimisticLockingFailure"

// ErrOptimisticLockingFailure is a sentinel error indicating an optimistic locking failure.
// It is raised when a compare-and-set update of a job row finds a stale version.
var ErrOptimisticLockingFailure = errors.New(OptimisticLockingFailure)

// NewOptimisticLockingFailure creates a StoreError indicating an optimistic locking failure.
// The caller is expected to re-read the row and retry the update, so the error is retryable.
func NewOptimisticLockingFailure(module, message string, originalErr error) *StoreError {
	var errToWrap error
	if originalErr != nil {
		errToWrap = errors.Join(ErrOptimisticLockingFailure, originalErr)
	} else {
		errToWrap = ErrOptimisticLockingFailure
	}

	return NewStoreError(module, message, errToWrap, true)
}

// Error implements the error interface.
// It returns the error's module, message, and the string representation of the original error.
func (e *StoreError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *StoreError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether this error is retryable.
func (e *StoreError) IsRetryable() bool {
	return e.isRetryable
}

// IsStoreError determines if the given error is of type StoreError.
func IsStoreError(err error) bool {
	if err == nil {
		return false
	}
	var se *StoreError
	return errors.As(err, &se)
}

// IsTemporary determines if an error is temporary (e.g., network error, temporary DB connection issue).
// If it's a StoreError, its IsRetryable flag takes precedence.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.IsRetryable()
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "EOF")
}

// IsOptimisticLockingFailure determines if an error indicates an optimistic locking failure.
func IsOptimisticLockingFailure(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrOptimisticLockingFailure)
}

// ExtractErrorMessage extracts the error message string from an error.
// For StoreError, it returns the cleaner Message field.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
