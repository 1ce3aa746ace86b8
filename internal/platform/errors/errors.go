// Package errors provides error types and utilities for ingestrouter.
// It extends the standard errors package with additional context, stack
// capture and category naming used by execution records.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors for common failure scenarios
var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration value or file is malformed
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingConfig indicates a required configuration value is absent
	ErrMissingConfig = errors.New("missing required configuration")

	// ErrStorageUnavailable indicates the storage backend could not be reached
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTransportUnavailable indicates the notification transport could not be reached
	ErrTransportUnavailable = errors.New("transport unavailable")
)

const maxStackDepth = 32

// wrappedError wraps an error with additional context and the call stack
// at the point of wrapping.
type wrappedError struct {
	msg   string
	cause error
	stack []uintptr
}

// Error implements the error interface
func (e *wrappedError) Error() string {
	if e.cause != nil {
		if e.msg == "" {
			return e.cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap returns the underlying error
func (e *wrappedError) Unwrap() error {
	return e.cause
}

func callers(skip int) []uintptr {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	return pcs[:n]
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
//
// Example:
//
//	err := someOperation()
//	if err != nil {
//	    return errors.Wrap(err, "failed to perform operation")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg:   msg,
		cause: err,
		stack: callers(3),
	}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg:   fmt.Sprintf(format, args...),
		cause: err,
		stack: callers(3),
	}
}

// WithStack annotates err with the current call stack without changing its message.
// If err is nil, WithStack returns nil.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		cause: err,
		stack: callers(3),
	}
}

// StackTrace returns the formatted call stack captured closest to the root
// cause of err, or nil if no frame in the chain carries one.
func StackTrace(err error) []string {
	var deepest []uintptr
	for e := err; e != nil; e = errors.Unwrap(e) {
		if w, ok := e.(*wrappedError); ok && len(w.stack) > 0 {
			deepest = w.stack
		}
	}
	if len(deepest) == 0 {
		return nil
	}
	return FormatFrames(deepest)
}

// FormatFrames renders program counters as "function\n\tfile:line" lines.
func FormatFrames(pcs []uintptr) []string {
	frames := runtime.CallersFrames(pcs)
	out := make([]string, 0, len(pcs))
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			out = append(out, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return out
}

// TypeName returns the category name of err used in execution records.
// Errors exposing Category() string name themselves; otherwise the Go type of
// the first error in the chain that is not a generic wrapper is used.
func TypeName(err error) string {
	if err == nil {
		return ""
	}
	var categorized interface{ Category() string }
	if errors.As(err, &categorized) {
		return categorized.Category()
	}
	for e := err; e != nil; {
		if !isGenericWrapper(e) {
			return fmt.Sprintf("%T", e)
		}
		next := errors.Unwrap(e)
		if next == nil {
			return fmt.Sprintf("%T", e)
		}
		e = next
	}
	return fmt.Sprintf("%T", err)
}

func isGenericWrapper(err error) bool {
	if _, ok := err.(*wrappedError); ok {
		return true
	}
	name := fmt.Sprintf("%T", err)
	return strings.HasPrefix(name, "*fmt.wrapError")
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
// This is a convenience wrapper around errors.As from the standard library.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors.
// Any nil error values are discarded.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// IsNotFound reports whether the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, ErrNotFound)
}

// IsInvalidInput reports whether the error is an invalid input error
func IsInvalidInput(err error) bool {
	return Is(err, ErrInvalidInput)
}

// IsInvalidConfig reports whether the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	return Is(err, ErrInvalidConfig)
}
