package placement

import (
	"errors"
	"fmt"
)

// Sentinel error classes. Errors returned by the placement packages wrap one
// of these, so callers can classify failures with errors.Is while messages
// keep their operation context.
var (
	// ErrInvalidScenario reports a scenario the builder cannot encode: no
	// candidates, a station count outside [0, N], negative weights, or an
	// empty POI set with a positive attraction weight.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrDimensionMismatch reports two matrices of different order where the
	// same order was required.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrStrategyDivergence reports that two constructions of the same
	// scenario disagree beyond tolerance.
	ErrStrategyDivergence = errors.New("strategy divergence")

	// ErrInvalidSelection reports a selection vector that cannot be mapped
	// onto the scenario's candidates.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Error represents a placement error with context
// that can be wrapped with additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewError creates a new placement error with the given message.
func NewError(message string) *Error {
	return &Error{
		Message: message,
	}
}

// NewErrorf creates a new placement error with formatted message.
func NewErrorf(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapErrorf wraps an existing error with additional formatted context.
// If err is nil, WrapErrorf returns nil.
func WrapErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsPlacementError checks if an error is of type Error.
// If the error is a placement error, it returns the error and true.
// Otherwise, it returns nil and false.
func IsPlacementError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
