package odbcscan

import (
	"fmt"
)

// ErrorType classifies failures surfaced by this package.
type ErrorType int

const (
	// ErrGeneric is a generic error.
	ErrGeneric ErrorType = iota
	// ErrConfig is an invalid-parameter error raised at bind time.
	ErrConfig
	// ErrConnection is a connection establishment error.
	ErrConnection
	// ErrPrepare is a statement preparation error.
	ErrPrepare
	// ErrExec is a statement execution error.
	ErrExec
	// ErrDriver is a failing native call after a successful connect
	// (fetch, describe, get-data, catalog lookup).
	ErrDriver
	// ErrSchemaMismatch means a column's runtime type disagrees with the
	// type fixed at bind time.
	ErrSchemaMismatch
	// ErrBind is a parameter binding error.
	ErrBind
)

// Error is the error type returned by all fallible operations.
type Error struct {
	Type    ErrorType
	Message string
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("odbcscan: %s", e.Message)
}

// NewError creates a new Error.
func NewError(typ ErrorType, message string) *Error {
	return &Error{
		Type:    typ,
		Message: message,
	}
}

// IsError checks if an error is of a specific type.
func IsError(err error, typ ErrorType) bool {
	scanErr, ok := err.(*Error)
	if !ok {
		return false
	}
	return scanErr.Type == typ
}

// driverError wraps a native diagnostic chain into an Error. The action
// describes the failing operation in "failed to <action>" form.
func driverError(typ ErrorType, action, diag string) *Error {
	if diag == "" {
		return NewError(typ, fmt.Sprintf("failed to %s", action))
	}
	return NewError(typ, fmt.Sprintf("failed to %s: %s", action, diag))
}
