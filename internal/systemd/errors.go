package systemd

import (
	"errors"
	"fmt"
)

// Error is a failed operation on a named unit.
type Error struct {
	Operation string
	UnitName  string
	Cause     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("systemd %s failed for %s: %v", e.Operation, e.UnitName, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError wraps cause as a failed unit operation.
func NewError(operation, unitName string, cause error) *Error {
	return &Error{Operation: operation, UnitName: unitName, Cause: cause}
}

// ConnectionError is a failure to reach the systemd D-Bus endpoint.
type ConnectionError struct {
	UserMode bool
	Cause    error
}

func (e *ConnectionError) Error() string {
	if e.UserMode {
		return fmt.Sprintf("failed to connect to systemd user bus: %v", e.Cause)
	}
	return fmt.Sprintf("failed to connect to systemd system bus: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// NewConnectionError wraps cause as a bus connection failure.
func NewConnectionError(userMode bool, cause error) *ConnectionError {
	return &ConnectionError{UserMode: userMode, Cause: cause}
}

// IsError reports whether err is a unit operation Error.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// IsConnectionError reports whether err is a ConnectionError.
func IsConnectionError(err error) bool {
	var e *ConnectionError
	return errors.As(err, &e)
}
