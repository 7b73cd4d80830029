// Package apperr defines the closed error taxonomy shared by all host-ops components.
package apperr

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
)

// Code identifies a failure class. The set is closed: components never invent
// codes at call sites, and raw OS errors are reclassified into one of these
// before crossing a package boundary.
type Code string

// Failure classes, each bound to a fixed HTTP-style status.
const (
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeServiceFileNotFound   Code = "SERVICE_FILE_NOT_FOUND"
	CodeServiceFileDenied     Code = "SERVICE_FILE_PERMISSION_DENIED"
	CodeServiceFileRead       Code = "SERVICE_FILE_READ_ERROR"
	CodeWorkingDirNotFound    Code = "WORKING_DIRECTORY_NOT_FOUND"
	CodeAppDirNotFound        Code = "APP_DIRECTORY_NOT_FOUND"
	CodeAppDirDenied          Code = "APP_DIRECTORY_PERMISSION_DENIED"
	CodeEnvFileNotFound       Code = "ENV_FILE_NOT_FOUND"
	CodeEnvFileDenied         Code = "ENV_FILE_PERMISSION_DENIED"
	CodeAppNameNotFound       Code = "NAME_APP_NOT_FOUND"
	CodeUnitListNotFound      Code = "UNIT_LIST_NOT_FOUND"
	CodeUnitListDenied        Code = "UNIT_LIST_PERMISSION_DENIED"
	CodeUnitListRead          Code = "UNIT_LIST_READ_ERROR"
	CodeOrphanedTimer         Code = "ORPHANED_TIMER_FILE"
	CodeInvalidPortFormat     Code = "INVALID_PORT_FORMAT"
	CodeConfigFileNotFound    Code = "CONFIG_FILE_NOT_FOUND"
	CodeConfigFileDenied      Code = "CONFIG_FILE_PERMISSION_DENIED"
	CodeConfigWrite           Code = "CONFIG_WRITE_ERROR"
	CodeSiteNotFound          Code = "SITE_NOT_FOUND"
	CodeSiteAlreadyExists     Code = "SITE_ALREADY_EXISTS"
	CodeMachineNotFound       Code = "MACHINE_NOT_FOUND"
	CodeInternal              Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeValidation:          http.StatusBadRequest,
	CodeServiceFileNotFound: http.StatusNotFound,
	CodeServiceFileDenied:   http.StatusForbidden,
	CodeServiceFileRead:     http.StatusInternalServerError,
	CodeWorkingDirNotFound:  http.StatusBadRequest,
	CodeAppDirNotFound:      http.StatusNotFound,
	CodeAppDirDenied:        http.StatusForbidden,
	CodeEnvFileNotFound:     http.StatusNotFound,
	CodeEnvFileDenied:       http.StatusForbidden,
	CodeAppNameNotFound:     http.StatusNotFound,
	CodeUnitListNotFound:    http.StatusNotFound,
	CodeUnitListDenied:      http.StatusForbidden,
	CodeUnitListRead:        http.StatusInternalServerError,
	CodeOrphanedTimer:       http.StatusBadRequest,
	CodeInvalidPortFormat:   http.StatusBadRequest,
	CodeConfigFileNotFound:  http.StatusNotFound,
	CodeConfigFileDenied:    http.StatusForbidden,
	CodeConfigWrite:         http.StatusInternalServerError,
	CodeSiteNotFound:        http.StatusNotFound,
	CodeSiteAlreadyExists:   http.StatusConflict,
	CodeMachineNotFound:     http.StatusNotFound,
	CodeInternal:            http.StatusInternalServerError,
}

// Status returns the HTTP status bound to the code, defaulting to 500 for
// anything outside the known set.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is the failure shape surfaced by host-ops components. Details carries
// diagnostic text (validator output, wrapped OS errors) and is withheld from
// external responses in production deployments.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status"`

	cause error
}

// New creates an Error with the status bound to its code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Status: code.Status()}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails attaches diagnostic text and returns the error for chaining.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// WithCause records the underlying error without serializing it.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// Redacted returns a copy safe for external responses in production: the
// details field is dropped, and internal errors get a generic message.
func (e *Error) Redacted() *Error {
	out := &Error{Code: e.Code, Message: e.Message, Status: e.Status}
	if e.Code == CodeInternal {
		out.Message = "internal error"
	}
	return out
}

// Internal wraps an unexpected error. The cause is kept for server-side
// logging; external responses carry only the taxonomy shape.
func Internal(err error) *Error {
	return New(CodeInternal, "unexpected internal error").WithCause(err).WithDetails(err.Error())
}

// From returns err as an *Error, reclassifying anything foreign as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// FromFS classifies a file-system error: absence and permission failures map
// to the two supplied codes, anything else is internal. The distinction
// matters to callers (404 is retryable after the environment changes, 403
// needs an operator).
func FromFS(err error, message string, notFound, denied Code) *Error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return New(notFound, message).WithCause(err)
	case errors.Is(err, fs.ErrPermission) || os.IsPermission(err):
		return New(denied, message).WithCause(err)
	default:
		return Internal(err)
	}
}

// HasCode reports whether err carries the given taxonomy code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
