// Package errors defines the coded errors solutionmap returns from its
// outer surfaces: record sources, option validation, the HTTP API and the
// CLI. Hierarchy construction itself never fails on dirty records; it
// drops or reattaches them and counts what it did.
//
// Codes are grouped by prefix (INVALID_*, NOT_FOUND_*, SOURCE_*) and each
// maps onto one HTTP status:
//
//	err := errors.New(errors.ErrCodeInvalidView, "unknown view: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidView) {
//	    // 400
//	}
//
//	err = errors.Wrap(errors.ErrCodeSourceUnavailable, cause, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidView   Code = "INVALID_VIEW"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNodeNotFound    Code = "NOT_FOUND_NODE"
	ErrCodeSessionNotFound Code = "NOT_FOUND_SESSION"

	ErrCodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var statusByCode = map[Code]int{
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidView:       http.StatusBadRequest,
	ErrCodeInvalidFormat:     http.StatusBadRequest,
	ErrCodeInvalidConfig:     http.StatusBadRequest,
	ErrCodeInvalidPath:       http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeNodeNotFound:      http.StatusNotFound,
	ErrCodeSessionNotFound:   http.StatusNotFound,
	ErrCodeSourceUnavailable: http.StatusBadGateway,
	ErrCodeUnsupported:       http.StatusNotImplemented,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// Status returns the HTTP status for c; unknown codes are 500.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error carries a code, a message for users and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && t.Message == ""
}

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix from coded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err onto the status the API responds with.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}
