// Package errors provides the structured error type shared by every layer of
// pat-checker.  Repositories, services and transports all return *AppError (or
// wrap into one) so that HTTP handlers and the CLI can map a failure to a
// status code and a caller-safe message without string matching.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call stack starting above New/Wrap.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError carries a typed code, a caller-facing message, optional debugging
// detail and the underlying cause.  It supports errors.Is / errors.As through
// Unwrap.
//
//	return errors.New(errors.ErrCodeValidation, "patent_id is required")
//	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query patent")
type AppError struct {
	Code    ErrorCode
	Message string

	// Detail is logged but never returned to HTTP clients for 5xx codes.
	Detail string

	Cause error

	// Stack is excluded from Error() to keep messages short.
	Stack string
}

// Error renders "[CODE] message: detail: cause".
func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(e.Code.String())
	sb.WriteString("] ")
	sb.WriteString(e.Message)
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy of e with Detail set.  Safe on a nil receiver.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy of e with Cause set.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// HTTPStatus returns the HTTP status mapped to the error's code.
func (e *AppError) HTTPStatus() int {
	return HTTPStatusForCode(e.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Factories
// ─────────────────────────────────────────────────────────────────────────────

// New constructs an AppError with a captured stack.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with fmt formatting.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError around err.  It returns nil when err is nil so
// it can be used inline.  When code is CodeUnknown and err already carries an
// AppError, the inner code is kept.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		} else {
			code = ErrCodeInternal
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// NewValidationError constructs an ErrCodeValidation error.
func NewValidationError(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Stack: captureStack(1)}
}

// NewNotFoundError constructs an ErrCodeNotFound error.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message, Stack: captureStack(1)}
}

// NewUpstreamError constructs an ErrCodeUpstream error around cause.
func NewUpstreamError(cause error, message string) *AppError {
	return &AppError{Code: ErrCodeUpstream, Message: message, Cause: cause, Stack: captureStack(1)}
}

// NewSerializationError constructs an ErrCodeSerialization error around cause.
func NewSerializationError(cause error, message string) *AppError {
	return &AppError{Code: ErrCodeSerialization, Message: message, Cause: cause, Stack: captureStack(1)}
}

// Internal constructs an ErrCodeInternal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message, Stack: captureStack(1)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any AppError in err's chain has the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return false
		}
		if ae.Code == code {
			return true
		}
		err = ae.Cause
	}
	return false
}

// IsNotFound reports whether err's chain carries a not-found code.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound) || IsCode(err, ErrCodePatentNotFound)
}

// IsValidation reports whether err's chain carries ErrCodeValidation.
func IsValidation(err error) bool {
	return IsCode(err, ErrCodeValidation)
}

// IsUpstream reports whether err's chain carries an upstream-service code.
func IsUpstream(err error) bool {
	return IsCode(err, ErrCodeUpstream) || IsCode(err, ErrCodeAIInferenceFailed)
}

// GetCode returns the code of the first AppError in err's chain, CodeOK for
// nil and ErrCodeInternal for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeInternal
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

// As is errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }
