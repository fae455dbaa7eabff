// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Error codes used across the payment schedule API.
const (
	CodeNotFound                   = "not_found"
	CodeOrganizationNotFound       = "organization_not_found"
	CodeDocumentNotFound           = "document_not_found"
	CodeScheduleLineNotFound       = "schedule_line_not_found"
	CodeValidationFailed           = "validation_failed"
	CodeSchedulePercentageMismatch = "schedule_percentage_mismatch"
	CodeScheduleEmpty              = "schedule_empty"
	CodeInvalidStatus              = "invalid_status"
	CodeScheduleLocked             = "schedule_locked"
	CodeBadRequest                 = "bad_request"
	CodeUnauthorized               = "unauthorized"
	CodeInvalidCredentials         = "invalid_credentials"
	CodeInternal                   = "internal_error"
)

// Error carries a kind, a stable code, optional per-field messages and the
// underlying cause. The cause is for logs only and never reaches clients.
type Error struct {
	Kind   Kind
	Code   string
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same code, so sentinel-style checks work:
// errors.Is(err, apperr.New(apperr.KindValidation, apperr.CodeSchedulePercentageMismatch)).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Kind == e.Kind
}

// New builds an error without cause.
func New(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// NotFound reports a missing organization, document or line.
func NotFound(code string) *Error {
	return &Error{Kind: KindNotFound, Code: code}
}

// Validation reports field-level violations.
func Validation(code string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Code: code, Fields: fields}
}

// Conflict reports a concurrent modification.
func Conflict(code string, err error) *Error {
	return &Error{Kind: KindConflict, Code: code, Err: err}
}

// Unauthorized reports a missing or rejected identity.
func Unauthorized(code string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts the *Error from err, wrapping foreign errors as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
