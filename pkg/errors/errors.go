package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for callers and for the HTTP layer.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeDuplicateUser      Code = "DUPLICATE_USER"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeStorageFailure     Code = "STORAGE_FAILURE"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Metadata is how a code is surfaced outside the process.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func meta(status int, retryable bool, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, Retryable: retryable, PublicMessage: public, DetailsAllowed: details}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:         meta(http.StatusBadRequest, false, "validation failed", true),
	CodeUnauthorized:       meta(http.StatusUnauthorized, false, "authentication required", false),
	CodeNotFound:           meta(http.StatusNotFound, false, "resource not found", false),
	CodeConflict:           meta(http.StatusConflict, false, "conflict detected", false),
	CodeDuplicateUser:      meta(http.StatusConflict, false, "username already taken", false),
	CodeInvalidCredentials: meta(http.StatusUnauthorized, false, "invalid username or password", false),
	// The device store is single-writer; a locked or busy file clears on retry.
	CodeStorageFailure: meta(http.StatusServiceUnavailable, true, "storage unavailable", false),
	CodeInternal:       meta(http.StatusInternalServerError, false, "internal server error", false),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code to err. A nil err yields a plain New.
func Wrap(code Code, err error, message string) *Error {
	e := New(code, message)
	e.cause = err
	return e
}

// Storage marks err as a failed read or write against the device store.
func Storage(err error, op string) *Error {
	return Wrap(CodeStorageFailure, err, op)
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// Retryable reports whether the caller may repeat the operation unchanged.
func Retryable(err error) bool {
	typed := As(err)
	return typed != nil && MetadataFor(typed.Code()).Retryable
}
