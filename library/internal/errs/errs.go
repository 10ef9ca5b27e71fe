package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds. Every domain error wraps exactly one of them.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBusinessRule = errors.New("business rule violated")
	ErrUnauthorized = errors.New("authentication failed")
	ErrForbidden    = errors.New("access denied")
)

type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func New(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id any) error {
	return New(ErrNotFound, "%s not found with id: %v", entity, id)
}

func Conflict(format string, args ...any) error {
	return New(ErrConflict, format, args...)
}

func Business(format string, args ...any) error {
	return New(ErrBusinessRule, format, args...)
}

func Validation(format string, args ...any) error {
	return New(ErrValidation, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return New(ErrUnauthorized, format, args...)
}

var (
	ErrBookUnavailable  = Business("book is not available for borrowing")
	ErrMemberInactive   = Business("member is not active")
	ErrBorrowLimit      = Business("member has reached maximum borrowing limit")
	ErrAlreadyReturned  = Business("book has already been returned")
	ErrCircularCategory = Business("circular reference detected in category hierarchy")
	ErrBadCredentials   = Unauthorized("invalid username or password")
	ErrInactiveUser     = Unauthorized("user account is disabled")
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeBusiness       = "BUSINESS_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

// Classify returns the HTTP status and error code for err's kind.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, ErrBusinessRule):
		return http.StatusConflict, CodeBusiness
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, CodeAuthentication
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, CodeAuthorization
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// CodeForStatus maps a bare HTTP status onto the error code space.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return CodeValidation
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnauthorized:
		return CodeAuthentication
	case http.StatusForbidden:
		return CodeAuthorization
	}
	if status < http.StatusInternalServerError {
		return CodeValidation
	}
	return CodeInternal
}
