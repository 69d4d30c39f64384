package errors

import (
	stderrors "errors"
	"net/http"
)

// Kind classifies a domain failure. Each kind maps to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindConflict
	KindSlotConflict
	KindValidation
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindConflict:
		return "Conflict"
	case KindSlotConflict:
		return "SlotConflict"
	case KindValidation:
		return "Validation"
	case KindUnauthenticated:
		return "Unauthenticated"
	default:
		return "Internal"
	}
}

// HTTPStatus returns the response status for a kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindConflict, KindSlotConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a classified error returned by the service layer.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
}

func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches another AppError by identity, or by kind when the target carries no code.
// This lets errors.Is(err, ErrNotFound) hold for every not-found sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// Kind sentinels for errors.Is checks.
var (
	ErrNotFound        = &AppError{Kind: KindNotFound}
	ErrUnauthorized    = &AppError{Kind: KindUnauthorized}
	ErrConflict        = &AppError{Kind: KindConflict}
	ErrSlotConflict    = &AppError{Kind: KindSlotConflict}
	ErrValidation      = &AppError{Kind: KindValidation}
	ErrUnauthenticated = &AppError{Kind: KindUnauthenticated}
)

// Validation builds an ad hoc validation error.
func Validation(code, message string) *AppError {
	return New(KindValidation, code, message)
}

// KindOf reports the kind of err, KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
