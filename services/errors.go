package services

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindServer Kind = iota
	KindUnauthorized
	KindAdminRequired
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
)

// Error là lỗi nghiệp vụ, controller map sang HTTP status.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindAdminRequired, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ErrUnauthorized(msg string) *Error { return newErr(KindUnauthorized, "%s", msg) }
func ErrNotFound(msg string) *Error     { return newErr(KindNotFound, "%s", msg) }
func ErrValidation(msg string) *Error   { return newErr(KindValidation, "%s", msg) }
func ErrConflict(msg string) *Error     { return newErr(KindConflict, "%s", msg) }
func ErrForbidden(msg string) *Error    { return newErr(KindForbidden, "%s", msg) }

var ErrAdminRequired = &Error{Kind: KindAdminRequired, Message: "Admin access required"}

// KindOf trả về KindServer nếu err không phải *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}
