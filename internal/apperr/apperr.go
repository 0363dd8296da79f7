package apperr

import (
	"errors"
	"net/http"
)

// Error is a recoverable domain error carrying the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, msg)
}

func Validation(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

func Conflict(msg string) *Error {
	return New(http.StatusConflict, msg)
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, msg)
}

// StatusOf extracts the HTTP status from err, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == status
}
