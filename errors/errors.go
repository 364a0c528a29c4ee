package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries the HTTP status, a stable machine-readable name, and a
// user-facing message for every failure the service can surface.
type AppError struct {
	Code    int                 `json:"status"`
	Name    string              `json:"name"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
	Op      string              `json:"-"`
	Err     error               `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, name, message, op string, err error) *AppError {
	return &AppError{
		Code:    code,
		Name:    name,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return New(http.StatusBadRequest, "ValidationError", message, op, err)
}

// Validation builds a field-level validation error with per-field messages.
func Validation(op string, details map[string][]string) *AppError {
	e := InvalidInput(op, nil, "Validation failed")
	e.Details = details
	return e
}

func Unauthorized(op string, err error, message string) *AppError {
	return New(http.StatusUnauthorized, "UnauthorizedError", message, op, err)
}

func InsufficientCredits(op string) *AppError {
	return New(
		http.StatusPaymentRequired,
		"InsufficientCredits",
		"Not enough credits to generate a summary",
		op,
		nil,
	)
}

func Timeout(op string, err error) *AppError {
	return New(
		http.StatusRequestTimeout,
		"TimeoutError",
		"The request timed out. Please try again.",
		op,
		err,
	)
}

func Network(op string, err error) *AppError {
	message := "Unknown network error"
	if err != nil {
		message = err.Error()
	}
	return New(http.StatusInternalServerError, "NetworkError", message, op, err)
}

func NotFound(op string, err error, message string) *AppError {
	return New(http.StatusNotFound, "NotFoundError", message, op, err)
}

// RemoteService wraps a non-2xx reply from the CMS or the completion
// provider, keeping the remote message intact apart from known localized
// overrides.
func RemoteService(op string, code int, name, message string) *AppError {
	if name == "" {
		name = "RemoteServiceError"
	}
	return New(code, name, Translate(message), op, nil)
}

func Internal(op string, err error, message string) *AppError {
	return New(http.StatusInternalServerError, "InternalError", message, op, err)
}

func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

func IsUnauthorized(err error) bool {
	return hasCode(err, http.StatusUnauthorized)
}

func IsTimeout(err error) bool {
	return hasCode(err, http.StatusRequestTimeout)
}

func IsInsufficientCredits(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Name == "InsufficientCredits"
}

func hasCode(err error, code int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Code returns the HTTP status for an error, defaulting to 500 for anything
// that is not an AppError.
func Code(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// From returns the AppError inside err, or wraps err as an internal error.
func From(op string, err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(op, err, "Internal server error")
}
