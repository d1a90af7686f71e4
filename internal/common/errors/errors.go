// Package errors provides the application error type shared by services and handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes, one per failure kind.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeBusinessRule     = "BUSINESS_RULE_VIOLATION"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// FieldViolation describes one rejected input field.
type FieldViolation struct {
	Field         string `json:"field"`
	Message       string `json:"message"`
	RejectedValue any    `json:"rejected_value,omitempty"`
}

// AppError represents an application-specific error with additional context.
type AppError struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	HTTPStatus int              `json:"http_status"`
	Reason     string           `json:"reason,omitempty"`
	Context    map[string]any   `json:"context,omitempty"`
	Violations []FieldViolation `json:"violations,omitempty"`
	Err        error            `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithReason sets a detail code and returns the same error.
func (e *AppError) WithReason(reason string) *AppError {
	e.Reason = reason
	return e
}

// Validation creates a validation error from one or more field violations.
func Validation(violations ...FieldViolation) *AppError {
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    fmt.Sprintf("invalid input: %s", strings.Join(fields, ", ")),
		HTTPStatus: http.StatusBadRequest,
		Violations: violations,
	}
}

// ValidationError creates a validation error for a single field.
func ValidationError(field, message string, rejected any) *AppError {
	return Validation(FieldViolation{Field: field, Message: message, RejectedValue: rejected})
}

// NotFound creates a not found error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:       ErrCodeNotFound,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates an error for a request without a usable identity.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       ErrCodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// PermissionDenied creates an authorization failure.
func PermissionDenied(message string) *AppError {
	return &AppError{
		Code:       ErrCodePermissionDenied,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a state conflict error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:       ErrCodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// BusinessRule creates a policy violation carrying a detail code and context values.
func BusinessRule(reason, message string, ctx map[string]any) *AppError {
	return &AppError{
		Code:       ErrCodeBusinessRule,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Reason:     reason,
		Context:    ctx,
	}
}

// Internal creates an internal error wrapping the collaborator failure.
// The underlying message is kept in Message so callers can surface it.
func Internal(message string, err error) *AppError {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", message, err.Error())
	}
	return &AppError{
		Code:       ErrCodeInternalError,
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Wrap wraps an existing error with additional context, returning an AppError.
// AppErrors keep their code and status; anything else becomes an internal error.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:       appErr.Code,
			Message:    fmt.Sprintf("%s: %s", message, appErr.Message),
			HTTPStatus: appErr.HTTPStatus,
			Reason:     appErr.Reason,
			Context:    appErr.Context,
			Violations: appErr.Violations,
			Err:        err,
		}
	}
	return Internal(message, err)
}

// CodeOf returns the AppError code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code string) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return Is(err, ErrCodeNotFound)
}

// ReasonOf returns the detail code of an AppError, if any.
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// GetHTTPStatus returns the HTTP status code for an error.
// Returns 500 Internal Server Error if the error is not an AppError.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
