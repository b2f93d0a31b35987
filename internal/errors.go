package internal

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeIntegrity  ErrorType = "INTEGRITY_ERROR"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidSchedule  ErrorCode = "INVALID_SCHEDULE"
	ErrCodeInvalidTimezone  ErrorCode = "INVALID_TIMEZONE"
	ErrCodeGuildNotFound    ErrorCode = "GUILD_NOT_FOUND"

	ErrCodeShiftNotFound      ErrorCode = "SHIFT_NOT_FOUND"
	ErrCodeShiftAlreadyActive ErrorCode = "SHIFT_ALREADY_ACTIVE"
	ErrCodeShiftCorrupted     ErrorCode = "SHIFT_CORRUPTED"
	ErrCodeCodeSpaceExhausted ErrorCode = "CODE_SPACE_EXHAUSTED"

	ErrCodeCycleNotFound ErrorCode = "CYCLE_NOT_FOUND"

	ErrCodeActionNotFound     ErrorCode = "ACTION_NOT_FOUND"
	ErrCodeLeaveAlreadyActive ErrorCode = "LEAVE_ALREADY_ACTIVE"
)

type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewIntegrityError marks state that normal operation cannot produce, such as
// an ended shift with no recorded duration. Callers must be able to tell it
// apart from plain not-found.
func NewIntegrityError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeIntegrity,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrGuildNotFound = NewNotFoundError("guild is not configured", ErrCodeGuildNotFound)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}
