package apperrors

import (
	"errors"
	"net/http"
)

const (
	CodeMalformedIdentifier = "MALFORMED_IDENTIFIER"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeStorage             = "STORAGE_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    []string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = append(e.Details, details...)
	return e
}

func MalformedIdentifier(message string) *AppError {
	return New(CodeMalformedIdentifier, message, http.StatusBadRequest)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// Storage envuelve una falla de base de datos o disco; la causa viaja en la respuesta.
func Storage(message string, err error) *AppError {
	return New(CodeStorage, message, http.StatusInternalServerError).WithError(err)
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
