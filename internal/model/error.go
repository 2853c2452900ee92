// internal/model/error.go
package model

import "errors"

// Application level sentinel errors.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("resource conflict")
	// ErrSchemaMissing marks the expected first-use state where the backing
	// table does not exist yet. Callers treat it like "start from zero" and
	// must not log it as an error.
	ErrSchemaMissing = errors.New("schema not migrated")
)

// ErrorDetail is the error payload returned to clients.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse wraps an ErrorDetail for JSON responses.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError carries a client-facing detail plus a wrapped sentinel used for
// HTTP status mapping.
type AppError struct {
	Detail  ErrorDetail
	wrapped error
}

func NewAppError(code, message, field string, wrapped error) *AppError {
	return &AppError{
		Detail:  ErrorDetail{Code: code, Message: message, Field: field},
		wrapped: wrapped,
	}
}

func (e *AppError) Error() string {
	if e.wrapped != nil {
		return e.Detail.Code + ": " + e.wrapped.Error()
	}
	return e.Detail.Code + ": " + e.Detail.Message
}

func (e *AppError) Unwrap() error {
	return e.wrapped
}
