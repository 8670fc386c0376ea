package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrStorageWrite   = errors.New("storage write failed")
)

// Codes carried in the error envelope of API responses.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeStorageWrite       = "STORAGE_WRITE_FAILED"
)

// kind maps a sentinel to its HTTP status and envelope code. A fixed message
// is used for failures whose cause must not reach the client.
type kind struct {
	sentinel error
	status   int
	code     string
	message  string
}

var kinds = []kind{
	{ErrNotFound, http.StatusNotFound, CodeNotFound, "resource not found"},
	{ErrConflict, http.StatusConflict, CodeConflict, ""},
	{ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput, ""},
	{ErrServiceUnavail, http.StatusServiceUnavailable, CodeServiceUnavailable, "service temporarily unavailable"},
	{ErrStorageWrite, http.StatusInsufficientStorage, CodeStorageWrite, "could not persist changes"},
}

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a missing resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Internal creates a 500 error. The cause is kept for logs only.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// ServiceUnavailable creates a 503 error for a dependency that is refusing work.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    CodeServiceUnavailable,
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// StorageWrite creates a 507 error for a write the backing store rejected.
// The cause stays reachable through errors.Is/As alongside ErrStorageWrite.
func StorageWrite(record string, cause error) *AppError {
	return &AppError{
		Code:    CodeStorageWrite,
		Message: fmt.Sprintf("could not persist %s", record),
		Status:  http.StatusInsufficientStorage,
		Err:     errors.Join(ErrStorageWrite, cause),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Describe returns the HTTP status, envelope code and client-facing message
// for err. An *AppError anywhere in the chain wins over a bare sentinel.
// Anything unrecognized is reported as an internal error.
func Describe(err error) (status int, code, message string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Code, appErr.Message
	}

	for _, k := range kinds {
		if !errors.Is(err, k.sentinel) {
			continue
		}
		message = k.message
		if message == "" {
			message = err.Error()
		}
		return k.status, k.code, message
	}
	return http.StatusInternalServerError, CodeInternal, "an internal error occurred"
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	status, _, _ := Describe(err)
	return status
}
