// Package errors provides custom error types for the cafecitos API.
// All service-layer errors use AppError so that every guard rejection
// reaches the operator as a distinct, user-facing message without
// leaking internal details. The domain guard messages are in Spanish
// because they are shown verbatim to café staff.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Ledger errors. Rejections are terminal: nothing is partially applied
// and the caller must resubmit. STORAGE_UNAVAILABLE is the only
// retryable kind.
var (
	ErrValidation              = &AppError{Code: "VALIDATION_ERROR", Message: "La transacción no es válida", StatusCode: http.StatusBadRequest}
	ErrPermissionDenied        = &AppError{Code: "PERMISSION_DENIED", Message: "No tenés permiso para esta operación", StatusCode: http.StatusForbidden}
	ErrConsumerNotFound        = &AppError{Code: "CONSUMER_NOT_FOUND", Message: "No encontramos una cuenta con ese número de identidad", StatusCode: http.StatusNotFound}
	ErrInvalidRole             = &AppError{Code: "INVALID_ROLE", Message: "Esa cuenta no es de consumidor", StatusCode: http.StatusBadRequest}
	ErrSelfServiceForbidden    = &AppError{Code: "SELF_SERVICE_FORBIDDEN", Message: "No podés canjearte tus propios cafecitos", StatusCode: http.StatusForbidden}
	ErrInsufficientBalance     = &AppError{Code: "INSUFFICIENT_BALANCE", Message: "Saldo insuficiente", StatusCode: http.StatusBadRequest}
	ErrInsufficientCafeBalance = &AppError{Code: "INSUFFICIENT_CAFE_BALANCE", Message: "Saldo insuficiente en este café", StatusCode: http.StatusBadRequest}
	ErrSameProfileTransfer     = &AppError{Code: "SAME_PROFILE_TRANSFER", Message: "No se pueden transferir cafecitos a la misma cuenta", StatusCode: http.StatusBadRequest}
	ErrStorageUnavailable      = &AppError{Code: "STORAGE_UNAVAILABLE", Message: "No pudimos guardar la operación, probá de nuevo", StatusCode: http.StatusServiceUnavailable}
)

// Directory errors.
var (
	ErrProfileNotFound = &AppError{Code: "PROFILE_NOT_FOUND", Message: "Profile not found", StatusCode: http.StatusNotFound}
	ErrCafeNotFound    = &AppError{Code: "CAFE_NOT_FOUND", Message: "Cafe not found", StatusCode: http.StatusNotFound}
	ErrStaffNotFound   = &AppError{Code: "STAFF_NOT_FOUND", Message: "Staff member not found", StatusCode: http.StatusNotFound}
)
