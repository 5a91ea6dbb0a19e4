package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// CustomError carries an error code and the HTTP status it maps to.
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a CustomError with the same code, so detailed
// instances match the package sentinels under errors.Is.
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a CustomError.
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"      // 400
	ErrCodeUnauthorized        = "UNAUTHORIZED"         // 401
	ErrCodeNotFound            = "NOT_FOUND"            // 404
	ErrCodeNoActivePlan        = "NO_ACTIVE_PLAN"       // 409
	ErrCodeInsufficientCatalog = "INSUFFICIENT_CATALOG" // 422
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"    // 429
	ErrCodeInternalError       = "INTERNAL_ERROR"       // 500
)

// Sentinels. Match with errors.Is; never mutate them, use the constructors
// below to attach details.
var (
	ErrInvalidRequest      = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized", http.StatusUnauthorized, nil)
	ErrNotFound            = NewError(ErrCodeNotFound, "not found", http.StatusNotFound, nil)
	ErrNoActivePlan        = NewError(ErrCodeNoActivePlan, "no menu has been generated yet", http.StatusConflict, nil)
	ErrInsufficientCatalog = NewError(ErrCodeInsufficientCatalog, "not enough recipes to generate a menu", http.StatusUnprocessableEntity, nil)
	ErrTooManyRequests     = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)
	ErrInternalError       = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
)

func derive(base *CustomError, err error) *CustomError {
	return NewError(base.Code, base.Message, base.Status, err)
}

// NotFound reports a missing recipe, day, extra meal or shopping item.
func NotFound(format string, args ...interface{}) error {
	return derive(ErrNotFound, fmt.Errorf(format, args...))
}

// Invalid reports malformed input.
func Invalid(format string, args ...interface{}) error {
	return derive(ErrInvalidRequest, fmt.Errorf(format, args...))
}

// InsufficientCatalog reports a catalog too small to plan from.
func InsufficientCatalog(count int) error {
	return derive(ErrInsufficientCatalog, fmt.Errorf("catalog has %d recipes, need at least 2", count))
}

// Internal wraps an unexpected failure, typically from a store.
func Internal(err error) error {
	return derive(ErrInternalError, err)
}

// AsCustomError extracts the CustomError in err's chain, falling back to an
// internal error.
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return derive(ErrInternalError, err)
}

// ValidationError reports a request that failed binding or validation.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) error {
	return &ValidationError{message: message}
}
