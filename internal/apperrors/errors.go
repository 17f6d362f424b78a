package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientBalance indicates a debit would take a balance below zero.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrInsufficientAvailable indicates a debit or reservation exceeds the
// available (total minus reserved) part of a balance.
var ErrInsufficientAvailable = errors.New("insufficient available balance")

// ErrRateNotFound indicates no direct, inverse or intermediary exchange rate
// exists for a currency pair.
var ErrRateNotFound = errors.New("exchange rate not found")

// ErrStateTransition indicates an operation was attempted on a transaction
// or transfer that is not in the required state.
var ErrStateTransition = errors.New("invalid state transition")

// ErrConcurrencyConflict indicates the underlying store reported a
// serialization failure or lock timeout and internal retries were exhausted.
// The caller may retry the whole operation.
var ErrConcurrencyConflict = errors.New("concurrent update conflict")

// ErrForbidden indicates the actor is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not allowed")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level error with an HTTP-ish status code and a
// message safe to surface to callers.
type AppError struct {
	Code    int
	Message string
	Err     error
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

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
