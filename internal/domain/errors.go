package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrCarNotFound             = fmt.Errorf("car %w", ErrNotFound)
	ErrRequestNotFound         = fmt.Errorf("request %w", ErrNotFound)
	ErrRentalNotFound          = fmt.Errorf("rental %w", ErrNotFound)
	ErrRequestNotPending       = errors.New("request not found or not pending")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrRentalExists            = errors.New("a rental already exists for this request")
	ErrCarUnavailable          = errors.New("car is not available for the selected dates")
	ErrRateLimited             = errors.New("too many requests, please try again later")
	ErrInvalidCredentials      = errors.New("invalid email or password")
)

// ValidationError carries a message that is safe to show to the customer.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InconsistencyError reports a multi-step operation whose first step was
// committed and whose later step failed. The first step is not rolled back.
type InconsistencyError struct {
	Operation string
	Completed string
	Failed    string
	Err       error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s left inconsistent state: %s succeeded but %s failed: %v", e.Operation, e.Completed, e.Failed, e.Err)
}

func (e *InconsistencyError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsInconsistency(err error) bool {
	var ie *InconsistencyError
	return errors.As(err, &ie)
}
