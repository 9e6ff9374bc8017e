package usecase

import (
	"errors"
	"fmt"

	"car-rental/pkg/utils"
)

// Business-rule errors surfaced to handlers. Matched with errors.Is/As
// instead of string comparison so every layer agrees on the taxonomy.
var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrCarUnavailable     = errors.New("car is not available for booking")
	ErrDateRangeConflict  = errors.New("requested dates conflict with existing bookings")
	ErrDuplicatePayment   = errors.New("an unresolved payment already exists for this booking")
	ErrForbidden          = errors.New("caller is not allowed to access this resource")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// IllegalTransitionError rejects a lifecycle step from an invalid source
// state. Well-behaved clients never trigger it, so handlers log it as a
// warning rather than an operational failure.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// ValidationError carries per-field messages back to the caller.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
