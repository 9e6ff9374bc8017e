package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending          BookingStatus = "pending"
	BookingStatusConfirmed        BookingStatus = "confirmed"
	BookingStatusNeedToBeReturned BookingStatus = "need_to_be_returned"
	BookingStatusCompleted        BookingStatus = "completed"
	BookingStatusCancelled        BookingStatus = "cancelled"
)

type BookingPaymentStatus string

const (
	BookingPaymentPending     BookingPaymentStatus = "pending"
	BookingPaymentDepositPaid BookingPaymentStatus = "deposit_paid"
	BookingPaymentPaid        BookingPaymentStatus = "paid"
	BookingPaymentRefunded    BookingPaymentStatus = "refunded"
	BookingPaymentFailed      BookingPaymentStatus = "failed"
)

// bookingTransitions is the allowed lifecycle graph. completed and
// cancelled are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:          {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:        {BookingStatusNeedToBeReturned, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusNeedToBeReturned: {BookingStatusCompleted},
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CountsAgainstAvailability reports whether a booking in this status blocks
// the requested date range for other customers.
func (s BookingStatus) CountsAgainstAvailability() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// HoldsUnit reports whether a booking in this status still owns an allocated
// inventory unit that must be released on cancel/complete/delete.
func (s BookingStatus) HoldsUnit() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed || s == BookingStatusNeedToBeReturned
}

type Booking struct {
	Base
	Reference       string               `db:"reference"`
	UserID          uuid.UUID            `db:"user_id"`
	CarID           uuid.UUID            `db:"car_id"`
	StartDate       time.Time            `db:"start_date"` // date precision
	EndDate         time.Time            `db:"end_date"`   // exclusive
	TotalPrice      int64                `db:"total_price"`
	DepositPercent  int                  `db:"deposit_percent"`
	DepositAmount   int64                `db:"deposit_amount"`
	PaidAmount      int64                `db:"paid_amount"`
	RemainingAmount int64                `db:"remaining_amount"`
	Status          BookingStatus        `db:"status"`
	PaymentStatus   BookingPaymentStatus `db:"payment_status"`
	PickupLocation  string               `db:"pickup_location"`
	Notes           *string              `db:"notes"`
}
