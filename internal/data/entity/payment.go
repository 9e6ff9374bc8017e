package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Resolved reports whether the payment reached a final state. A booking may
// only carry one unresolved payment at a time.
func (s PaymentStatus) Resolved() bool {
	return s != PaymentStatusPending && s != PaymentStatusProcessing
}

// Payment is one manual deposit submission awaiting admin verification.
type Payment struct {
	Base
	BookingID     uuid.UUID     `db:"booking_id"`
	UserID        uuid.UUID     `db:"user_id"`
	Amount        int64         `db:"amount"`
	Currency      string        `db:"currency"`
	Method        string        `db:"method"`
	Status        PaymentStatus `db:"status"`
	TransactionID *string       `db:"transaction_id"`
	SenderCard    *string       `db:"sender_card"`
	ReceiptURL    *string       `db:"receipt_url"`
	TransactionAt *time.Time    `db:"transaction_at"`
	FailureReason *string       `db:"failure_reason"`
	PaidAt        *time.Time    `db:"paid_at"`
	RefundedAt    *time.Time    `db:"refunded_at"`
}
