package response

import (
	"time"

	"car-rental/internal/data/entity"
)

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	UserID        string               `json:"user_id"`
	Amount        int64                `json:"amount"`
	Currency      string               `json:"currency"`
	Method        string               `json:"method"`
	Status        entity.PaymentStatus `json:"status"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	SenderCard    *string              `json:"sender_card,omitempty"`
	ReceiptURL    *string              `json:"receipt_url,omitempty"`
	TransactionAt *time.Time           `json:"transaction_at,omitempty"`
	FailureReason *string              `json:"failure_reason,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	RefundedAt    *time.Time           `json:"refunded_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID.String(),
		BookingID:     payment.BookingID.String(),
		UserID:        payment.UserID.String(),
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Method:        payment.Method,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
		SenderCard:    payment.SenderCard,
		ReceiptURL:    payment.ReceiptURL,
		TransactionAt: payment.TransactionAt,
		FailureReason: payment.FailureReason,
		PaidAt:        payment.PaidAt,
		RefundedAt:    payment.RefundedAt,
		CreatedAt:     payment.CreatedAt,
	}
}

type ReceiptUploadResponse struct {
	URL string `json:"url"`
}
