package request

type SubmitPaymentRequest struct {
	BookingID     string  `json:"booking_id" validate:"required,uuid4"`
	Amount        int64   `json:"amount" validate:"required,min=1"`
	Currency      string  `json:"currency" validate:"omitempty,len=3"`
	Method        string  `json:"method" validate:"required,oneof=bank_transfer card cash"`
	TransactionID *string `json:"transaction_id,omitempty" validate:"omitempty,max=64"`
	SenderCard    *string `json:"sender_card,omitempty" validate:"omitempty,min=4,max=32"`
	ReceiptURL    *string `json:"receipt_url,omitempty" validate:"omitempty,max=512"`
	TransactionAt *string `json:"transaction_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type VerifyPaymentRequest struct {
	Approved bool    `json:"approved"`
	Reason   *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
