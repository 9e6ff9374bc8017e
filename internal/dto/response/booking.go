package response

import (
	"time"

	"car-rental/internal/data/entity"
)

type BookingResponse struct {
	ID              string                      `json:"id"`
	Reference       string                      `json:"reference"`
	UserID          string                      `json:"user_id"`
	CarID           string                      `json:"car_id"`
	CarName         string                      `json:"car_name,omitempty"`
	StartDate       string                      `json:"start_date"`
	EndDate         string                      `json:"end_date"`
	Days            int                         `json:"days"`
	TotalPrice      int64                       `json:"total_price"`
	DepositPercent  int                         `json:"deposit_percent"`
	DepositAmount   int64                       `json:"deposit_amount"`
	PaidAmount      int64                       `json:"paid_amount"`
	RemainingAmount int64                       `json:"remaining_amount"`
	Status          entity.BookingStatus        `json:"status"`
	PaymentStatus   entity.BookingPaymentStatus `json:"payment_status"`
	PickupLocation  string                      `json:"pickup_location"`
	Notes           *string                     `json:"notes,omitempty"`
	Payment         *PaymentResponse            `json:"payment,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking, carName string, payment *PaymentResponse) BookingResponse {
	days := int(booking.EndDate.Sub(booking.StartDate) / (24 * time.Hour))
	return BookingResponse{
		ID:              booking.ID.String(),
		Reference:       booking.Reference,
		UserID:          booking.UserID.String(),
		CarID:           booking.CarID.String(),
		CarName:         carName,
		StartDate:       booking.StartDate.Format("2006-01-02"),
		EndDate:         booking.EndDate.Format("2006-01-02"),
		Days:            days,
		TotalPrice:      booking.TotalPrice,
		DepositPercent:  booking.DepositPercent,
		DepositAmount:   booking.DepositAmount,
		PaidAmount:      booking.PaidAmount,
		RemainingAmount: booking.RemainingAmount,
		Status:          booking.Status,
		PaymentStatus:   booking.PaymentStatus,
		PickupLocation:  booking.PickupLocation,
		Notes:           booking.Notes,
		Payment:         payment,
		CreatedAt:       booking.CreatedAt,
	}
}
