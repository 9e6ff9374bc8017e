package request

type CreateBookingRequest struct {
	CarID          string  `json:"car_id" validate:"required,uuid4"`
	StartDate      string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	PickupLocation string  `json:"pickup_location" validate:"required,min=3,max=120"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed need_to_be_returned completed cancelled"`
}
