package response

import (
	"car-rental/internal/data/entity"
	"time"
)

type CarResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Brand          string  `json:"brand"`
	DailyRate      int64   `json:"daily_rate"`
	TotalCount     int     `json:"total_count"`
	AvailableCount int     `json:"available_count"`
	BookedCount    int     `json:"booked_count"`
	Available      bool    `json:"available"`
	Location       string  `json:"location"`
	ImageURL       *string `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type AvailabilityResponse struct {
	CarID     string `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func CarToResponse(car *entity.Car) CarResponse {
	return CarResponse{
		ID:             car.ID.String(),
		Name:           car.Name,
		Brand:          car.Brand,
		DailyRate:      car.DailyRate,
		TotalCount:     car.TotalCount,
		AvailableCount: car.AvailableCount,
		BookedCount:    car.BookedCount,
		Available:      car.Available,
		Location:       car.Location,
		ImageURL:       car.ImageURL,
		CreatedAt:      car.CreatedAt,
	}
}
