package adaptor

import (
	"car-rental/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Car     *CarHandler
	Booking *BookingHandler
	Payment *PaymentHandler
	Stats   *StatsHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Car:     NewCarHandler(service.Car, log),
		Booking: NewBookingHandler(service.Booking, log),
		Payment: NewPaymentHandler(service.Payment, log),
		Stats:   NewStatsHandler(service.Stats, log),
	}
}
