package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/bookings - place a reservation
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/user/bookings - caller's booking history
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		// GET /api/bookings/{id} - single booking (owner or admin)
		r.Get("/api/bookings/{id}", bookingHandler.GetBookingByID)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/bookings - all bookings
		r.Get("/", bookingHandler.GetAllBookings)

		// PATCH /api/admin/bookings/{id}/status - drive the lifecycle
		r.Patch("/{id}/status", bookingHandler.UpdateBookingStatus)

		// DELETE /api/admin/bookings/{id} - remove a booking, releasing its unit
		r.Delete("/{id}", bookingHandler.DeleteBooking)
	})
}
