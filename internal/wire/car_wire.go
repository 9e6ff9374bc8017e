package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCar(
	r chi.Router,
	carHandler *adaptor.CarHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/cars - browse the fleet
	r.Get("/api/cars", carHandler.GetCars)

	// GET /api/cars/{id} - car details
	r.Get("/api/cars/{id}", carHandler.GetCarByID)

	// GET /api/cars/{id}/availability - counter + date overlap check
	r.Get("/api/cars/{id}/availability", carHandler.CheckAvailability)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/cars", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		// POST /api/admin/cars - add a listing
		r.Post("/", carHandler.CreateCar)

		// PUT /api/admin/cars/{id} - edit a listing (re-derives counters)
		r.Put("/{id}", carHandler.UpdateCar)
	})
}
