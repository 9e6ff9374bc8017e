package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	statsHandler *adaptor.StatsHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/payments - submit a deposit payment for verification
		r.Post("/api/payments", paymentHandler.SubmitPayment)

		// POST /api/payments/receipt - upload a transfer receipt (multipart)
		r.Post("/api/payments/receipt", paymentHandler.UploadReceipt)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/payments", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/payments - verification queue
		r.Get("/", paymentHandler.GetPendingPayments)

		// POST /api/admin/payments/{id}/verify - approve or reject
		r.Post("/{id}/verify", paymentHandler.VerifyPayment)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/stats - cached fleet dashboard
		r.Get("/api/admin/stats", statsHandler.GetFleetStats)
	})
}
