package usecase

import (
	"car-rental/internal/data/repository"
	"car-rental/internal/notify"
	"car-rental/internal/storage"
	"car-rental/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Car     CarService
	Booking BookingService
	Payment PaymentService
	Stats   StatsService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	notifier notify.Notifier,
	receipts storage.ReceiptStore,
	redisClient *redis.Client,
	log *zap.Logger,
) *Service {
	checker := NewAvailabilityChecker(repo.Car, repo.Booking, log)
	stats := NewStatsService(repo, redisClient, log)

	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Car:     NewCarService(repo, checker, stats, log),
		Booking: NewBookingService(repo, checker, notifier, stats, log),
		Payment: NewPaymentService(repo, receipts, notifier, stats, log),
		Stats:   stats,
	}
}
