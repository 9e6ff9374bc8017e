package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/response"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	statsCacheKey = "car-rental:stats:fleet"
	statsCacheTTL = 30 * time.Second
)

// StatsInvalidator lets mutating services drop the cached aggregates
// without depending on the full stats service.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

type StatsService interface {
	StatsInvalidator
	GetFleetStats(ctx context.Context) (*response.FleetStatsResponse, error)
}

// statsService serves the admin dashboard aggregates from redis with a
// short TTL. Without a redis client it falls through to direct queries.
type statsService struct {
	repo  *repository.Repository
	redis *redis.Client
	log   *zap.Logger
}

func NewStatsService(repo *repository.Repository, redisClient *redis.Client, log *zap.Logger) StatsService {
	return &statsService{
		repo:  repo,
		redis: redisClient,
		log:   log.With(zap.String("service", "stats")),
	}
}

func (s *statsService) GetFleetStats(ctx context.Context) (*response.FleetStatsResponse, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var stats response.FleetStatsResponse
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsCacheKey, encoded, statsCacheTTL).Err(); err != nil {
				s.log.Warn("Failed to cache fleet stats", zap.Error(err))
			}
		}
	}

	return stats, nil
}

func (s *statsService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsCacheKey).Err(); err != nil {
		s.log.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}

func (s *statsService) compute(ctx context.Context) (*response.FleetStatsResponse, error) {
	totalCars, err := s.repo.Car.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("fleet stats: %w", err)
	}

	totalUnits, availableUnits, bookedUnits, err := s.repo.Car.FleetCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fleet stats: %w", err)
	}

	totalBookings, err := s.repo.Booking.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("fleet stats: %w", err)
	}

	activeBookings, err := s.repo.Booking.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("fleet stats: %w", err)
	}

	pendingPayments, err := s.repo.Payment.CountByStatus(ctx, entity.PaymentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("fleet stats: %w", err)
	}

	revenue, err := s.repo.Payment.SumCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("fleet stats: %w", err)
	}

	return &response.FleetStatsResponse{
		TotalCars:       totalCars,
		TotalUnits:      totalUnits,
		AvailableUnits:  availableUnits,
		BookedUnits:     bookedUnits,
		TotalBookings:   totalBookings,
		ActiveBookings:  activeBookings,
		PendingPayments: pendingPayments,
		VerifiedRevenue: revenue,
		GeneratedAt:     time.Now(),
	}, nil
}
