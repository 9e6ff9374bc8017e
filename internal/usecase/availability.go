package usecase

import (
	"context"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityChecker decides whether a unit can be allocated for a date
// range. The counter check is the hard guard; the overlap search over active
// bookings is defense in depth. With more than one unit per listing the
// overlap count is an approximation because the ledger does not track which
// physical unit a booking holds.
type AvailabilityChecker struct {
	cars     repository.CarRepository
	bookings repository.BookingRepository
	log      *zap.Logger
}

func NewAvailabilityChecker(cars repository.CarRepository, bookings repository.BookingRepository, log *zap.Logger) *AvailabilityChecker {
	return &AvailabilityChecker{
		cars:     cars,
		bookings: bookings,
		log:      log.With(zap.String("component", "availability")),
	}
}

// Check returns the car when a unit can be allocated for [start, end).
// Failure modes: repository.ErrCarNotFound, repository.ErrNoUnitsAvailable,
// ErrDateRangeConflict.
func (c *AvailabilityChecker) Check(ctx context.Context, carID uuid.UUID, start, end time.Time) (*entity.Car, error) {
	car, err := c.cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, repository.ErrCarNotFound
	}

	if car.AvailableCount <= 0 {
		return nil, repository.ErrNoUnitsAvailable
	}

	overlapping, err := c.bookings.CountActiveOverlapping(ctx, carID, start, end)
	if err != nil {
		return nil, err
	}

	if overlapping >= car.TotalCount {
		c.log.Info("Date range conflict",
			zap.String("car_id", carID.String()),
			zap.Int("overlapping", overlapping),
			zap.Int("total_count", car.TotalCount),
		)
		return nil, ErrDateRangeConflict
	}

	return car, nil
}
