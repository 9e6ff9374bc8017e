package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// allocateAfterReadCarRepo books a unit right after a car is read, modeling
// a customer booking that lands between an admin's read and write.
type allocateAfterReadCarRepo struct {
	*fakeCarRepo
	allocated sync.Once
}

func (r *allocateAfterReadCarRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	car, err := r.fakeCarRepo.FindByID(ctx, id)
	if err == nil && car != nil {
		r.allocated.Do(func() {
			_ = r.fakeCarRepo.Allocate(ctx, id)
		})
	}
	return car, err
}

type carEnv struct {
	cars     *fakeCarRepo
	bookings *fakeBookingRepo
	svc      CarService
}

func newCarEnv(cars ...*entity.Car) *carEnv {
	env := &carEnv{
		cars:     newFakeCarRepo(cars...),
		bookings: newFakeBookingRepo(),
	}

	repo := testRepository(env.cars, env.bookings, newFakePaymentRepo())
	checker := NewAvailabilityChecker(env.cars, env.bookings, zap.NewNop())
	env.svc = NewCarService(repo, checker, &fakeStats{}, zap.NewNop())
	return env
}

func TestCreateCar(t *testing.T) {
	env := newCarEnv()

	resp, err := env.svc.CreateCar(context.Background(), &request.CreateCarRequest{
		Name:       "Avanza",
		Brand:      "Toyota",
		DailyRate:  100_000,
		TotalCount: 3,
		Location:   "Jakarta",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, 3, resp.AvailableCount)
	assert.Zero(t, resp.BookedCount)
	assert.True(t, resp.Available)
}

func TestUpdateCar(t *testing.T) {
	t.Run("total change re-derives the available counter", func(t *testing.T) {
		car := testCar(3, 100_000)
		car.BookedCount = 2
		car.AvailableCount = 1
		env := newCarEnv(car)

		resp, err := env.svc.UpdateCar(context.Background(), car.ID.String(), &request.UpdateCarRequest{
			Name:       car.Name,
			Brand:      car.Brand,
			DailyRate:  car.DailyRate,
			TotalCount: 5,
			Location:   car.Location,
		})
		require.NoError(t, err)

		assert.Equal(t, 5, resp.TotalCount)
		assert.Equal(t, 3, resp.AvailableCount)
		assert.Equal(t, 2, resp.BookedCount)
	})

	t.Run("an allocation racing with the edit is not overwritten", func(t *testing.T) {
		car := testCar(2, 100_000)
		cars := &allocateAfterReadCarRepo{fakeCarRepo: newFakeCarRepo(car)}
		bookings := newFakeBookingRepo()
		repo := &repository.Repository{Car: cars, Booking: bookings, Payment: newFakePaymentRepo()}
		checker := NewAvailabilityChecker(cars, bookings, zap.NewNop())
		svc := NewCarService(repo, checker, &fakeStats{}, zap.NewNop())

		// The unit allocated between the read and the write survives the
		// edit: the counters come from the stored booked_count, not from the
		// snapshot the service read.
		resp, err := svc.UpdateCar(context.Background(), car.ID.String(), &request.UpdateCarRequest{
			Name:       car.Name,
			Brand:      car.Brand,
			DailyRate:  car.DailyRate,
			TotalCount: 3,
			Location:   car.Location,
		})
		require.NoError(t, err)

		assert.Equal(t, 3, resp.TotalCount)
		assert.Equal(t, 1, resp.BookedCount)
		assert.Equal(t, 2, resp.AvailableCount)

		available, booked := cars.fakeCarRepo.counters(car.ID)
		assert.Equal(t, 2, available)
		assert.Equal(t, 1, booked)
	})

	t.Run("total cannot drop below the booked units", func(t *testing.T) {
		car := testCar(3, 100_000)
		car.BookedCount = 2
		car.AvailableCount = 1
		env := newCarEnv(car)

		_, err := env.svc.UpdateCar(context.Background(), car.ID.String(), &request.UpdateCarRequest{
			Name:       car.Name,
			Brand:      car.Brand,
			DailyRate:  car.DailyRate,
			TotalCount: 1,
			Location:   car.Location,
		})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "total_count")
	})

	t.Run("unknown car", func(t *testing.T) {
		env := newCarEnv()

		_, err := env.svc.UpdateCar(context.Background(), uuid.New().String(), &request.UpdateCarRequest{
			Name:       "Avanza",
			Brand:      "Toyota",
			DailyRate:  100_000,
			TotalCount: 1,
			Location:   "Jakarta",
		})
		assert.ErrorIs(t, err, repository.ErrCarNotFound)
	})
}

func TestCheckAvailability(t *testing.T) {
	t.Run("available when units remain and dates are free", func(t *testing.T) {
		car := testCar(1, 100_000)
		env := newCarEnv(car)

		resp, err := env.svc.CheckAvailability(context.Background(), car.ID.String(), futureDate(7), futureDate(10))
		require.NoError(t, err)
		assert.True(t, resp.Available)
		assert.Empty(t, resp.Reason)
	})

	t.Run("reports exhausted counters", func(t *testing.T) {
		car := testCar(1, 100_000)
		car.AvailableCount = 0
		car.BookedCount = 1
		car.Available = false
		env := newCarEnv(car)

		resp, err := env.svc.CheckAvailability(context.Background(), car.ID.String(), futureDate(7), futureDate(10))
		require.NoError(t, err)
		assert.False(t, resp.Available)
		assert.Equal(t, "no units available", resp.Reason)
	})

	t.Run("reports date conflicts on the half-open range", func(t *testing.T) {
		car := testCar(1, 100_000)
		env := newCarEnv(car)

		start, _ := time.ParseInLocation("2006-01-02", futureDate(7), time.UTC)
		end, _ := time.ParseInLocation("2006-01-02", futureDate(10), time.UTC)
		existing := &entity.Booking{
			Base:      entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
			Reference: "RENT-TEST-0002",
			UserID:    uuid.New(),
			CarID:     car.ID,
			StartDate: start,
			EndDate:   end,
			Status:    entity.BookingStatusConfirmed,
		}
		require.NoError(t, env.bookings.Create(context.Background(), existing))

		// Overlapping request
		resp, err := env.svc.CheckAvailability(context.Background(), car.ID.String(), futureDate(9), futureDate(12))
		require.NoError(t, err)
		assert.False(t, resp.Available)
		assert.NotEmpty(t, resp.Reason)

		// Back-to-back is allowed: the previous rental ends the day the next starts
		resp, err = env.svc.CheckAvailability(context.Background(), car.ID.String(), futureDate(10), futureDate(12))
		require.NoError(t, err)
		assert.True(t, resp.Available)
	})

	t.Run("invalid range", func(t *testing.T) {
		car := testCar(1, 100_000)
		env := newCarEnv(car)

		_, err := env.svc.CheckAvailability(context.Background(), car.ID.String(), futureDate(10), futureDate(7))
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}
