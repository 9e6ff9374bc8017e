package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes. The car fake mirrors the conditional-update
// semantics of the ledger: allocate and release mutate the counters under
// a single lock and refuse when the guard fails.

type fakeCarRepo struct {
	mu   sync.Mutex
	cars map[uuid.UUID]*entity.Car
}

func newFakeCarRepo(cars ...*entity.Car) *fakeCarRepo {
	r := &fakeCarRepo{cars: make(map[uuid.UUID]*entity.Car)}
	for _, car := range cars {
		r.cars[car.ID] = car
	}
	return r
}

func (r *fakeCarRepo) Create(_ context.Context, car *entity.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cars[car.ID] = car
	return nil
}

func (r *fakeCarRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[id]
	if !ok {
		return nil, nil
	}
	copied := *car
	return &copied, nil
}

func (r *fakeCarRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Car
	for _, car := range r.cars {
		copied := *car
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeCarRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.cars)), nil
}

// Update mirrors the conditional statement of the real repository: the
// counters are re-derived from the stored booked_count, never taken from the
// caller, and a total below the booked units is refused.
func (r *fakeCarRepo) Update(_ context.Context, car *entity.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cars[car.ID]
	if !ok {
		return repository.ErrCarNotFound
	}
	if stored.BookedCount > car.TotalCount {
		return repository.ErrTotalBelowBooked
	}
	stored.Name = car.Name
	stored.Brand = car.Brand
	stored.DailyRate = car.DailyRate
	stored.TotalCount = car.TotalCount
	stored.AvailableCount = car.TotalCount - stored.BookedCount
	stored.Available = stored.AvailableCount > 0
	stored.Location = car.Location
	stored.ImageURL = car.ImageURL
	stored.UpdatedAt = car.UpdatedAt
	*car = *stored
	return nil
}

func (r *fakeCarRepo) Allocate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[id]
	if !ok {
		return repository.ErrCarNotFound
	}
	if car.AvailableCount <= 0 {
		return repository.ErrNoUnitsAvailable
	}
	car.AvailableCount--
	car.BookedCount++
	car.Available = car.AvailableCount > 0
	return nil
}

func (r *fakeCarRepo) Release(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[id]
	if !ok {
		return repository.ErrCarNotFound
	}
	if car.BookedCount <= 0 {
		return repository.ErrInventoryInconsistency
	}
	car.BookedCount--
	car.AvailableCount++
	car.Available = true
	return nil
}

func (r *fakeCarRepo) FleetCounts(_ context.Context) (int64, int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, available, booked int64
	for _, car := range r.cars {
		total += int64(car.TotalCount)
		available += int64(car.AvailableCount)
		booked += int64(car.BookedCount)
	}
	return total, available, booked, nil
}

func (r *fakeCarRepo) counters(id uuid.UUID) (available, booked int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	car := r.cars[id]
	return car.AvailableCount, car.BookedCount
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
}

func newFakeBookingRepo(bookings ...*entity.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booking := range r.bookings {
		if booking.Reference == reference {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range r.bookings {
		if booking.UserID == userID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, booking := range r.bookings {
		if booking.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range r.bookings {
		copied := *booking
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBookingRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.bookings)), nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, id)
	return nil
}

func (r *fakeBookingRepo) CountActiveOverlapping(_ context.Context, carID uuid.UUID, start, end time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, booking := range r.bookings {
		if booking.CarID != carID || !booking.Status.CountsAgainstAvailability() {
			continue
		}
		if booking.StartDate.Before(end) && booking.EndDate.After(start) {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) CountActive(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, booking := range r.bookings {
		if booking.Status.CountsAgainstAvailability() {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking, ok := r.bookings[bookingID]; ok {
		booking.Status = status
	}
	return nil
}

func (r *fakeBookingRepo) UpdatePayment(_ context.Context, bookingID uuid.UUID, paymentStatus entity.BookingPaymentStatus, paidAmount, remainingAmount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking, ok := r.bookings[bookingID]; ok {
		booking.PaymentStatus = paymentStatus
		booking.PaidAmount = paidAmount
		booking.RemainingAmount = remainingAmount
	}
	return nil
}

func (r *fakeBookingRepo) MarkOverdueReturns(_ context.Context, asOf time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, booking := range r.bookings {
		if booking.Status == entity.BookingStatusConfirmed && !booking.EndDate.After(asOf) {
			booking.Status = entity.BookingStatusNeedToBeReturned
			ids = append(ids, booking.ID)
		}
	}
	return ids, nil
}

func (r *fakeBookingRepo) get(id uuid.UUID) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking, ok := r.bookings[id]; ok {
		copied := *booking
		return &copied
	}
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*entity.Payment
}

func newFakePaymentRepo(payments ...*entity.Payment) *fakePaymentRepo {
	r := &fakePaymentRepo{payments: make(map[uuid.UUID]*entity.Payment)}
	for _, p := range payments {
		r.payments[p.ID] = p
	}
	return r
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (r *fakePaymentRepo) FindUnresolvedByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.BookingID == bookingID && !payment.Status.Resolved() {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) FindLatestByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *entity.Payment
	for _, payment := range r.payments {
		if payment.BookingID != bookingID {
			continue
		}
		if latest == nil || payment.CreatedAt.After(latest.CreatedAt) {
			latest = payment
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakePaymentRepo) FindByStatus(_ context.Context, status entity.PaymentStatus, limit, offset int) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Payment
	for _, payment := range r.payments {
		if payment.Status == status {
			copied := *payment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) CountByStatus(_ context.Context, status entity.PaymentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, payment := range r.payments {
		if payment.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakePaymentRepo) UpdateDecision(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.payments[payment.ID]
	if !ok || stored.Status.Resolved() {
		return nil
	}
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) RevertDecision(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("revert payment %s decision: payment not found", id.String())
	}
	payment.Status = entity.PaymentStatusPending
	payment.FailureReason = nil
	payment.PaidAt = nil
	payment.RefundedAt = nil
	return nil
}

func (r *fakePaymentRepo) DeleteByBookingID(_ context.Context, bookingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, payment := range r.payments {
		if payment.BookingID == bookingID {
			delete(r.payments, id)
		}
	}
	return nil
}

func (r *fakePaymentRepo) SumCompleted(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, payment := range r.payments {
		if payment.Status == entity.PaymentStatusCompleted {
			sum += payment.Amount
		}
	}
	return sum, nil
}

func (r *fakePaymentRepo) get(id uuid.UUID) *entity.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment, ok := r.payments[id]; ok {
		copied := *payment
		return &copied
	}
	return nil
}

func testRepository(cars *fakeCarRepo, bookings *fakeBookingRepo, payments *fakePaymentRepo) *repository.Repository {
	return &repository.Repository{
		Car:     cars,
		Booking: bookings,
		Payment: payments,
	}
}

type fakeStats struct {
	mu          sync.Mutex
	invalidated int
}

func (s *fakeStats) Invalidate(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
}
