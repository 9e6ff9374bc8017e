package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/notify"
	"car-rental/internal/pricing"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Customer endpoints
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByID(ctx context.Context, callerID uuid.UUID, isAdmin bool, bookingID string) (*response.BookingResponse, error)

	// Admin endpoints
	GetAllBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	UpdateBookingStatus(ctx context.Context, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID string) error

	// Scheduled sweep
	MarkOverdueReturns(ctx context.Context) (int, error)
}

type bookingService struct {
	repo     *repository.Repository
	checker  *AvailabilityChecker
	notifier notify.Notifier
	stats    StatsInvalidator
	log      *zap.Logger
}

func NewBookingService(repo *repository.Repository, checker *AvailabilityChecker, notifier notify.Notifier, stats StatsInvalidator, log *zap.Logger) BookingService {
	return &bookingService{
		repo:     repo,
		checker:  checker,
		notifier: notifier,
		stats:    stats,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return nil, newValidationError("car_id", "must be a valid UUID")
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, newValidationError("start_date", "must be a valid date (YYYY-MM-DD)")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, newValidationError("end_date", "must be a valid date (YYYY-MM-DD)")
	}

	if !end.After(start) {
		return nil, newValidationError("end_date", "must be after start date")
	}
	if start.Before(today()) {
		return nil, newValidationError("start_date", "must not be in the past")
	}

	// Availability check before any write. The allocate below re-checks the
	// counter atomically, so two concurrent requests cannot both take the
	// last unit.
	car, err := s.checker.Check(ctx, carID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCarNotFound):
			return nil, repository.ErrCarNotFound
		case errors.Is(err, repository.ErrNoUnitsAvailable):
			return nil, ErrCarUnavailable
		case errors.Is(err, ErrDateRangeConflict):
			return nil, ErrDateRangeConflict
		default:
			s.log.Error("Availability check failed", zap.Error(err), zap.String("car_id", req.CarID))
			return nil, fmt.Errorf("check availability: %w", err)
		}
	}

	quote, err := pricing.Compute(car.DailyRate, start, end)
	if err != nil {
		return nil, newValidationError("end_date", "rental period must be at least one day")
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:       utils.GenerateBookingReference(),
		UserID:          userID,
		CarID:           carID,
		StartDate:       start,
		EndDate:         end,
		TotalPrice:      quote.TotalPrice,
		DepositPercent:  quote.DepositPercent,
		DepositAmount:   quote.DepositAmount,
		PaidAmount:      0,
		RemainingAmount: quote.TotalPrice,
		Status:          entity.BookingStatusPending,
		PaymentStatus:   entity.BookingPaymentPending,
		PickupLocation:  req.PickupLocation,
		Notes:           req.Notes,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("car_id", req.CarID),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	// Record write and allocation form one logical transaction: if the
	// atomic decrement loses the race, the booking record is compensated
	// away and the caller sees the same rejection as an up-front failure.
	if err := s.repo.Car.Allocate(ctx, carID); err != nil {
		if delErr := s.repo.Booking.Delete(ctx, booking.ID); delErr != nil {
			s.log.Error("Compensating delete failed after allocation failure",
				zap.Error(delErr),
				zap.String("booking_id", booking.ID.String()),
			)
		}

		if errors.Is(err, repository.ErrNoUnitsAvailable) {
			return nil, ErrCarUnavailable
		}
		s.log.Error("Failed to allocate unit", zap.Error(err), zap.String("car_id", req.CarID))
		return nil, fmt.Errorf("allocate unit: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("user_id", userID.String()),
		zap.String("car_id", req.CarID),
		zap.Int("days", quote.Days),
		zap.Int64("total_price", quote.TotalPrice),
	)

	go s.notifier.Notify(context.WithoutCancel(ctx), notify.EventBookingCreated, map[string]any{
		"booking_id": booking.ID.String(),
		"reference":  booking.Reference,
		"user_id":    userID.String(),
		"car_id":     carID.String(),
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"deposit":    quote.DepositAmount,
	})
	s.stats.Invalidate(ctx)

	resp := response.BookingToResponse(booking, car.Name, nil)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, callerID uuid.UUID, isAdmin bool, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && booking.UserID != callerID {
		s.log.Warn("Booking access denied",
			zap.String("booking_id", bookingID),
			zap.String("caller_id", callerID.String()),
		)
		return nil, ErrForbidden
	}

	resp := s.toResponse(ctx, booking)
	return &resp, nil
}

func (s *bookingService) GetAllBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.repo.Booking.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), req.Page, req.PerPage, total), nil
}

func (s *bookingService) UpdateBookingStatus(ctx context.Context, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	target := entity.BookingStatus(req.Status)
	if !booking.Status.CanTransitionTo(target) {
		s.log.Warn("Illegal booking transition rejected",
			zap.String("booking_id", bookingID),
			zap.String("from", string(booking.Status)),
			zap.String("to", string(target)),
		)
		return nil, &IllegalTransitionError{From: string(booking.Status), To: string(target)}
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, target); err != nil {
		return nil, fmt.Errorf("update booking %s status: %w", bookingID, err)
	}

	// Cancellation and completion both hand the unit back to the pool.
	if target == entity.BookingStatusCancelled || target == entity.BookingStatusCompleted {
		s.releaseUnit(ctx, booking.CarID, booking.ID)

		event := notify.EventBookingCancelled
		if target == entity.BookingStatusCompleted {
			event = notify.EventBookingCompleted
		}
		go s.notifier.Notify(context.WithoutCancel(ctx), event, map[string]any{
			"booking_id": booking.ID.String(),
			"reference":  booking.Reference,
		})
	}

	s.stats.Invalidate(ctx)

	booking.Status = target
	s.log.Info("Booking status updated",
		zap.String("booking_id", bookingID),
		zap.String("status", string(target)),
	)

	resp := s.toResponse(ctx, booking)
	return &resp, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	// A hard delete of an active booking must hand its unit back first,
	// otherwise the ledger leaks the unit permanently.
	if booking.Status.HoldsUnit() {
		s.releaseUnit(ctx, booking.CarID, booking.ID)
	}

	if err := s.repo.Payment.DeleteByBookingID(ctx, booking.ID); err != nil {
		return fmt.Errorf("delete booking payments: %w", err)
	}

	if err := s.repo.Booking.Delete(ctx, booking.ID); err != nil {
		return fmt.Errorf("delete booking %s: %w", bookingID, err)
	}

	s.stats.Invalidate(ctx)

	s.log.Info("Booking deleted",
		zap.String("booking_id", bookingID),
		zap.String("reference", booking.Reference),
		zap.String("status", string(booking.Status)),
	)

	return nil
}

func (s *bookingService) MarkOverdueReturns(ctx context.Context) (int, error) {
	ids, err := s.repo.Booking.MarkOverdueReturns(ctx, today())
	if err != nil {
		return 0, fmt.Errorf("mark overdue returns: %w", err)
	}

	if len(ids) > 0 {
		s.log.Info("Overdue rentals flagged for return", zap.Int("count", len(ids)))
		s.stats.Invalidate(ctx)
	}

	return len(ids), nil
}

// ==================== HELPER METHODS ====================

func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, newValidationError("id", "must be a valid UUID")
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	return booking, nil
}

// releaseUnit returns a unit to the pool, retrying a transient failure once.
// A persistent failure or a clamped release is logged for reconciliation
// instead of failing the caller's transition.
func (s *bookingService) releaseUnit(ctx context.Context, carID, bookingID uuid.UUID) {
	err := s.repo.Car.Release(ctx, carID)
	if err != nil && !errors.Is(err, repository.ErrInventoryInconsistency) && !errors.Is(err, repository.ErrCarNotFound) {
		s.log.Warn("Release failed, retrying once",
			zap.Error(err),
			zap.String("car_id", carID.String()),
		)
		err = s.repo.Car.Release(ctx, carID)
	}

	if err != nil {
		s.log.Error("Unit release needs manual reconciliation",
			zap.Error(err),
			zap.String("car_id", carID.String()),
			zap.String("booking_id", bookingID.String()),
		)
	}
}

func (s *bookingService) toResponse(ctx context.Context, booking *entity.Booking) response.BookingResponse {
	var carName string
	if car, _ := s.repo.Car.FindByID(ctx, booking.CarID); car != nil {
		carName = car.Name
	}

	var paymentResp *response.PaymentResponse
	if payment, _ := s.repo.Payment.FindLatestByBookingID(ctx, booking.ID); payment != nil {
		p := response.PaymentToResponse(payment)
		paymentResp = &p
	}

	return response.BookingToResponse(booking, carName, paymentResp)
}

func (s *bookingService) toResponses(ctx context.Context, bookings []*entity.Booking) []response.BookingResponse {
	responses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		responses[i] = s.toResponse(ctx, booking)
	}
	return responses
}

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
