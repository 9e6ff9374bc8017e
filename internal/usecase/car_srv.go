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
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CarService interface {
	// Public endpoints
	GetCars(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CarResponse], error)
	GetCarByID(ctx context.Context, carID string) (*response.CarResponse, error)
	CheckAvailability(ctx context.Context, carID, startDate, endDate string) (*response.AvailabilityResponse, error)

	// Admin endpoints
	CreateCar(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error)
	UpdateCar(ctx context.Context, carID string, req *request.UpdateCarRequest) (*response.CarResponse, error)
}

type carService struct {
	repo    *repository.Repository
	checker *AvailabilityChecker
	stats   StatsInvalidator
	log     *zap.Logger
}

func NewCarService(repo *repository.Repository, checker *AvailabilityChecker, stats StatsInvalidator, log *zap.Logger) CarService {
	return &carService{
		repo:    repo,
		checker: checker,
		stats:   stats,
		log:     log.With(zap.String("service", "car")),
	}
}

func (s *carService) GetCars(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CarResponse], error) {
	cars, err := s.repo.Car.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}

	total, err := s.repo.Car.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cars: %w", err)
	}

	responses := make([]response.CarResponse, len(cars))
	for i, car := range cars {
		responses[i] = response.CarToResponse(car)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *carService) GetCarByID(ctx context.Context, carID string) (*response.CarResponse, error) {
	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	resp := response.CarToResponse(car)
	return &resp, nil
}

func (s *carService) CheckAvailability(ctx context.Context, carID, startDate, endDate string) (*response.AvailabilityResponse, error) {
	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, newValidationError("id", "must be a valid UUID")
	}

	start, err := parseDate(startDate)
	if err != nil {
		return nil, newValidationError("start", "must be a valid date (YYYY-MM-DD)")
	}
	end, err := parseDate(endDate)
	if err != nil {
		return nil, newValidationError("end", "must be a valid date (YYYY-MM-DD)")
	}
	if !end.After(start) {
		return nil, newValidationError("end", "must be after start date")
	}

	resp := &response.AvailabilityResponse{
		CarID:     carID,
		StartDate: startDate,
		EndDate:   endDate,
	}

	_, err = s.checker.Check(ctx, id, start, end)
	switch {
	case err == nil:
		resp.Available = true
	case errors.Is(err, repository.ErrCarNotFound):
		return nil, repository.ErrCarNotFound
	case errors.Is(err, repository.ErrNoUnitsAvailable):
		resp.Reason = "no units available"
	case errors.Is(err, ErrDateRangeConflict):
		resp.Reason = "requested dates conflict with existing bookings"
	default:
		return nil, fmt.Errorf("check availability: %w", err)
	}

	return resp, nil
}

func (s *carService) CreateCar(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create car validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	now := time.Now()
	car := &entity.Car{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:           req.Name,
		Brand:          req.Brand,
		DailyRate:      req.DailyRate,
		TotalCount:     req.TotalCount,
		AvailableCount: req.TotalCount,
		BookedCount:    0,
		Available:      req.TotalCount > 0,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
	}

	if err := s.repo.Car.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}

	s.stats.Invalidate(ctx)

	s.log.Info("Car created",
		zap.String("car_id", car.ID.String()),
		zap.String("name", car.Name),
		zap.Int("total_count", car.TotalCount),
	)

	resp := response.CarToResponse(car)
	return &resp, nil
}

// UpdateCar edits listing attributes. The counter re-derivation for a
// total-count change happens inside the repository statement, against the
// booked_count at write time rather than the one read here.
func (s *carService) UpdateCar(ctx context.Context, carID string, req *request.UpdateCarRequest) (*response.CarResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	car.Name = req.Name
	car.Brand = req.Brand
	car.DailyRate = req.DailyRate
	car.TotalCount = req.TotalCount
	car.Location = req.Location
	car.ImageURL = req.ImageURL
	car.UpdatedAt = time.Now()

	if err := s.repo.Car.Update(ctx, car); err != nil {
		switch {
		case errors.Is(err, repository.ErrCarNotFound):
			return nil, repository.ErrCarNotFound
		case errors.Is(err, repository.ErrTotalBelowBooked):
			return nil, newValidationError("total_count",
				"cannot go below the currently booked units")
		default:
			return nil, fmt.Errorf("update car %s: %w", carID, err)
		}
	}

	s.stats.Invalidate(ctx)

	s.log.Info("Car updated",
		zap.String("car_id", carID),
		zap.Int("total_count", car.TotalCount),
		zap.Int("available_count", car.AvailableCount),
	)

	resp := response.CarToResponse(car)
	return &resp, nil
}

func (s *carService) findCar(ctx context.Context, carID string) (*entity.Car, error) {
	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, newValidationError("id", "must be a valid UUID")
	}

	car, err := s.repo.Car.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find car %s: %w", carID, err)
	}
	if car == nil {
		return nil, repository.ErrCarNotFound
	}

	return car, nil
}
