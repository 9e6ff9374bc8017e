package adaptor

import (
	"encoding/json"
	"net/http"

	"car-rental/internal/dto/request"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CarHandler struct {
	service usecase.CarService
	log     *zap.Logger
}

func NewCarHandler(service usecase.CarService, log *zap.Logger) *CarHandler {
	return &CarHandler{
		service: service,
		log:     log.With(zap.String("handler", "car")),
	}
}

// GetCars handles GET /api/cars (public)
func (h *CarHandler) GetCars(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	cars, err := h.service.GetCars(r.Context(), req)
	if err != nil {
		respondServiceError(h.log, w, err, "get cars")
		return
	}

	utils.ResponseSuccess(w, "success", cars)
}

// GetCarByID handles GET /api/cars/{id} (public)
func (h *CarHandler) GetCarByID(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "id")
	if carID == "" {
		utils.ResponseBadRequest(w, "Car ID is required", nil)
		return
	}

	car, err := h.service.GetCarByID(r.Context(), carID)
	if err != nil {
		respondServiceError(h.log, w, err, "get car by ID")
		return
	}

	utils.ResponseSuccess(w, "success", car)
}

// CheckAvailability handles GET /api/cars/{id}/availability?start_date=...&end_date=... (public)
func (h *CarHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "id")
	if carID == "" {
		utils.ResponseBadRequest(w, "Car ID is required", nil)
		return
	}

	query := r.URL.Query()
	startDate := query.Get("start_date")
	endDate := query.Get("end_date")
	if startDate == "" || endDate == "" {
		utils.ResponseBadRequest(w, "start_date and end_date are required", nil)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), carID, startDate, endDate)
	if err != nil {
		respondServiceError(h.log, w, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// ==================== ADMIN METHODS ====================

// CreateCar handles POST /api/admin/cars (admin only)
func (h *CarHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	car, err := h.service.CreateCar(r.Context(), &req)
	if err != nil {
		respondServiceError(h.log, w, err, "create car")
		return
	}

	utils.ResponseCreated(w, "success", car)
}

// UpdateCar handles PUT /api/admin/cars/{id} (admin only)
func (h *CarHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "id")
	if carID == "" {
		utils.ResponseBadRequest(w, "Car ID is required", nil)
		return
	}

	var req request.UpdateCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	car, err := h.service.UpdateCar(r.Context(), carID, &req)
	if err != nil {
		respondServiceError(h.log, w, err, "update car")
		return
	}

	utils.ResponseSuccess(w, "success", car)
}
