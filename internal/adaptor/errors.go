package adaptor

import (
	"errors"
	"net/http"

	"car-rental/internal/data/repository"
	"car-rental/internal/pricing"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

// respondServiceError maps service errors onto HTTP responses. All
// handlers funnel failures through here so the taxonomy stays in one
// place.
func respondServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	var validationErr *usecase.ValidationError
	var transitionErr *usecase.IllegalTransitionError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, pricing.ErrInvalidRange):
		log.Warn(operation+" rejected invalid date range", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, repository.ErrCarNotFound),
		errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrPaymentNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, repository.ErrNoUnitsAvailable),
		errors.Is(err, usecase.ErrCarUnavailable),
		errors.Is(err, usecase.ErrDateRangeConflict):
		log.Warn(operation+" failed - no availability", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrDuplicatePayment):
		log.Warn(operation+" failed - duplicate payment", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.As(err, &transitionErr):
		log.Warn(operation+" failed - illegal transition",
			zap.String("from", transitionErr.From),
			zap.String("to", transitionErr.To))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation + " failed - invalid credentials")
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, repository.ErrInventoryInconsistency):
		// Counters are clamped, the request itself already took effect.
		log.Error(operation+" detected inventory inconsistency", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
