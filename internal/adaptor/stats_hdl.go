package adaptor

import (
	"net/http"

	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type StatsHandler struct {
	service usecase.StatsService
	log     *zap.Logger
}

func NewStatsHandler(service usecase.StatsService, log *zap.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		log:     log.With(zap.String("handler", "stats")),
	}
}

// GetFleetStats handles GET /api/admin/stats (admin only)
func (h *StatsHandler) GetFleetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetFleetStats(r.Context())
	if err != nil {
		respondServiceError(h.log, w, err, "get fleet stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}
