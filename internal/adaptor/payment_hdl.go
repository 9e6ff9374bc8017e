package adaptor

import (
	"encoding/json"
	"net/http"

	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxReceiptSize = 5 << 20 // 5 MB

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// SubmitPayment handles POST /api/payments (protected)
func (h *PaymentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payment, err := h.service.SubmitPayment(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(h.log, w, err, "submit payment")
		return
	}

	utils.ResponseCreated(w, "success", payment)
}

// UploadReceipt handles POST /api/payments/receipt (protected, multipart)
func (h *PaymentHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		utils.ResponseBadRequest(w, "Receipt file too large or malformed", nil)
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		utils.ResponseBadRequest(w, "Receipt file is required", nil)
		return
	}
	defer file.Close()

	url, err := h.service.UploadReceipt(r.Context(), header.Filename, file)
	if err != nil {
		respondServiceError(h.log, w, err, "upload receipt")
		return
	}

	utils.ResponseCreated(w, "success", response.ReceiptUploadResponse{URL: url})
}

// ==================== ADMIN METHODS ====================

// VerifyPayment handles POST /api/admin/payments/{id}/verify (admin only)
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		utils.ResponseBadRequest(w, "Payment ID is required", nil)
		return
	}

	var req request.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payment, err := h.service.VerifyPayment(r.Context(), paymentID, &req)
	if err != nil {
		respondServiceError(h.log, w, err, "verify payment")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

// GetPendingPayments handles GET /api/admin/payments (admin only)
func (h *PaymentHandler) GetPendingPayments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	payments, err := h.service.GetPendingPayments(r.Context(), req)
	if err != nil {
		respondServiceError(h.log, w, err, "get pending payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}
