package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/notify"
	"car-rental/internal/storage"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCurrency = "IDR"

type PaymentService interface {
	SubmitPayment(ctx context.Context, userID uuid.UUID, req *request.SubmitPaymentRequest) (*response.PaymentResponse, error)
	UploadReceipt(ctx context.Context, filename string, content io.Reader) (string, error)

	// Admin endpoints
	VerifyPayment(ctx context.Context, paymentID string, req *request.VerifyPaymentRequest) (*response.PaymentResponse, error)
	GetPendingPayments(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
}

type paymentService struct {
	repo     *repository.Repository
	receipts storage.ReceiptStore
	notifier notify.Notifier
	stats    StatsInvalidator
	log      *zap.Logger
}

func NewPaymentService(repo *repository.Repository, receipts storage.ReceiptStore, notifier notify.Notifier, stats StatsInvalidator, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:     repo,
		receipts: receipts,
		notifier: notifier,
		stats:    stats,
		log:      log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) SubmitPayment(ctx context.Context, userID uuid.UUID, req *request.SubmitPaymentRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Submit payment validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, newValidationError("booking_id", "must be a valid UUID")
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", req.BookingID, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if booking.UserID != userID {
		return nil, ErrForbidden
	}

	if booking.PaymentStatus != entity.BookingPaymentPending {
		return nil, &IllegalTransitionError{From: string(booking.PaymentStatus), To: string(entity.BookingPaymentDepositPaid)}
	}

	// One unresolved payment per booking. The customer must wait for the
	// admin decision on the previous submission before retrying.
	unresolved, err := s.repo.Payment.FindUnresolvedByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("check unresolved payment: %w", err)
	}
	if unresolved != nil {
		return nil, ErrDuplicatePayment
	}

	if req.Amount != booking.DepositAmount {
		return nil, newValidationError("amount",
			fmt.Sprintf("deposit amount must be %d", booking.DepositAmount))
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	var transactionAt *time.Time
	if req.TransactionAt != nil {
		t, err := time.Parse(time.RFC3339, *req.TransactionAt)
		if err != nil {
			return nil, newValidationError("transaction_at", "must be an RFC 3339 timestamp")
		}
		transactionAt = &t
	}

	now := time.Now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:     bookingID,
		UserID:        userID,
		Amount:        req.Amount,
		Currency:      currency,
		Method:        req.Method,
		Status:        entity.PaymentStatusPending,
		TransactionID: req.TransactionID,
		SenderCard:    req.SenderCard,
		ReceiptURL:    req.ReceiptURL,
		TransactionAt: transactionAt,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.log.Info("Payment submitted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", req.BookingID),
		zap.Int64("amount", req.Amount),
		zap.String("method", req.Method),
	)

	go s.notifier.Notify(context.WithoutCancel(ctx), notify.EventPaymentSubmitted, map[string]any{
		"payment_id": payment.ID.String(),
		"booking_id": bookingID.String(),
		"amount":     req.Amount,
	})
	s.stats.Invalidate(ctx)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) UploadReceipt(ctx context.Context, filename string, content io.Reader) (string, error) {
	url, err := s.receipts.Store(ctx, filename, content)
	if err != nil {
		s.log.Warn("Receipt upload rejected", zap.Error(err), zap.String("filename", filename))
		return "", newValidationError("receipt", err.Error())
	}
	return url, nil
}

// VerifyPayment applies the admin decision. A booking is never treated as
// paid from client-submitted evidence alone; this call is the only path to
// deposit_paid.
func (s *paymentService) VerifyPayment(ctx context.Context, paymentID string, req *request.VerifyPaymentRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, newValidationError("id", "must be a valid UUID")
	}

	payment, err := s.repo.Payment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", paymentID, err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	if payment.Status.Resolved() {
		return nil, &IllegalTransitionError{From: string(payment.Status), To: decisionStatus(req.Approved)}
	}

	booking, err := s.repo.Booking.FindByID(ctx, payment.BookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking for payment %s: %w", paymentID, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if req.Approved {
		return s.approve(ctx, payment, booking)
	}
	return s.reject(ctx, payment, req.Reason)
}

func (s *paymentService) approve(ctx context.Context, payment *entity.Payment, booking *entity.Booking) (*response.PaymentResponse, error) {
	now := time.Now()
	payment.Status = entity.PaymentStatusCompleted
	payment.PaidAt = &now
	payment.FailureReason = nil

	if err := s.repo.Payment.UpdateDecision(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment approval: %w", err)
	}

	paid := booking.PaidAmount + payment.Amount
	remaining := booking.TotalPrice - paid

	paymentStatus := entity.BookingPaymentDepositPaid
	if remaining <= 0 {
		paymentStatus = entity.BookingPaymentPaid
	}

	// Decision and booking update form one logical transaction: if the
	// booking write fails, the decision is compensated back to pending so
	// the duplicate-payment guard still sees an unresolved payment and the
	// admin can retry the verification.
	if err := s.repo.Booking.UpdatePayment(ctx, booking.ID, paymentStatus, paid, remaining); err != nil {
		s.log.Error("Payment approved but booking update failed",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
			zap.String("booking_id", booking.ID.String()),
		)

		if revErr := s.repo.Payment.RevertDecision(ctx, payment.ID); revErr != nil {
			s.log.Error("Compensating revert failed after booking update failure",
				zap.Error(revErr),
				zap.String("payment_id", payment.ID.String()),
			)
		}

		return nil, fmt.Errorf("update booking payment state: %w", err)
	}

	// Policy: a verified deposit confirms the reservation.
	if booking.Status == entity.BookingStatusPending {
		if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusConfirmed); err != nil {
			s.log.Error("Failed to confirm booking after payment approval",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
		}
	}

	s.log.Info("Payment approved",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Int64("amount", payment.Amount),
		zap.String("booking_payment_status", string(paymentStatus)),
	)

	go s.notifier.Notify(context.WithoutCancel(ctx), notify.EventPaymentVerified, map[string]any{
		"payment_id": payment.ID.String(),
		"booking_id": booking.ID.String(),
		"amount":     payment.Amount,
	})
	s.stats.Invalidate(ctx)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) reject(ctx context.Context, payment *entity.Payment, reason *string) (*response.PaymentResponse, error) {
	if reason == nil || *reason == "" {
		return nil, newValidationError("reason", "required when rejecting a payment")
	}

	payment.Status = entity.PaymentStatusFailed
	payment.FailureReason = reason

	if err := s.repo.Payment.UpdateDecision(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment rejection: %w", err)
	}

	// The booking keeps payment_status pending so the customer can submit
	// a corrected payment.
	s.log.Info("Payment rejected",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", payment.BookingID.String()),
		zap.String("reason", *reason),
	)

	go s.notifier.Notify(context.WithoutCancel(ctx), notify.EventPaymentRejected, map[string]any{
		"payment_id": payment.ID.String(),
		"booking_id": payment.BookingID.String(),
		"reason":     *reason,
	})
	s.stats.Invalidate(ctx)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) GetPendingPayments(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	payments, err := s.repo.Payment.FindByStatus(ctx, entity.PaymentStatusPending, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}

	total, err := s.repo.Payment.CountByStatus(ctx, entity.PaymentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("count pending payments: %w", err)
	}

	responses := make([]response.PaymentResponse, len(payments))
	for i, payment := range payments {
		responses[i] = response.PaymentToResponse(payment)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func decisionStatus(approved bool) string {
	if approved {
		return string(entity.PaymentStatusCompleted)
	}
	return string(entity.PaymentStatusFailed)
}
