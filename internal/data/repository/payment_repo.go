package repository

import (
	"context"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindUnresolvedByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	FindLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	FindByStatus(ctx context.Context, status entity.PaymentStatus, limit, offset int) ([]*entity.Payment, error)
	CountByStatus(ctx context.Context, status entity.PaymentStatus) (int64, error)
	UpdateDecision(ctx context.Context, payment *entity.Payment) error
	RevertDecision(ctx context.Context, id uuid.UUID) error
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error
	SumCompleted(ctx context.Context) (int64, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, booking_id, user_id, amount, currency, method, status, transaction_id, sender_card, receipt_url, transaction_at, failure_reason, paid_at, refunded_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var payment entity.Payment
	err := row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.UserID,
		&payment.Amount,
		&payment.Currency,
		&payment.Method,
		&payment.Status,
		&payment.TransactionID,
		&payment.SenderCard,
		&payment.ReceiptURL,
		&payment.TransactionAt,
		&payment.FailureReason,
		&payment.PaidAt,
		&payment.RefundedAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, user_id, amount, currency, method, status, transaction_id, sender_card, receipt_url, transaction_at, failure_reason, paid_at, refunded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.Method,
		payment.Status,
		payment.TransactionID,
		payment.SenderCard,
		payment.ReceiptURL,
		payment.TransactionAt,
		payment.FailureReason,
		payment.PaidAt,
		payment.RefundedAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id.String(), err)
	}

	return payment, nil
}

// FindUnresolvedByBookingID returns the pending or processing payment for a
// booking, if one exists. Used as the duplicate in-flight payment guard.
func (r *paymentRepository) FindUnresolvedByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1 AND status IN ('pending', 'processing')
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, bookingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find unresolved payment",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find unresolved payment for booking %s: %w", bookingID.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, bookingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find latest payment",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find latest payment for booking %s: %w", bookingID.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByStatus(ctx context.Context, status entity.PaymentStatus, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to find payments by status",
			zap.Error(err),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("find payments by status %s: %w", string(status), err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}

	return payments, nil
}

func (r *paymentRepository) CountByStatus(ctx context.Context, status entity.PaymentStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM payments WHERE status = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, status).Scan(&count); err != nil {
		r.log.Error("Failed to count payments by status",
			zap.Error(err),
			zap.String("status", string(status)),
		)
		return 0, fmt.Errorf("count payments by status %s: %w", string(status), err)
	}

	return count, nil
}

// UpdateDecision writes the verification outcome. The guard on unresolved
// status keeps completed/failed/refunded payments immutable and makes two
// concurrent admin decisions on the same payment mutually exclusive.
func (r *paymentRepository) UpdateDecision(ctx context.Context, payment *entity.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, failure_reason = $3, paid_at = $4, refunded_at = $5, updated_at = $6
		WHERE id = $1 AND status IN ('pending', 'processing')
	`

	result, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.Status,
		payment.FailureReason,
		payment.PaidAt,
		payment.RefundedAt,
		time.Now(),
	)

	if err != nil {
		r.log.Error("Failed to update payment decision",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", string(payment.Status)),
		)
		return fmt.Errorf("update payment %s decision: %w", payment.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment %s is not awaiting a decision", payment.ID.String())
	}

	return nil
}

// RevertDecision puts a decided payment back to pending. It is the
// compensating write for a verification whose booking update failed, which
// is why it bypasses the unresolved-status guard of UpdateDecision.
func (r *paymentRepository) RevertDecision(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE payments
		SET status = 'pending', failure_reason = NULL, paid_at = NULL, refunded_at = NULL, updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		r.log.Error("Failed to revert payment decision",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return fmt.Errorf("revert payment %s decision: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("revert payment %s decision: payment not found", id.String())
	}

	return nil
}

func (r *paymentRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	query := `DELETE FROM payments WHERE booking_id = $1`

	if _, err := r.db.Exec(ctx, query, bookingID); err != nil {
		r.log.Error("Failed to delete payments by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("delete payments for booking %s: %w", bookingID.String(), err)
	}

	return nil
}

func (r *paymentRepository) SumCompleted(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'completed'`

	var sum int64
	if err := r.db.QueryRow(ctx, query).Scan(&sum); err != nil {
		r.log.Error("Failed to sum completed payments", zap.Error(err))
		return 0, fmt.Errorf("sum completed payments: %w", err)
	}

	return sum, nil
}
