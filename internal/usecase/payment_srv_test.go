package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReceiptStore struct {
	fail bool
}

func (s *fakeReceiptStore) Store(_ context.Context, filename string, _ io.Reader) (string, error) {
	if s.fail {
		return "", errors.New("unsupported receipt type")
	}
	return "http://localhost:8080/receipts/" + filename, nil
}

type paymentEnv struct {
	bookings *fakeBookingRepo
	payments *fakePaymentRepo
	receipts *fakeReceiptStore
	svc      PaymentService
}

func newPaymentEnv(bookings ...*entity.Booking) *paymentEnv {
	env := &paymentEnv{
		bookings: newFakeBookingRepo(bookings...),
		payments: newFakePaymentRepo(),
		receipts: &fakeReceiptStore{},
	}

	repo := testRepository(newFakeCarRepo(), env.bookings, env.payments)
	env.svc = NewPaymentService(repo, env.receipts, notify.NopNotifier{}, &fakeStats{}, zap.NewNop())
	return env
}

func pendingBooking(userID uuid.UUID) *entity.Booking {
	now := time.Now()
	return &entity.Booking{
		Base:            entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Reference:       "RENT-TEST-0001",
		UserID:          userID,
		CarID:           uuid.New(),
		StartDate:       now.AddDate(0, 0, 7),
		EndDate:         now.AddDate(0, 0, 10),
		TotalPrice:      300_000,
		DepositPercent:  20,
		DepositAmount:   60_000,
		PaidAmount:      0,
		RemainingAmount: 300_000,
		Status:          entity.BookingStatusPending,
		PaymentStatus:   entity.BookingPaymentPending,
		PickupLocation:  "Jakarta Office",
	}
}

func submitRequest(bookingID uuid.UUID, amount int64) *request.SubmitPaymentRequest {
	return &request.SubmitPaymentRequest{
		BookingID: bookingID.String(),
		Amount:    amount,
		Method:    "bank_transfer",
	}
}

func TestSubmitPayment(t *testing.T) {
	t.Run("records a pending deposit payment", func(t *testing.T) {
		owner := uuid.New()
		booking := pendingBooking(owner)
		env := newPaymentEnv(booking)

		resp, err := env.svc.SubmitPayment(context.Background(), owner, submitRequest(booking.ID, 60_000))
		require.NoError(t, err)

		assert.Equal(t, entity.PaymentStatusPending, resp.Status)
		assert.Equal(t, int64(60_000), resp.Amount)
		assert.Equal(t, "IDR", resp.Currency)

		// Submission alone never changes the booking's payment state.
		stored := env.bookings.get(booking.ID)
		assert.Equal(t, entity.BookingPaymentPending, stored.PaymentStatus)
		assert.Zero(t, stored.PaidAmount)
	})

	t.Run("rejects an amount that does not match the deposit", func(t *testing.T) {
		owner := uuid.New()
		booking := pendingBooking(owner)
		env := newPaymentEnv(booking)

		_, err := env.svc.SubmitPayment(context.Background(), owner, submitRequest(booking.ID, 50_000))
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "amount")
	})

	t.Run("rejects a second unresolved payment", func(t *testing.T) {
		owner := uuid.New()
		booking := pendingBooking(owner)
		env := newPaymentEnv(booking)

		_, err := env.svc.SubmitPayment(context.Background(), owner, submitRequest(booking.ID, 60_000))
		require.NoError(t, err)

		_, err = env.svc.SubmitPayment(context.Background(), owner, submitRequest(booking.ID, 60_000))
		assert.ErrorIs(t, err, ErrDuplicatePayment)
	})

	t.Run("rejects a caller who does not own the booking", func(t *testing.T) {
		booking := pendingBooking(uuid.New())
		env := newPaymentEnv(booking)

		_, err := env.svc.SubmitPayment(context.Background(), uuid.New(), submitRequest(booking.ID, 60_000))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("rejects when the deposit is already paid", func(t *testing.T) {
		owner := uuid.New()
		booking := pendingBooking(owner)
		booking.PaymentStatus = entity.BookingPaymentDepositPaid
		env := newPaymentEnv(booking)

		_, err := env.svc.SubmitPayment(context.Background(), owner, submitRequest(booking.ID, 60_000))
		var transitionErr *IllegalTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	})

	t.Run("unknown booking", func(t *testing.T) {
		env := newPaymentEnv()

		_, err := env.svc.SubmitPayment(context.Background(), uuid.New(), submitRequest(uuid.New(), 60_000))
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestVerifyPayment(t *testing.T) {
	setup := func(t *testing.T) (*paymentEnv, *entity.Booking, string) {
		owner := uuid.New()
		booking := pendingBooking(owner)
		env := newPaymentEnv(booking)

		resp, err := env.svc.SubmitPayment(context.Background(), owner, submitRequest(booking.ID, booking.DepositAmount))
		require.NoError(t, err)
		return env, booking, resp.ID
	}

	t.Run("approval marks the deposit paid and confirms the booking", func(t *testing.T) {
		env, booking, paymentID := setup(t)

		resp, err := env.svc.VerifyPayment(context.Background(), paymentID,
			&request.VerifyPaymentRequest{Approved: true})
		require.NoError(t, err)

		assert.Equal(t, entity.PaymentStatusCompleted, resp.Status)
		require.NotNil(t, resp.PaidAt)

		stored := env.bookings.get(booking.ID)
		assert.Equal(t, entity.BookingPaymentDepositPaid, stored.PaymentStatus)
		assert.Equal(t, entity.BookingStatusConfirmed, stored.Status)
		assert.Equal(t, int64(60_000), stored.PaidAmount)
		assert.Equal(t, int64(240_000), stored.RemainingAmount)
	})

	t.Run("rejection records the reason and allows resubmission", func(t *testing.T) {
		env, booking, paymentID := setup(t)

		reason := "transfer reference does not match"
		resp, err := env.svc.VerifyPayment(context.Background(), paymentID,
			&request.VerifyPaymentRequest{Approved: false, Reason: &reason})
		require.NoError(t, err)

		assert.Equal(t, entity.PaymentStatusFailed, resp.Status)
		require.NotNil(t, resp.FailureReason)
		assert.Equal(t, reason, *resp.FailureReason)

		// The booking stays payment-pending so the customer can retry.
		stored := env.bookings.get(booking.ID)
		assert.Equal(t, entity.BookingPaymentPending, stored.PaymentStatus)

		_, err = env.svc.SubmitPayment(context.Background(), booking.UserID, submitRequest(booking.ID, booking.DepositAmount))
		assert.NoError(t, err)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		env, _, paymentID := setup(t)

		_, err := env.svc.VerifyPayment(context.Background(), paymentID,
			&request.VerifyPaymentRequest{Approved: false})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "reason")
	})

	t.Run("a resolved payment cannot be decided again", func(t *testing.T) {
		env, _, paymentID := setup(t)

		_, err := env.svc.VerifyPayment(context.Background(), paymentID,
			&request.VerifyPaymentRequest{Approved: true})
		require.NoError(t, err)

		_, err = env.svc.VerifyPayment(context.Background(), paymentID,
			&request.VerifyPaymentRequest{Approved: true})
		var transitionErr *IllegalTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	})

	t.Run("unknown payment", func(t *testing.T) {
		env := newPaymentEnv()

		_, err := env.svc.VerifyPayment(context.Background(), uuid.New().String(),
			&request.VerifyPaymentRequest{Approved: true})
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("a failed booking update reverts the approval", func(t *testing.T) {
		owner := uuid.New()
		booking := pendingBooking(owner)
		bookings := &failingUpdatePaymentRepo{fakeBookingRepo: newFakeBookingRepo(booking)}
		payments := newFakePaymentRepo()
		repo := &repository.Repository{Car: newFakeCarRepo(), Booking: bookings, Payment: payments}
		svc := NewPaymentService(repo, &fakeReceiptStore{}, notify.NopNotifier{}, &fakeStats{}, zap.NewNop())

		resp, err := svc.SubmitPayment(context.Background(), owner, submitRequest(booking.ID, booking.DepositAmount))
		require.NoError(t, err)
		paymentID := resp.ID

		bookings.failUpdatePayment = true
		_, err = svc.VerifyPayment(context.Background(), paymentID,
			&request.VerifyPaymentRequest{Approved: true})
		require.Error(t, err)

		// The decision is compensated back to pending.
		stored := payments.get(uuid.MustParse(paymentID))
		assert.Equal(t, entity.PaymentStatusPending, stored.Status)
		assert.Nil(t, stored.PaidAt)

		storedBooking := bookings.get(booking.ID)
		assert.Equal(t, entity.BookingPaymentPending, storedBooking.PaymentStatus)
		assert.Zero(t, storedBooking.PaidAmount)

		// The reverted payment still counts as unresolved, so a second
		// deposit for the same booking is refused.
		_, err = svc.SubmitPayment(context.Background(), owner, submitRequest(booking.ID, booking.DepositAmount))
		assert.ErrorIs(t, err, ErrDuplicatePayment)

		// Once the store recovers, the same payment can be approved.
		bookings.failUpdatePayment = false
		_, err = svc.VerifyPayment(context.Background(), paymentID,
			&request.VerifyPaymentRequest{Approved: true})
		require.NoError(t, err)

		storedBooking = bookings.get(booking.ID)
		assert.Equal(t, entity.BookingPaymentDepositPaid, storedBooking.PaymentStatus)
		assert.Equal(t, int64(60_000), storedBooking.PaidAmount)
	})
}

// failingUpdatePaymentRepo simulates a store that loses the booking write
// after the payment decision has already been recorded.
type failingUpdatePaymentRepo struct {
	*fakeBookingRepo
	failUpdatePayment bool
}

func (r *failingUpdatePaymentRepo) UpdatePayment(ctx context.Context, bookingID uuid.UUID, paymentStatus entity.BookingPaymentStatus, paidAmount, remainingAmount int64) error {
	if r.failUpdatePayment {
		return errors.New("connection reset by peer")
	}
	return r.fakeBookingRepo.UpdatePayment(ctx, bookingID, paymentStatus, paidAmount, remainingAmount)
}

func TestUploadReceipt(t *testing.T) {
	t.Run("returns the stored URL", func(t *testing.T) {
		env := newPaymentEnv()

		url, err := env.svc.UploadReceipt(context.Background(), "proof.jpg", strings.NewReader("image-bytes"))
		require.NoError(t, err)
		assert.Contains(t, url, "/receipts/")
	})

	t.Run("maps store rejections to validation errors", func(t *testing.T) {
		env := newPaymentEnv()
		env.receipts.fail = true

		_, err := env.svc.UploadReceipt(context.Background(), "proof.exe", strings.NewReader("bytes"))
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}
