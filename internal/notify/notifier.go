// Package notify delivers domain events to downstream consumers (email
// workers, analytics). Delivery is fire-and-forget: a broker outage must
// never fail the booking flow that triggered the event.
package notify

import "context"

// Event names published by the booking engine.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventPaymentSubmitted = "payment.submitted"
	EventPaymentVerified  = "payment.verified"
	EventPaymentRejected  = "payment.rejected"
)

type Notifier interface {
	// Notify publishes the event. Implementations log failures and return
	// nothing; callers must not block on delivery.
	Notify(ctx context.Context, event string, payload any)
}

// NopNotifier is used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, any) {}
