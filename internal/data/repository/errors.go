package repository

import "errors"

// Storage-level sentinel errors. Services translate these into API
// responses; handlers match them with errors.Is.
var (
	// ErrNoUnitsAvailable is returned by Allocate when the conditional
	// decrement finds available_count already at zero.
	ErrNoUnitsAvailable = errors.New("no units available")

	// ErrInventoryInconsistency is returned by Release when booked_count is
	// already zero. The counters are clamped rather than driven negative;
	// the car record is left for manual reconciliation.
	ErrInventoryInconsistency = errors.New("inventory counters inconsistent")

	// ErrTotalBelowBooked is returned by Update when the requested
	// total_count would drop below the units currently booked.
	ErrTotalBelowBooked = errors.New("total count below booked units")

	ErrCarNotFound = errors.New("car not found")
)
