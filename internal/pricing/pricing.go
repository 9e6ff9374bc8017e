// Package pricing computes rental quotes. All amounts are integer minor
// currency units; the calculator is pure and deterministic.
package pricing

import (
	"errors"
	"time"
)

// Business policy constants. Bookings at or below the threshold require the
// higher deposit percentage.
const (
	DepositThreshold   int64 = 700_000
	DepositPercentLow        = 20 // total <= threshold
	DepositPercentHigh       = 15 // total > threshold
)

// ErrInvalidRange is returned when the rental period is zero or negative days.
var ErrInvalidRange = errors.New("pricing: end date must be after start date")

// Quote is the deterministic price breakdown for one booking.
type Quote struct {
	Days            int
	TotalPrice      int64
	DepositPercent  int
	DepositAmount   int64
	RemainingAmount int64
}

// Compute derives the quote for renting at dailyRate over [start, end).
// Dates carry date-only precision; the wall-clock time of either bound is
// ignored.
func Compute(dailyRate int64, start, end time.Time) (Quote, error) {
	days := daysBetween(start, end)
	if days <= 0 {
		return Quote{}, ErrInvalidRange
	}

	total := int64(days) * dailyRate

	percent := DepositPercentLow
	if total > DepositThreshold {
		percent = DepositPercentHigh
	}

	deposit := roundHalfUp(total*int64(percent), 100)

	return Quote{
		Days:            days,
		TotalPrice:      total,
		DepositPercent:  percent,
		DepositAmount:   deposit,
		RemainingAmount: total - deposit,
	}, nil
}

// daysBetween counts calendar days from start to end. Both bounds are
// truncated to UTC midnight first, so wall-clock components never change
// the count.
func daysBetween(start, end time.Time) int {
	start = truncateToDay(start)
	end = truncateToDay(end)

	return int(end.Sub(start) / (24 * time.Hour))
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// roundHalfUp divides num by den rounding half away from zero on the
// integer grid. Both operands are expected to be non-negative.
func roundHalfUp(num, den int64) int64 {
	return (num + den/2) / den
}
