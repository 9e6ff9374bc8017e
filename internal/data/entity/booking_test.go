package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusCanTransitionTo(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		BookingStatusPending:          {BookingStatusConfirmed, BookingStatusCancelled},
		BookingStatusConfirmed:        {BookingStatusNeedToBeReturned, BookingStatusCompleted, BookingStatusCancelled},
		BookingStatusNeedToBeReturned: {BookingStatusCompleted},
		BookingStatusCompleted:        {},
		BookingStatusCancelled:        {},
	}

	all := []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusNeedToBeReturned,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}

	for from, targets := range allowed {
		permitted := make(map[BookingStatus]bool)
		for _, to := range targets {
			permitted[to] = true
		}
		for _, to := range all {
			got := from.CanTransitionTo(to)
			assert.Equal(t, permitted[to], got, "%s -> %s", from, to)
		}
	}
}

func TestBookingStatusClassification(t *testing.T) {
	assert.True(t, BookingStatusPending.CountsAgainstAvailability())
	assert.True(t, BookingStatusConfirmed.CountsAgainstAvailability())
	assert.False(t, BookingStatusNeedToBeReturned.CountsAgainstAvailability())
	assert.False(t, BookingStatusCompleted.CountsAgainstAvailability())
	assert.False(t, BookingStatusCancelled.CountsAgainstAvailability())

	assert.True(t, BookingStatusPending.HoldsUnit())
	assert.True(t, BookingStatusConfirmed.HoldsUnit())
	assert.True(t, BookingStatusNeedToBeReturned.HoldsUnit())
	assert.False(t, BookingStatusCompleted.HoldsUnit())
	assert.False(t, BookingStatusCancelled.HoldsUnit())
}

func TestCarCountsConsistent(t *testing.T) {
	car := Car{TotalCount: 3, AvailableCount: 2, BookedCount: 1}
	assert.True(t, car.CountsConsistent())

	car.BookedCount = 2
	assert.False(t, car.CountsConsistent())

	car = Car{TotalCount: 1, AvailableCount: -1, BookedCount: 2}
	assert.False(t, car.CountsConsistent())
}
