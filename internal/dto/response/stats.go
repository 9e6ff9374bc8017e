package response

import "time"

// FleetStatsResponse is the cached admin dashboard aggregate.
type FleetStatsResponse struct {
	TotalCars       int64     `json:"total_cars"`
	TotalUnits      int64     `json:"total_units"`
	AvailableUnits  int64     `json:"available_units"`
	BookedUnits     int64     `json:"booked_units"`
	TotalBookings   int64     `json:"total_bookings"`
	ActiveBookings  int64     `json:"active_bookings"`
	PendingPayments int64     `json:"pending_payments"`
	VerifiedRevenue int64     `json:"verified_revenue"`
	GeneratedAt     time.Time `json:"generated_at"`
}
