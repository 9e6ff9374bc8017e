package entity

// Car is one rental listing. Counters track aggregate units, not which
// physical car is out; Available is derived from AvailableCount.
type Car struct {
	Base
	Name           string  `db:"name"`
	Brand          string  `db:"brand"`
	DailyRate      int64   `db:"daily_rate"` // minor currency units per day
	TotalCount     int     `db:"total_count"`
	AvailableCount int     `db:"available_count"`
	BookedCount    int     `db:"booked_count"`
	Available      bool    `db:"available"`
	Location       string  `db:"location"`
	ImageURL       *string `db:"image_url"`
}

// CountsConsistent reports whether the unit counters satisfy
// available + booked == total with no negative values.
func (c *Car) CountsConsistent() bool {
	if c.AvailableCount < 0 || c.BookedCount < 0 || c.TotalCount < 0 {
		return false
	}
	return c.AvailableCount+c.BookedCount == c.TotalCount
}
