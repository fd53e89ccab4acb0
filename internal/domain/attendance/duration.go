package attendance

import (
	"math"
	"time"
)

// ComputeDuration returns the worked hours for a closed shift: the span
// between checkIn and checkOut minus the break interval when both break
// timestamps are set. The break must lie entirely inside the shift.
// The result carries full float precision; use RoundHours for display.
func ComputeDuration(checkIn, checkOut time.Time, breakIn, breakOut *time.Time) (float64, error) {
	if !checkOut.After(checkIn) {
		return 0, ErrInvalidRange
	}

	hours := checkOut.Sub(checkIn).Hours()

	if breakIn != nil && breakOut != nil {
		if breakOut.Before(*breakIn) {
			return 0, ErrInvalidBreakRange
		}
		if breakIn.Before(checkIn) || breakOut.After(checkOut) {
			return 0, ErrInvalidBreakRange
		}
		hours -= breakOut.Sub(*breakIn).Hours()
	}

	if hours < 0 {
		hours = 0
	}
	return hours, nil
}

// RoundHours rounds a duration to two decimals for display.
func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}
