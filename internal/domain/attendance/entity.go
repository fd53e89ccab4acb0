package attendance

import (
	"time"
)

// Record status values, derived from the presence of CheckOut.
const (
	StatusCheckedIn  = "CheckedIn"
	StatusCheckedOut = "CheckedOut"
)

type Record struct {
	ID            string
	EmployeeID    string
	CheckIn       time.Time
	CheckOut      *time.Time
	ShortBreakIn  *time.Time
	ShortBreakOut *time.Time
	DurationHours *float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Status reports CheckedIn while the record has no check-out, CheckedOut after.
func (r *Record) Status() string {
	if r.CheckOut == nil {
		return StatusCheckedIn
	}
	return StatusCheckedOut
}

// IsOpen reports whether the record is still an open shift.
func (r *Record) IsOpen() bool {
	return r.CheckOut == nil
}

// OnBreak reports whether a break has been started but not ended on this record.
func (r *Record) OnBreak() bool {
	return r.ShortBreakIn != nil && r.ShortBreakOut == nil
}
