package attendance

import "errors"

// Attendance domain errors
var (
	// Shift transition errors
	ErrAlreadyCheckedIn    = errors.New("you are already checked in")
	ErrNoActiveShift       = errors.New("no active shift found")
	ErrNoBreakStarted      = errors.New("no break has been started")
	ErrBreakAlreadyStarted = errors.New("a break has already been started for this shift")

	// Validation errors
	ErrInvalidRange      = errors.New("check-out must be after check-in")
	ErrInvalidBreakRange = errors.New("break interval must fall within the shift")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)
