package attendance

import (
	"time"

	"github.com/attendly-hq/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckRequest struct {
	EmployeeID string `json:"employee_id"`
}

func (r *CheckRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// AmendRequest lets an admin overwrite any subset of the four shift
// timestamps. Values are RFC3339 strings; an empty string clears the
// field (reopening the shift when check_out is cleared). Duration is
// recomputed, never set directly. CheckIn cannot be cleared, only
// replaced.
type AmendRequest struct {
	ID            string  `json:"-"`
	CheckIn       *string `json:"check_in,omitempty"`
	CheckOut      *string `json:"check_out,omitempty"`
	ShortBreakIn  *string `json:"short_break_in,omitempty"`
	ShortBreakOut *string `json:"short_break_out,omitempty"`
}

func (r *AmendRequest) Validate() error {
	var errs validator.ValidationErrors

	check := func(field string, value *string) {
		if value == nil || *value == "" {
			return
		}
		if _, valid := validator.IsValidDateTime(*value); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be an RFC3339 timestamp",
			})
		}
	}

	check("check_in", r.CheckIn)
	check("check_out", r.CheckOut)
	check("short_break_in", r.ShortBreakIn)
	check("short_break_out", r.ShortBreakOut)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RecordFilter narrows the report query. Both filters are optional and
// compose with logical AND; no filters means every record.
type RecordFilter struct {
	Month      *string `json:"month,omitempty"` // YYYY-MM
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && *f.Month != "" {
		if _, valid := validator.IsValidMonth(*f.Month); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MonthRange resolves the month filter to the half-open interval
// [firstOfMonth, firstOfNextMonth) in UTC. ok is false when no month
// filter is set.
func (f *RecordFilter) MonthRange() (start, end time.Time, ok bool) {
	if f.Month == nil || *f.Month == "" {
		return time.Time{}, time.Time{}, false
	}
	first, valid := validator.IsValidMonth(*f.Month)
	if !valid {
		return time.Time{}, time.Time{}, false
	}
	return first, first.AddDate(0, 1, 0), true
}

type RecordResponse struct {
	ID            string   `json:"id"`
	EmployeeID    string   `json:"employee_id"`
	CheckIn       string   `json:"check_in"`
	CheckOut      *string  `json:"check_out,omitempty"`
	ShortBreakIn  *string  `json:"short_break_in,omitempty"`
	ShortBreakOut *string  `json:"short_break_out,omitempty"`
	Status        string   `json:"status"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
	// Duration is the two-decimal display value, "N/A" while the shift is open.
	Duration  string `json:"duration"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ToggleResponse struct {
	Status string         `json:"status"`
	Record RecordResponse `json:"record"`
	// OpenRecordAnomalies counts extra open records found for the employee
	// beyond the one operated on. Zero on healthy data.
	OpenRecordAnomalies int `json:"open_record_anomalies,omitempty"`
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Records    []RecordResponse `json:"records"`
}
