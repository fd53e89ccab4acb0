package attendance

import (
	"context"
)

type Service interface {
	// ToggleCheck closes the employee's open shift, or opens a new one
	// when none exists.
	ToggleCheck(ctx context.Context, employeeID string) (ToggleResponse, error)

	// CheckIn opens a shift, ErrAlreadyCheckedIn when one is open.
	CheckIn(ctx context.Context, employeeID string) (RecordResponse, error)

	// CheckOut closes the open shift, ErrNoActiveShift when none is open.
	CheckOut(ctx context.Context, employeeID string) (RecordResponse, error)

	// StartBreak and EndBreak bound the single break interval of the
	// open shift.
	StartBreak(ctx context.Context, employeeID string) (RecordResponse, error)
	EndBreak(ctx context.Context, employeeID string) (RecordResponse, error)

	// Amend overwrites shift timestamps and recomputes the duration.
	Amend(ctx context.Context, req AmendRequest) (RecordResponse, error)

	// GetRecord fetches a single record by id.
	GetRecord(ctx context.Context, id string) (RecordResponse, error)

	// ListRecords runs the report query.
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// DeleteRecord removes a record by id.
	DeleteRecord(ctx context.Context, id string) error
}
