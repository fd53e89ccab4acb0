package attendance

import (
	"context"
)

// Repository defines data access for attendance records.
type Repository interface {
	// Create inserts a new record and returns it with the generated id.
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID retrieves a record by id, ErrRecordNotFound when absent.
	GetByID(ctx context.Context, id string) (Record, error)

	// ListOpenByEmployee returns every open record for the employee,
	// most recent check-in first. Healthy data yields zero or one row.
	ListOpenByEmployee(ctx context.Context, employeeID string) ([]Record, error)

	// Update overwrites the mutable fields of an existing record.
	Update(ctx context.Context, record Record) error

	// Delete removes a record, ErrRecordNotFound when absent.
	Delete(ctx context.Context, id string) error

	// List returns records matching the filter, ordered by employee_id
	// then check_in ascending.
	List(ctx context.Context, filter RecordFilter) ([]Record, int64, error)

	// WithEmployeeLock runs fn while holding an exclusive per-employee
	// lock, so no other writer can interleave between the read and write
	// of one employee's shift state. Calls for different employees do
	// not block each other. fn failing rolls the write back.
	WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error
}
