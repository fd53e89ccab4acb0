package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/attendly-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, check_in, check_out, short_break_in, short_break_out,
	duration_hours, created_at, updated_at`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var record attendance.Record
	err := row.Scan(
		&record.ID, &record.EmployeeID, &record.CheckIn, &record.CheckOut,
		&record.ShortBreakIn, &record.ShortBreakOut,
		&record.DurationHours, &record.CreatedAt, &record.UpdatedAt,
	)
	return record, err
}

// WithEmployeeLock runs fn inside a transaction holding a per-employee
// advisory lock. The lock releases when the transaction ends, so two
// concurrent mutations for the same employee serialize while different
// employees proceed in parallel.
func (a *attendanceRepository) WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, a.db)
		if _, err := q.Exec(txCtx, `SELECT pg_advisory_xact_lock(hashtext($1))`, employeeID); err != nil {
			return fmt.Errorf("failed to acquire employee lock: %w", err)
		}
		return fn(txCtx)
	})
}

func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			employee_id, check_in, check_out, short_break_in, short_break_out, duration_hours
		) VALUES (
			$1, $2, $3, $4, $5, $6
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID,
		record.CheckIn,
		record.CheckOut,
		record.ShortBreakIn,
		record.ShortBreakOut,
		record.DurationHours,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendance_records
		WHERE id = $1`

	record, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return record, nil
}

func (a *attendanceRepository) ListOpenByEmployee(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND check_out IS NULL
		ORDER BY check_in DESC`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance records: %w", err)
	}

	return records, nil
}

func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET check_in = $2,
			check_out = $3,
			short_break_in = $4,
			short_break_out = $5,
			duration_hours = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		record.ID,
		record.CheckIn,
		record.CheckOut,
		record.ShortBreakIn,
		record.ShortBreakOut,
		record.DurationHours,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

func (a *attendanceRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []interface{}

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if start, end, ok := filter.MonthRange(); ok {
		args = append(args, start)
		conditions = append(conditions, fmt.Sprintf("check_in >= $%d", len(args)))
		args = append(args, end)
		conditions = append(conditions, fmt.Sprintf("check_in < $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendance_records` + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	query := `SELECT` + attendanceColumns + `
		FROM attendance_records` + whereClause + `
		ORDER BY employee_id ASC, check_in ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendance records: %w", err)
	}

	return records, total, nil
}
