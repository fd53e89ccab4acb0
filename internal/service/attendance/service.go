package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendly-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/validator"
)

type ServiceImpl struct {
	attendance.Repository
}

func NewAttendanceService(repo attendance.Repository) attendance.Service {
	return &ServiceImpl{Repository: repo}
}

// timeToString formats a timestamp for responses.
func timeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := timeToString(*t)
	return &formatted
}

// openShift returns the employee's open record obeying the tie-break
// rule: pick the most recent check-in, report the rest as anomalies.
func (s *ServiceImpl) openShift(ctx context.Context, employeeID string) (*attendance.Record, int, error) {
	open, err := s.Repository.ListOpenByEmployee(ctx, employeeID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list open records: %w", err)
	}
	if len(open) == 0 {
		return nil, 0, nil
	}

	anomalies := len(open) - 1
	if anomalies > 0 {
		slog.Warn("multiple open attendance records found",
			"employee_id", employeeID,
			"open_records", len(open),
		)
	}
	return &open[0], anomalies, nil
}

// closeShift stamps the check-out and recomputes the duration.
func (s *ServiceImpl) closeShift(ctx context.Context, record *attendance.Record, now time.Time) error {
	duration, err := attendance.ComputeDuration(record.CheckIn, now, record.ShortBreakIn, record.ShortBreakOut)
	if err != nil {
		return err
	}

	record.CheckOut = &now
	record.DurationHours = &duration

	if err := s.Repository.Update(ctx, *record); err != nil {
		return fmt.Errorf("failed to close shift: %w", err)
	}
	return nil
}

// ToggleCheck implements attendance.Service.
func (s *ServiceImpl) ToggleCheck(ctx context.Context, employeeID string) (attendance.ToggleResponse, error) {
	var resp attendance.ToggleResponse

	err := s.Repository.WithEmployeeLock(ctx, employeeID, func(ctx context.Context) error {
		now := time.Now().UTC()

		open, anomalies, err := s.openShift(ctx, employeeID)
		if err != nil {
			return err
		}

		if open == nil {
			created, err := s.Repository.Create(ctx, attendance.Record{
				EmployeeID: employeeID,
				CheckIn:    now,
			})
			if err != nil {
				return fmt.Errorf("failed to create attendance record: %w", err)
			}
			resp = attendance.ToggleResponse{
				Status: attendance.StatusCheckedIn,
				Record: mapRecordToResponse(created),
			}
			return nil
		}

		if err := s.closeShift(ctx, open, now); err != nil {
			return err
		}
		resp = attendance.ToggleResponse{
			Status:              attendance.StatusCheckedOut,
			Record:              mapRecordToResponse(*open),
			OpenRecordAnomalies: anomalies,
		}
		return nil
	})
	if err != nil {
		return attendance.ToggleResponse{}, err
	}

	return resp, nil
}

// CheckIn implements attendance.Service.
func (s *ServiceImpl) CheckIn(ctx context.Context, employeeID string) (attendance.RecordResponse, error) {
	var resp attendance.RecordResponse

	err := s.Repository.WithEmployeeLock(ctx, employeeID, func(ctx context.Context) error {
		open, _, err := s.openShift(ctx, employeeID)
		if err != nil {
			return err
		}
		if open != nil {
			return attendance.ErrAlreadyCheckedIn
		}

		created, err := s.Repository.Create(ctx, attendance.Record{
			EmployeeID: employeeID,
			CheckIn:    time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		resp = mapRecordToResponse(created)
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return resp, nil
}

// CheckOut implements attendance.Service.
func (s *ServiceImpl) CheckOut(ctx context.Context, employeeID string) (attendance.RecordResponse, error) {
	var resp attendance.RecordResponse

	err := s.Repository.WithEmployeeLock(ctx, employeeID, func(ctx context.Context) error {
		open, _, err := s.openShift(ctx, employeeID)
		if err != nil {
			return err
		}
		if open == nil {
			return attendance.ErrNoActiveShift
		}

		if err := s.closeShift(ctx, open, time.Now().UTC()); err != nil {
			return err
		}
		resp = mapRecordToResponse(*open)
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return resp, nil
}

// StartBreak implements attendance.Service.
func (s *ServiceImpl) StartBreak(ctx context.Context, employeeID string) (attendance.RecordResponse, error) {
	var resp attendance.RecordResponse

	err := s.Repository.WithEmployeeLock(ctx, employeeID, func(ctx context.Context) error {
		open, _, err := s.openShift(ctx, employeeID)
		if err != nil {
			return err
		}
		if open == nil {
			return attendance.ErrNoActiveShift
		}
		if open.ShortBreakIn != nil {
			return attendance.ErrBreakAlreadyStarted
		}

		now := time.Now().UTC()
		open.ShortBreakIn = &now
		if err := s.Repository.Update(ctx, *open); err != nil {
			return fmt.Errorf("failed to start break: %w", err)
		}
		resp = mapRecordToResponse(*open)
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return resp, nil
}

// EndBreak implements attendance.Service.
func (s *ServiceImpl) EndBreak(ctx context.Context, employeeID string) (attendance.RecordResponse, error) {
	var resp attendance.RecordResponse

	err := s.Repository.WithEmployeeLock(ctx, employeeID, func(ctx context.Context) error {
		open, _, err := s.openShift(ctx, employeeID)
		if err != nil {
			return err
		}
		if open == nil {
			return attendance.ErrNoActiveShift
		}
		if open.ShortBreakIn == nil {
			return attendance.ErrNoBreakStarted
		}

		now := time.Now().UTC()
		open.ShortBreakOut = &now
		if err := s.Repository.Update(ctx, *open); err != nil {
			return fmt.Errorf("failed to end break: %w", err)
		}
		resp = mapRecordToResponse(*open)
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return resp, nil
}

// Amend implements attendance.Service. Admin path: overwrites any subset
// of the four timestamps and recomputes the duration; an invalid result
// leaves the stored record untouched.
func (s *ServiceImpl) Amend(ctx context.Context, req attendance.AmendRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	existing, err := s.Repository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	var resp attendance.RecordResponse

	err = s.Repository.WithEmployeeLock(ctx, existing.EmployeeID, func(ctx context.Context) error {
		record, err := s.Repository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		// Absent field = keep, empty string = clear, timestamp = set.
		applyTime := func(target **time.Time, value *string) {
			if value == nil {
				return
			}
			if *value == "" {
				*target = nil
				return
			}
			parsed, _ := validator.IsValidDateTime(*value)
			parsed = parsed.UTC()
			*target = &parsed
		}

		if req.CheckIn != nil && *req.CheckIn != "" {
			parsed, _ := validator.IsValidDateTime(*req.CheckIn)
			record.CheckIn = parsed.UTC()
		}
		applyTime(&record.CheckOut, req.CheckOut)
		applyTime(&record.ShortBreakIn, req.ShortBreakIn)
		applyTime(&record.ShortBreakOut, req.ShortBreakOut)

		if record.CheckOut != nil {
			duration, err := attendance.ComputeDuration(record.CheckIn, *record.CheckOut, record.ShortBreakIn, record.ShortBreakOut)
			if err != nil {
				return err
			}
			record.DurationHours = &duration
		} else {
			record.DurationHours = nil
		}

		if err := s.Repository.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to amend record: %w", err)
		}
		resp = mapRecordToResponse(record)
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return resp, nil
}

// GetRecord implements attendance.Service.
func (s *ServiceImpl) GetRecord(ctx context.Context, id string) (attendance.RecordResponse, error) {
	record, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return mapRecordToResponse(record), nil
}

// ListRecords implements attendance.Service.
func (s *ServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records, total, err := s.Repository.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapRecordToResponse(record))
	}

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Records:    responses,
	}, nil
}

// DeleteRecord implements attendance.Service.
func (s *ServiceImpl) DeleteRecord(ctx context.Context, id string) error {
	if err := s.Repository.Delete(ctx, id); err != nil {
		return err
	}
	return nil
}

// mapRecordToResponse converts a Record entity to RecordResponse.
func mapRecordToResponse(record attendance.Record) attendance.RecordResponse {
	duration := "N/A"
	var durationPtr *float64
	if record.DurationHours != nil {
		rounded := attendance.RoundHours(*record.DurationHours)
		duration = fmt.Sprintf("%.2f", rounded)
		durationPtr = record.DurationHours
	}

	return attendance.RecordResponse{
		ID:            record.ID,
		EmployeeID:    record.EmployeeID,
		CheckIn:       timeToString(record.CheckIn),
		CheckOut:      timePtrToString(record.CheckOut),
		ShortBreakIn:  timePtrToString(record.ShortBreakIn),
		ShortBreakOut: timePtrToString(record.ShortBreakOut),
		Status:        record.Status(),
		DurationHours: durationPtr,
		Duration:      duration,
		CreatedAt:     timeToString(record.CreatedAt),
		UpdatedAt:     timeToString(record.UpdatedAt),
	}
}
