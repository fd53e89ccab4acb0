package attendance

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/attendly-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository is an in-memory attendance.Repository used to test
// the state machine without a database. WithEmployeeLock serializes
// writers per employee with a mutex, mirroring the per-employee
// advisory lock of the PostgreSQL implementation.
type memoryRepository struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	records map[string]attendance.Record
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		locks:   make(map[string]*sync.Mutex),
		records: make(map[string]attendance.Record),
	}
}

func (m *memoryRepository) employeeLock(employeeID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[employeeID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[employeeID] = lock
	}
	return lock
}

func (m *memoryRepository) WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error {
	lock := m.employeeLock(employeeID)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func (m *memoryRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	m.records[record.ID] = record
	return record, nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return record, nil
}

func (m *memoryRepository) ListOpenByEmployee(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var open []attendance.Record
	for _, record := range m.records {
		if record.EmployeeID == employeeID && record.IsOpen() {
			open = append(open, record)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CheckIn.After(open[j].CheckIn)
	})
	return open, nil
}

func (m *memoryRepository) Update(ctx context.Context, record attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ID]; !ok {
		return attendance.ErrRecordNotFound
	}
	record.UpdatedAt = time.Now().UTC()
	m.records[record.ID] = record
	return nil
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return attendance.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start, end, hasMonth := filter.MonthRange()

	var matched []attendance.Record
	for _, record := range m.records {
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && record.EmployeeID != *filter.EmployeeID {
			continue
		}
		if hasMonth && (record.CheckIn.Before(start) || !record.CheckIn.Before(end)) {
			continue
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].EmployeeID != matched[j].EmployeeID {
			return matched[i].EmployeeID < matched[j].EmployeeID
		}
		return matched[i].CheckIn.Before(matched[j].CheckIn)
	})

	return matched, int64(len(matched)), nil
}

func (m *memoryRepository) countForEmployee(employeeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, record := range m.records {
		if record.EmployeeID == employeeID {
			count++
		}
	}
	return count
}

func (m *memoryRepository) openCount(employeeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, record := range m.records {
		if record.EmployeeID == employeeID && record.IsOpen() {
			count++
		}
	}
	return count
}

func (m *memoryRepository) seed(t *testing.T, record attendance.Record) attendance.Record {
	t.Helper()
	created, err := m.Create(context.Background(), record)
	require.NoError(t, err)
	return created
}

// ===== TOGGLE =====

func TestToggleCheck_OpensThenClosesShift(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	first, err := svc.ToggleCheck(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedIn, first.Status)
	assert.Equal(t, "N/A", first.Record.Duration)

	second, err := svc.ToggleCheck(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedOut, second.Status)
	assert.NotNil(t, second.Record.CheckOut)

	// Exactly one record, now closed.
	assert.Equal(t, 1, repo.countForEmployee("EMP001"))
	assert.Equal(t, 0, repo.openCount("EMP001"))
}

func TestToggleCheck_SurfacesOpenRecordAnomaly(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	older := time.Now().UTC().Add(-3 * time.Hour)
	newer := time.Now().UTC().Add(-1 * time.Hour)
	repo.seed(t, attendance.Record{EmployeeID: "EMP001", CheckIn: older})
	newest := repo.seed(t, attendance.Record{EmployeeID: "EMP001", CheckIn: newer})

	resp, err := svc.ToggleCheck(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedOut, resp.Status)
	assert.Equal(t, 1, resp.OpenRecordAnomalies)
	// The most recently opened record is the one closed.
	assert.Equal(t, newest.ID, resp.Record.ID)
	assert.Equal(t, 1, repo.openCount("EMP001"))
}

func TestToggleCheck_ConcurrentCallsNeverLeaveTwoOpenRecords(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ToggleCheck(ctx, "EMP001")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	open := repo.openCount("EMP001")
	assert.LessOrEqual(t, open, 1, "at most one open record may exist")
	// An even number of toggles returns the employee to NoActiveShift.
	assert.Equal(t, 0, open)
	assert.Equal(t, workers/2, repo.countForEmployee("EMP001"))
}

func TestToggleCheck_IndependentEmployees(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	_, err := svc.ToggleCheck(ctx, "EMP001")
	require.NoError(t, err)
	resp, err := svc.ToggleCheck(ctx, "EMP002")
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusCheckedIn, resp.Status)
	assert.Equal(t, 1, repo.openCount("EMP001"))
	assert.Equal(t, 1, repo.openCount("EMP002"))
}

// ===== CHECK-IN / CHECK-OUT =====

func TestCheckIn_FailsWhenAlreadyCheckedIn(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	_, err := svc.CheckIn(ctx, "EMP001")
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, "EMP001")
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	// No extra record was created.
	assert.Equal(t, 1, repo.countForEmployee("EMP001"))
}

func TestCheckOut_FailsWithoutActiveShift(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	_, err := svc.CheckOut(ctx, "EMP001")
	assert.ErrorIs(t, err, attendance.ErrNoActiveShift)
}

func TestCheckOut_ClosesShiftAndComputesDuration(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	checkIn := time.Now().UTC().Add(-9 * time.Hour)
	repo.seed(t, attendance.Record{EmployeeID: "EMP001", CheckIn: checkIn})

	resp, err := svc.CheckOut(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedOut, resp.Status)
	require.NotNil(t, resp.DurationHours)
	assert.InDelta(t, 9.0, *resp.DurationHours, 0.01)
}

// ===== BREAKS =====

func TestBreakLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	_, err := svc.CheckIn(ctx, "EMP001")
	require.NoError(t, err)

	_, err = svc.EndBreak(ctx, "EMP001")
	assert.ErrorIs(t, err, attendance.ErrNoBreakStarted)

	started, err := svc.StartBreak(ctx, "EMP001")
	require.NoError(t, err)
	assert.NotNil(t, started.ShortBreakIn)

	_, err = svc.StartBreak(ctx, "EMP001")
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyStarted)

	ended, err := svc.EndBreak(ctx, "EMP001")
	require.NoError(t, err)
	assert.NotNil(t, ended.ShortBreakOut)
	assert.Equal(t, attendance.StatusCheckedIn, ended.Status)
}

func TestStartBreak_FailsWithoutActiveShift(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	_, err := svc.StartBreak(ctx, "EMP001")
	assert.ErrorIs(t, err, attendance.ErrNoActiveShift)
}

// ===== AMEND =====

func strPtr(s string) *string { return &s }

func ts(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func tsPtr(value string) *time.Time {
	parsed := ts(value)
	return &parsed
}

func TestAmend_RecomputesDuration(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	seeded := repo.seed(t, attendance.Record{
		EmployeeID: "EMP001",
		CheckIn:    time.Now().UTC(),
	})

	resp, err := svc.Amend(ctx, attendance.AmendRequest{
		ID:            seeded.ID,
		CheckIn:       strPtr("2024-09-01T08:00:00Z"),
		CheckOut:      strPtr("2024-09-01T17:00:00Z"),
		ShortBreakIn:  strPtr("2024-09-01T12:00:00Z"),
		ShortBreakOut: strPtr("2024-09-01T12:30:00Z"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.DurationHours)
	assert.InDelta(t, 8.5, *resp.DurationHours, 0.0001)
	assert.Equal(t, "8.50", resp.Duration)
	assert.Equal(t, attendance.StatusCheckedOut, resp.Status)
}

func TestAmend_ClearingCheckOutReopensShift(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	seeded := seedClosed(t, repo, "EMP001", "2024-09-01T08:00:00Z", "2024-09-01T17:00:00Z")

	resp, err := svc.Amend(ctx, attendance.AmendRequest{
		ID:       seeded.ID,
		CheckOut: strPtr(""), // empty string clears the field
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedIn, resp.Status)
	assert.Nil(t, resp.CheckOut)
	assert.Nil(t, resp.DurationHours)
	assert.Equal(t, "N/A", resp.Duration)

	stored, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOpen())
	assert.Nil(t, stored.DurationHours)
}

func TestAmend_ClearingBreakRecomputesDuration(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	seeded := repo.seed(t, attendance.Record{
		EmployeeID:    "EMP001",
		CheckIn:       ts("2024-09-01T08:00:00Z"),
		CheckOut:      tsPtr("2024-09-01T17:00:00Z"),
		ShortBreakIn:  tsPtr("2024-09-01T12:00:00Z"),
		ShortBreakOut: tsPtr("2024-09-01T12:30:00Z"),
	})

	resp, err := svc.Amend(ctx, attendance.AmendRequest{
		ID:            seeded.ID,
		ShortBreakIn:  strPtr(""),
		ShortBreakOut: strPtr(""),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.DurationHours)
	assert.InDelta(t, 9.0, *resp.DurationHours, 0.0001)
	assert.Nil(t, resp.ShortBreakIn)
	assert.Nil(t, resp.ShortBreakOut)
}

func TestAmend_InvalidRange_LeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	checkIn := ts("2024-09-01T08:00:00Z")
	checkOut := ts("2024-09-01T17:00:00Z")
	hours := 9.0
	seeded := repo.seed(t, attendance.Record{
		EmployeeID:    "EMP001",
		CheckIn:       checkIn,
		CheckOut:      &checkOut,
		DurationHours: &hours,
	})

	_, err := svc.Amend(ctx, attendance.AmendRequest{
		ID:       seeded.ID,
		CheckOut: strPtr("2024-09-01T07:00:00Z"), // earlier than check-in
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidRange)

	// Stored record unchanged.
	unchanged, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, unchanged.CheckOut)
	assert.True(t, unchanged.CheckOut.Equal(checkOut))
	require.NotNil(t, unchanged.DurationHours)
	assert.Equal(t, 9.0, *unchanged.DurationHours)
}

func TestAmend_InvalidBreakRange(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	seeded := repo.seed(t, attendance.Record{
		EmployeeID: "EMP001",
		CheckIn:    ts("2024-09-01T08:00:00Z"),
	})

	_, err := svc.Amend(ctx, attendance.AmendRequest{
		ID:            seeded.ID,
		CheckOut:      strPtr("2024-09-01T17:00:00Z"),
		ShortBreakIn:  strPtr("2024-09-01T07:00:00Z"), // before the shift
		ShortBreakOut: strPtr("2024-09-01T07:30:00Z"),
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidBreakRange)
}

func TestAmend_UnknownRecord(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	_, err := svc.Amend(ctx, attendance.AmendRequest{
		ID:       uuid.NewString(),
		CheckOut: strPtr("2024-09-01T17:00:00Z"),
	})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

// ===== REPORTING =====

func seedClosed(t *testing.T, repo *memoryRepository, employeeID, checkIn, checkOut string) attendance.Record {
	t.Helper()
	in := ts(checkIn)
	out := ts(checkOut)
	hours, err := attendance.ComputeDuration(in, out, nil, nil)
	require.NoError(t, err)
	return repo.seed(t, attendance.Record{
		EmployeeID:    employeeID,
		CheckIn:       in,
		CheckOut:      &out,
		DurationHours: &hours,
	})
}

func TestListRecords_MonthAndEmployeeFilter(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	seedClosed(t, repo, "EMP001", "2024-09-02T08:00:00Z", "2024-09-02T17:00:00Z")
	seedClosed(t, repo, "EMP001", "2024-09-01T08:00:00Z", "2024-09-01T17:00:00Z")
	seedClosed(t, repo, "EMP001", "2024-08-31T08:00:00Z", "2024-08-31T17:00:00Z") // prior month
	seedClosed(t, repo, "EMP002", "2024-09-01T08:00:00Z", "2024-09-01T17:00:00Z") // other employee

	resp, err := svc.ListRecords(ctx, attendance.RecordFilter{
		Month:      strPtr("2024-09"),
		EmployeeID: strPtr("EMP001"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, int64(2), resp.TotalCount)
	// Ordered by check-in ascending.
	assert.Equal(t, "2024-09-01T08:00:00Z", resp.Records[0].CheckIn)
	assert.Equal(t, "2024-09-02T08:00:00Z", resp.Records[1].CheckIn)
	for _, record := range resp.Records {
		assert.Equal(t, "EMP001", record.EmployeeID)
	}
}

func TestListRecords_FiltersAreIndependentlyOptional(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	seedClosed(t, repo, "EMP002", "2024-09-01T08:00:00Z", "2024-09-01T17:00:00Z")
	seedClosed(t, repo, "EMP001", "2024-08-15T08:00:00Z", "2024-08-15T17:00:00Z")
	seedClosed(t, repo, "EMP001", "2024-09-01T09:00:00Z", "2024-09-01T17:00:00Z")

	// No filters: everything, ordered employee then check-in.
	all, err := svc.ListRecords(ctx, attendance.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all.Records, 3)
	assert.Equal(t, "EMP001", all.Records[0].EmployeeID)
	assert.Equal(t, "EMP001", all.Records[1].EmployeeID)
	assert.Equal(t, "EMP002", all.Records[2].EmployeeID)

	// Employee only, all time.
	byEmployee, err := svc.ListRecords(ctx, attendance.RecordFilter{EmployeeID: strPtr("EMP001")})
	require.NoError(t, err)
	assert.Len(t, byEmployee.Records, 2)

	// Month only, all employees.
	byMonth, err := svc.ListRecords(ctx, attendance.RecordFilter{Month: strPtr("2024-09")})
	require.NoError(t, err)
	assert.Len(t, byMonth.Records, 2)
}

func TestListRecords_RejectsBadMonth(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	_, err := svc.ListRecords(ctx, attendance.RecordFilter{Month: strPtr("September")})
	assert.Error(t, err)
}

// ===== DELETE =====

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewAttendanceService(repo)

	seeded := repo.seed(t, attendance.Record{EmployeeID: "EMP001", CheckIn: time.Now().UTC()})

	require.NoError(t, svc.DeleteRecord(ctx, seeded.ID))
	assert.ErrorIs(t, svc.DeleteRecord(ctx, seeded.ID), attendance.ErrRecordNotFound)
}
