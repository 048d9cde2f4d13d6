package timeclock

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduleRepo struct {
	entries map[string]*timeclock.ScheduleEntry
	created []timeclock.ScheduleEntry
}

func newFakeScheduleRepo(entries ...timeclock.ScheduleEntry) *fakeScheduleRepo {
	repo := &fakeScheduleRepo{entries: make(map[string]*timeclock.ScheduleEntry)}
	for i := range entries {
		e := entries[i]
		repo.entries[e.ID] = &e
	}
	return repo
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id string, companyID string) (timeclock.ScheduleEntry, error) {
	if e, ok := r.entries[id]; ok && e.CompanyID == companyID {
		return *e, nil
	}
	return timeclock.ScheduleEntry{}, timeclock.ErrEntryNotFound
}

func (r *fakeScheduleRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, dateLocal string, companyID string) (*timeclock.ScheduleEntry, error) {
	for _, e := range r.entries {
		if e.EmployeeID == employeeID && e.CompanyID == companyID && e.Date.Format("2006-01-02") == dateLocal {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) ListRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]timeclock.ScheduleEntry, error) {
	var out []timeclock.ScheduleEntry
	for _, e := range r.entries {
		if e.EmployeeID != employeeID || e.CompanyID != companyID {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeScheduleRepo) ApplyPatch(ctx context.Context, patch timeclock.Patch, companyID string) error {
	e, ok := r.entries[patch.ScheduleID]
	if !ok || e.CompanyID != companyID {
		return timeclock.ErrEntryNotFound
	}
	if patch.ClockInAt != nil {
		e.ClockInAt = patch.ClockInAt
	}
	if patch.BreakStartAt != nil {
		e.BreakStartAt = patch.BreakStartAt
	}
	if patch.BreakEndAt != nil {
		e.BreakEndAt = patch.BreakEndAt
	}
	if patch.ClockOutAt != nil {
		e.ClockOutAt = patch.ClockOutAt
	}
	if patch.ClearMissedCheckout {
		e.MissedCheckout = false
	}
	return nil
}

func (r *fakeScheduleRepo) CreateMany(ctx context.Context, entries []timeclock.ScheduleEntry) (int, error) {
	r.created = append(r.created, entries...)
	return len(entries), nil
}

func (r *fakeScheduleRepo) ListOpenPastPlannedEnd(ctx context.Context, cutoff time.Time) ([]timeclock.ScheduleEntry, error) {
	var out []timeclock.ScheduleEntry
	for _, e := range r.entries {
		if e.ClockInAt != nil && e.ClockOutAt == nil && !e.MissedCheckout &&
			e.PlannedEnd != nil && e.PlannedEnd.Before(cutoff) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) MarkMissedCheckout(ctx context.Context, id string) error {
	e, ok := r.entries[id]
	if !ok {
		return timeclock.ErrEntryNotFound
	}
	e.MissedCheckout = true
	return nil
}

type fakeGeofenceRepo struct {
	config *timeclock.GeofenceConfig
}

func (r *fakeGeofenceRepo) GetByBranchID(ctx context.Context, branchID string, companyID string) (*timeclock.GeofenceConfig, error) {
	return r.config, nil
}

type fakeIdemStore struct {
	reserved map[string]bool
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{reserved: make(map[string]bool)}
}

func (s *fakeIdemStore) Reserve(ctx context.Context, employeeID string, key string) (bool, error) {
	k := employeeID + ":" + key
	if s.reserved[k] {
		return false, nil
	}
	s.reserved[k] = true
	return true, nil
}

func (s *fakeIdemStore) Release(ctx context.Context, employeeID string, key string) error {
	delete(s.reserved, employeeID+":"+key)
	return nil
}

func authedContext(t *testing.T, employeeID, companyID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"company_id":  companyID,
		"type":        "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func newService(repo *fakeScheduleRepo, geofence *fakeGeofenceRepo, now time.Time) (*Service, *fakeIdemStore) {
	idem := newFakeIdemStore()
	svc := NewTimeclockService(repo, geofence, idem, 0)
	svc.now = func() time.Time { return now }
	return svc, idem
}

func clockInRequest(key string) timeclock.ClockActionRequest {
	return timeclock.ClockActionRequest{
		Latitude:       -6.2,
		Longitude:      106.8,
		FixOutcome:     string(timeclock.FixOK),
		IdempotencyKey: key,
	}
}

func TestService_TodayStatus_NoSchedule(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	svc, _ := newService(newFakeScheduleRepo(), &fakeGeofenceRepo{}, day.Add(10*time.Hour))

	resp, err := svc.TodayStatus(authedContext(t, "emp-1", "co-1"), nil, nil)
	require.NoError(t, err)

	assert.False(t, resp.HasScheduleToday)
	require.NotNil(t, resp.Eligibility)
	assert.False(t, resp.Eligibility.CanClockIn)
}

func TestService_TodayStatus_WithEntry(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))

	svc, _ := newService(newFakeScheduleRepo(entry), &fakeGeofenceRepo{}, day.Add(8*time.Hour))

	resp, err := svc.TodayStatus(authedContext(t, "emp-1", "co-1"), nil, nil)
	require.NoError(t, err)

	assert.True(t, resp.HasScheduleToday)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, string(timeclock.StatusPlanned), resp.Entry.Status)
	require.NotNil(t, resp.Eligibility)
	assert.True(t, resp.Eligibility.CanClockIn)
}

func TestService_TodayStatus_ReportsDistance(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.GeofenceRequired = true

	geofence := &fakeGeofenceRepo{config: &timeclock.GeofenceConfig{
		Latitude: -6.2, Longitude: 106.8, RadiusMeters: 100,
	}}
	svc, _ := newService(newFakeScheduleRepo(entry), geofence, day.Add(8*time.Hour))

	coord := &timeclock.Coordinate{Latitude: -6.2, Longitude: 106.8}
	resp, err := svc.TodayStatus(authedContext(t, "emp-1", "co-1"), coord, nil)
	require.NoError(t, err)

	require.NotNil(t, resp.DistanceMeters)
	assert.InDelta(t, 0, *resp.DistanceMeters, 0.001)
	assert.True(t, resp.Eligibility.CanClockIn)
}

func TestService_SubmitAction_ClockIn(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))

	repo := newFakeScheduleRepo(entry)
	now := day.Add(9 * time.Hour)
	svc, _ := newService(repo, &fakeGeofenceRepo{}, now)

	resp, err := svc.SubmitAction(authedContext(t, "emp-1", "co-1"), timeclock.ActionClockIn, clockInRequest("key-1"))
	require.NoError(t, err)

	require.NotNil(t, resp.ClockInAt)
	assert.Equal(t, string(timeclock.StatusClockedIn), resp.Status)
	require.NotNil(t, repo.entries["sched-1"].ClockInAt)
	assert.Equal(t, now, *repo.entries["sched-1"].ClockInAt)
}

func TestService_SubmitAction_DuplicateKey(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)

	svc, _ := newService(newFakeScheduleRepo(entry), &fakeGeofenceRepo{}, day.Add(9*time.Hour))
	ctx := authedContext(t, "emp-1", "co-1")

	_, err := svc.SubmitAction(ctx, timeclock.ActionClockIn, clockInRequest("key-1"))
	require.NoError(t, err)

	_, err = svc.SubmitAction(ctx, timeclock.ActionClockIn, clockInRequest("key-1"))
	assert.ErrorIs(t, err, timeclock.ErrDuplicateSubmission)
}

func TestService_SubmitAction_FailureReleasesKey(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	svc, idem := newService(newFakeScheduleRepo(), &fakeGeofenceRepo{}, day.Add(9*time.Hour))
	ctx := authedContext(t, "emp-1", "co-1")

	_, err := svc.SubmitAction(ctx, timeclock.ActionClockIn, clockInRequest("key-1"))
	assert.ErrorIs(t, err, timeclock.ErrNoScheduleToday)
	assert.Empty(t, idem.reserved, "a rejected action must be retryable with the same key")
}

func TestService_SubmitAction_OutsideGeofence(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.GeofenceRequired = true

	geofence := &fakeGeofenceRepo{config: &timeclock.GeofenceConfig{
		Latitude: 10, Longitude: 10, RadiusMeters: 100,
	}}
	svc, _ := newService(newFakeScheduleRepo(entry), geofence, day.Add(9*time.Hour))

	_, err := svc.SubmitAction(authedContext(t, "emp-1", "co-1"), timeclock.ActionClockIn, clockInRequest("key-1"))
	assert.ErrorIs(t, err, timeclock.ErrOutsideGeofence)
}

func TestService_SubmitAction_TimeoutBypasses(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.GeofenceRequired = true

	geofence := &fakeGeofenceRepo{config: &timeclock.GeofenceConfig{
		Latitude: 10, Longitude: 10, RadiusMeters: 100,
	}}
	repo := newFakeScheduleRepo(entry)
	svc, _ := newService(repo, geofence, day.Add(9*time.Hour))

	req := timeclock.ClockActionRequest{
		FixOutcome:     string(timeclock.FixTimeout),
		IdempotencyKey: "key-1",
	}
	resp, err := svc.SubmitAction(authedContext(t, "emp-1", "co-1"), timeclock.ActionClockIn, req)
	require.NoError(t, err)
	assert.NotNil(t, resp.ClockInAt)
}

func TestService_SubmitAction_DeniedNeverBypasses(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.GeofenceRequired = true

	geofence := &fakeGeofenceRepo{config: &timeclock.GeofenceConfig{
		Latitude: 10, Longitude: 10, RadiusMeters: 100,
	}}
	svc, _ := newService(newFakeScheduleRepo(entry), geofence, day.Add(9*time.Hour))

	req := timeclock.ClockActionRequest{
		FixOutcome:     string(timeclock.FixDenied),
		IdempotencyKey: "key-1",
	}
	_, err := svc.SubmitAction(authedContext(t, "emp-1", "co-1"), timeclock.ActionClockIn, req)
	assert.ErrorIs(t, err, timeclock.ErrLocationDenied)
}

func TestService_SubmitAction_ClockOutClearsMissedCheckout(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(9 * time.Hour))
	entry.MissedCheckout = true

	repo := newFakeScheduleRepo(entry)
	svc, _ := newService(repo, &fakeGeofenceRepo{}, day.Add(18*time.Hour))

	resp, err := svc.SubmitAction(authedContext(t, "emp-1", "co-1"), timeclock.ActionClockOut, clockInRequest("key-1"))
	require.NoError(t, err)

	assert.False(t, resp.MissedCheckout)
	assert.False(t, repo.entries["sched-1"].MissedCheckout)
}

func TestService_WeeklySummary(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) // Monday
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(9 * time.Hour))
	entry.ClockOutAt = tp(day.Add(17 * time.Hour))

	svc, _ := newService(newFakeScheduleRepo(entry), &fakeGeofenceRepo{}, day.AddDate(0, 0, 8))

	resp, err := svc.WeeklySummary(authedContext(t, "emp-1", "co-1"), timeclock.WeekQuery{WeekStart: "2025-03-10"})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", resp.WeekStart)
	assert.Equal(t, 480, resp.TotalMinutes)
}

func TestService_Calendar_OvernightTailFromPreviousDay(t *testing.T) {
	// The overnight entry belongs to 03-09, but its TAIL lands inside the
	// requested window
	day := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(22 * time.Hour))
	entry.PlannedEnd = tp(day.Add(30 * time.Hour))

	svc, _ := newService(newFakeScheduleRepo(entry), &fakeGeofenceRepo{}, day.AddDate(0, 0, 5))

	resp, err := svc.Calendar(authedContext(t, "emp-1", "co-1"), timeclock.CalendarQuery{
		StartDate: "2025-03-10",
		EndDate:   "2025-03-16",
	})
	require.NoError(t, err)

	require.Len(t, resp.Pieces, 1)
	assert.Equal(t, "2025-03-10", resp.Pieces[0].Date)
	assert.Equal(t, string(timeclock.PartTail), resp.Pieces[0].Part)
}

func TestService_UpdateTimes(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(23*time.Hour + 30*time.Minute))

	repo := newFakeScheduleRepo(entry)
	svc, _ := newService(repo, &fakeGeofenceRepo{}, day.AddDate(0, 0, 1).Add(8*time.Hour))

	resp, err := svc.UpdateTimes(authedContext(t, "emp-1", "co-1"), timeclock.EditTimesRequest{
		ID:       "sched-1",
		ClockOut: sp("00:30"),
	})
	require.NoError(t, err)

	// The edited out rolled past midnight onto the next day
	require.NotNil(t, repo.entries["sched-1"].ClockOutAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(30*time.Minute), *repo.entries["sched-1"].ClockOutAt)
	assert.Equal(t, string(timeclock.StatusClockedOut), resp.Status)
}

func TestService_UpdateTimes_ZeroLengthRejected(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(9 * time.Hour))

	svc, _ := newService(newFakeScheduleRepo(entry), &fakeGeofenceRepo{}, day.Add(10*time.Hour))

	_, err := svc.UpdateTimes(authedContext(t, "emp-1", "co-1"), timeclock.EditTimesRequest{
		ID:       "sched-1",
		ClockOut: sp("09:00"),
	})
	assert.ErrorIs(t, err, timeclock.ErrZeroLengthInterval)
}

func TestService_UpdateTimes_OtherEmployeeEntryHidden(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.EmployeeID = "emp-2"

	svc, _ := newService(newFakeScheduleRepo(entry), &fakeGeofenceRepo{}, day.Add(10*time.Hour))

	_, err := svc.UpdateTimes(authedContext(t, "emp-1", "co-1"), timeclock.EditTimesRequest{
		ID:      "sched-1",
		ClockIn: sp("09:00"),
	})
	assert.ErrorIs(t, err, timeclock.ErrEntryNotFound)
}

func TestService_Import(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeScheduleRepo()
	svc, _ := newService(repo, &fakeGeofenceRepo{}, day)

	resp, err := svc.Import(authedContext(t, "emp-1", "co-1"), timeclock.ImportRequest{
		Records: []map[string]any{
			{
				"schedule_id": "sched-10",
				"emp_id":      "emp-9",
				"work_date":   "2025-03-10",
				"check_in":    "2025-03-10T09:00:00Z",
			},
			{
				// No working day: skipped with a warning
				"schedule_id": "sched-11",
				"emp_id":      "emp-9",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Imported)
	assert.NotEmpty(t, resp.Warnings)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "co-1", repo.created[0].CompanyID, "imports are scoped to the caller's company")
}
