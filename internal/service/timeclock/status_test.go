package timeclock

import (
	"testing"
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/stretchr/testify/assert"
)

func tp(t time.Time) *time.Time { return &t }

func sp(s string) *string { return &s }

func workEntry(date time.Time) timeclock.ScheduleEntry {
	return timeclock.ScheduleEntry{
		ID:         "sched-1",
		EmployeeID: "emp-1",
		BranchID:   "branch-1",
		CompanyID:  "co-1",
		Date:       date,
		Category:   timeclock.CategoryWork,
	}
}

func TestDeriveStatus_Planned(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))

	now := day.Add(8 * time.Hour)
	assert.Equal(t, timeclock.StatusPlanned, DeriveStatus(entry, now))

	// Still inside the late threshold
	now = day.Add(9*time.Hour + 59*time.Second)
	assert.Equal(t, timeclock.StatusPlanned, DeriveStatus(entry, now))
}

func TestDeriveStatus_Late(t *testing.T) {
	// plannedStart 09:00, now 09:02, no actual times
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))

	now := day.Add(9*time.Hour + 2*time.Minute)
	assert.Equal(t, timeclock.StatusLate, DeriveStatus(entry, now))

	// Exactly at plannedStart + threshold is already late
	now = day.Add(9*time.Hour + 1*time.Minute)
	assert.Equal(t, timeclock.StatusLate, DeriveStatus(entry, now))
}

func TestDeriveStatus_Absent(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))

	now := day.Add(18*time.Hour + time.Second)
	assert.Equal(t, timeclock.StatusAbsent, DeriveStatus(entry, now))
}

func TestDeriveStatus_ClockedInAndBreak(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))
	entry.ClockInAt = tp(day.Add(9 * time.Hour))

	now := day.Add(12 * time.Hour)
	assert.Equal(t, timeclock.StatusClockedIn, DeriveStatus(entry, now))

	// Unmatched break start refines the state to ON_BREAK
	entry.BreakStartAt = tp(day.Add(12 * time.Hour))
	assert.Equal(t, timeclock.StatusOnBreak, DeriveStatus(entry, now))

	// Matched break pair puts the employee back to CLOCKED_IN
	entry.BreakEndAt = tp(day.Add(13 * time.Hour))
	assert.Equal(t, timeclock.StatusClockedIn, DeriveStatus(entry, now))
}

func TestDeriveStatus_ClockedOut(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))
	entry.ClockInAt = tp(day.Add(9 * time.Hour))
	entry.ClockOutAt = tp(day.Add(18 * time.Hour))

	now := day.Add(19 * time.Hour)
	assert.Equal(t, timeclock.StatusClockedOut, DeriveStatus(entry, now))
}

func TestDeriveStatus_LeaveIgnoresTimes(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.Category = timeclock.CategoryLeave
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))
	entry.ClockInAt = tp(day.Add(9 * time.Hour))
	entry.ClockOutAt = tp(day.Add(18 * time.Hour))

	for _, now := range []time.Time{day, day.Add(12 * time.Hour), day.Add(30 * time.Hour)} {
		assert.Equal(t, timeclock.StatusLeave, DeriveStatus(entry, now))
	}

	// A leave-type identifier alone also forces LEAVE (conflicting category
	// fields prefer leave)
	entry = workEntry(day)
	entry.LeaveTypeID = sp("lt-1")
	assert.Equal(t, timeclock.StatusLeave, DeriveStatus(entry, day))
}

func TestDeriveStatus_NoDataIsPlanned(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	assert.Equal(t, timeclock.StatusPlanned, DeriveStatus(entry, day.Add(23*time.Hour)))
}

func TestDeriveStatus_SourceStatusWins(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))
	entry.SourceStatus = string(timeclock.StatusOvertime)

	assert.Equal(t, timeclock.StatusOvertime, DeriveStatus(entry, day.Add(10*time.Hour)))
}

func TestDeriveStatus_StaleSourceStatusLoses(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))
	entry.SourceStatus = string(timeclock.StatusLate)
	entry.StatusComputedAt = tp(day.Add(9 * time.Hour))

	// A clock-in newer than the source status invalidates it
	entry.ClockInAt = tp(day.Add(9*time.Hour + 5*time.Minute))
	assert.Equal(t, timeclock.StatusClockedIn, DeriveStatus(entry, day.Add(10*time.Hour)))

	// With no newer timestamp the source status still wins
	entry.ClockInAt = tp(day.Add(8 * time.Hour))
	assert.Equal(t, timeclock.StatusLate, DeriveStatus(entry, day.Add(10*time.Hour)))
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))
	entry.PlannedEnd = tp(day.Add(18 * time.Hour))
	entry.ClockInAt = tp(day.Add(9 * time.Hour))

	now := day.Add(10 * time.Hour)
	first := DeriveStatus(entry, now)
	second := DeriveStatus(entry, now)
	assert.Equal(t, first, second)
}

func TestWasLate(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.PlannedStart = tp(day.Add(9 * time.Hour))

	// On time
	entry.ClockInAt = tp(day.Add(9 * time.Hour))
	assert.False(t, WasLate(entry))

	// Under the threshold
	entry.ClockInAt = tp(day.Add(9*time.Hour + 30*time.Second))
	assert.False(t, WasLate(entry))

	// At the threshold
	entry.ClockInAt = tp(day.Add(9*time.Hour + time.Minute))
	assert.True(t, WasLate(entry))

	// The annotation layers on top of a non-LATE status
	entry.ClockOutAt = tp(day.Add(18 * time.Hour))
	assert.Equal(t, timeclock.StatusClockedOut, DeriveStatus(entry, day.Add(19*time.Hour)))
	assert.True(t, WasLate(entry))

	// No planned start means no lateness
	entry.PlannedStart = nil
	assert.False(t, WasLate(entry))
}

func TestOnOpenBreak(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	assert.False(t, OnOpenBreak(entry))

	entry.BreakStartAt = tp(day.Add(12 * time.Hour))
	assert.True(t, OnOpenBreak(entry))

	entry.BreakEndAt = tp(day.Add(13 * time.Hour))
	assert.False(t, OnOpenBreak(entry))

	// A break end without a start is ignored
	entry.BreakStartAt = nil
	assert.False(t, OnOpenBreak(entry))
}
