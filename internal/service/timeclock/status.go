package timeclock

import (
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
)

// LateThreshold is how far past the planned start a missing clock-in counts
// as late.
const LateThreshold = 1 * time.Minute

// DeriveStatus computes the attendance status of an entry at the given
// instant. Status is a pure function of (category, planned times, actual
// times, now); nothing is persisted, so there is no stale state to corrupt.
// Rules are evaluated in order, first match wins.
func DeriveStatus(entry timeclock.ScheduleEntry, now time.Time) timeclock.Status {
	// An explicit source status is authoritative while it is fresh.
	if s := authoritativeStatus(entry); s != "" {
		return timeclock.Status(s)
	}

	if entry.Category == timeclock.CategoryLeave || entry.LeaveTypeID != nil {
		return timeclock.StatusLeave
	}

	if entry.ClockInAt != nil && entry.ClockOutAt == nil {
		if OnOpenBreak(entry) {
			return timeclock.StatusOnBreak
		}
		return timeclock.StatusClockedIn
	}

	if entry.ClockInAt == nil {
		if entry.PlannedEnd != nil && now.After(*entry.PlannedEnd) {
			return timeclock.StatusAbsent
		}
		if entry.PlannedStart != nil && !now.Before(entry.PlannedStart.Add(LateThreshold)) {
			return timeclock.StatusLate
		}
		// Absence of data is not a fault; it is the default state.
		return timeclock.StatusPlanned
	}

	if entry.ClockOutAt != nil {
		return timeclock.StatusClockedOut
	}

	return timeclock.StatusPlanned
}

// authoritativeStatus returns the source-supplied status when it should win
// over local derivation. The source status is trusted only while no actual
// timestamp arrived after it was computed; without a computed-at marker it
// wins unconditionally.
func authoritativeStatus(entry timeclock.ScheduleEntry) string {
	if entry.SourceStatus == "" {
		return ""
	}
	if entry.StatusComputedAt == nil {
		return entry.SourceStatus
	}
	actuals := []*time.Time{entry.ClockInAt, entry.BreakStartAt, entry.BreakEndAt, entry.ClockOutAt}
	for _, ts := range actuals {
		if ts != nil && ts.After(*entry.StatusComputedAt) {
			return ""
		}
	}
	return entry.SourceStatus
}

// WasLate is a display annotation computed independently of the primary
// status: the employee clocked in, but at or past plannedStart + threshold.
func WasLate(entry timeclock.ScheduleEntry) bool {
	if entry.ClockInAt == nil || entry.PlannedStart == nil {
		return false
	}
	return !entry.ClockInAt.Before(entry.PlannedStart.Add(LateThreshold))
}

// OnOpenBreak reports whether the entry has an unmatched break start. A break
// end without a matching start is ignored; break pairs are atomic from the
// engine's perspective.
func OnOpenBreak(entry timeclock.ScheduleEntry) bool {
	return entry.BreakStartAt != nil && entry.BreakEndAt == nil
}
