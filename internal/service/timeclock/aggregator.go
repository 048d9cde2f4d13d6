package timeclock

import (
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
)

// WeeklyMinutes aggregates actual worked minutes per day over the 7-day
// window starting at weekStart, plus the week total.
//
// Aggregation operates on the full original interval of each entry, once per
// day, never on already-split calendar pieces: an entry spanning midnight
// contributes to both days it overlaps without being counted twice.
func WeeklyMinutes(entries []timeclock.ScheduleEntry, weekStart time.Time, now time.Time) timeclock.WeeklySummary {
	loc := weekStart.Location()
	weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, loc)

	perDay := make(map[string]int, 7)
	total := 0

	for i := 0; i < 7; i++ {
		dayStart := weekStart.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		key := dayStart.Format(dateLayout)

		minutes := 0
		for _, entry := range entries {
			// Leave days carry no worked time.
			if entry.Category == timeclock.CategoryLeave || entry.LeaveTypeID != nil {
				continue
			}
			start, end := workedInterval(entry, dayStart, dayEnd, now)
			if start == nil || end == nil {
				continue
			}
			minutes += overlapMinutes(*start, *end, dayStart, dayEnd)
		}

		perDay[key] = minutes
		total += minutes
	}

	return timeclock.WeeklySummary{
		WeekStart:    weekStart.Format(dateLayout),
		PerDay:       perDay,
		TotalMinutes: total,
	}
}

// workedInterval resolves the actual interval of an entry for one day bucket.
// Without a clock-out, a shift on a past day is assumed to have run to its
// planned end; a shift still open today counts only minutes elapsed so far,
// capped at the plan.
func workedInterval(entry timeclock.ScheduleEntry, dayStart, dayEnd, now time.Time) (*time.Time, *time.Time) {
	if entry.ClockInAt == nil {
		return nil, nil
	}
	if entry.ClockOutAt != nil {
		return entry.ClockInAt, entry.ClockOutAt
	}

	dayIsPast := !dayEnd.After(now)
	if dayIsPast {
		// Past day with an open shift: the planned end is the best estimate.
		return entry.ClockInAt, entry.PlannedEnd
	}

	end := now
	if entry.PlannedEnd != nil && end.After(*entry.PlannedEnd) {
		end = *entry.PlannedEnd
	}
	return entry.ClockInAt, &end
}

// overlapMinutes returns the whole-minute overlap between [start, end) and
// [dayStart, dayEnd), clamped at zero.
func overlapMinutes(start, end, dayStart, dayEnd time.Time) int {
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d.Round(time.Minute) / time.Minute)
}
