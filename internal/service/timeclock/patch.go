package timeclock

import (
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
)

// EditedClock carries freshly edited wall-clock values. Each value holds only
// hour/minute/second on the zero date; nil means the field was not edited.
type EditedClock struct {
	ClockIn    *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	ClockOut   *time.Time
}

// BuildPatch resolves edited wall-clock values into a consistent set of
// instants for submission. End-before-start is never rejected: it implies the
// end rolled past midnight, so the end instant moves forward one calendar day.
// Break instants are anchored to the resolved clock-in, except when the TAIL
// half of an overnight entry is being edited (the break already belongs to the
// end day there). Fields left unedited and absent stay absent; the builder
// never invents a time.
func BuildPatch(entry timeclock.ScheduleEntry, edit EditedClock, part timeclock.Part) (timeclock.Patch, error) {
	patch := timeclock.Patch{ScheduleID: entry.ID}
	loc := entry.Date.Location()

	// Resolve clock-in. An edited value lands on the day of the existing
	// clock-in when there is one, otherwise on the entry's working day.
	resolvedIn := entry.ClockInAt
	if edit.ClockIn != nil {
		in := combine(anchorDay(entry.ClockInAt, entry.Date), *edit.ClockIn, loc)
		resolvedIn = &in
		patch.ClockInAt = &in
	}

	// Resolve clock-out against the clock-in anchor.
	resolvedOut := entry.ClockOutAt
	if edit.ClockOut != nil {
		out := combine(anchorDay(entry.ClockOutAt, entry.Date), *edit.ClockOut, loc)
		resolvedOut = &out
		patch.ClockOutAt = &out
	}
	if resolvedIn != nil && resolvedOut != nil {
		if resolvedOut.Equal(*resolvedIn) {
			return timeclock.Patch{}, timeclock.ErrZeroLengthInterval
		}
		if resolvedOut.Before(*resolvedIn) {
			// Out before in means the shift ran past midnight.
			out := resolvedOut.AddDate(0, 0, 1)
			resolvedOut = &out
			patch.ClockOutAt = &out
		}
	}

	// Resolve the break pair. Outside a TAIL edit, a break earlier than the
	// resolved clock-in belongs to the next day, not to the prior session.
	resolvedBreakStart := entry.BreakStartAt
	if edit.BreakStart != nil {
		bs := combine(breakAnchorDay(entry.BreakStartAt, entry, part), *edit.BreakStart, loc)
		bs = rollBreak(bs, resolvedIn, part)
		resolvedBreakStart = &bs
		patch.BreakStartAt = &bs
	}

	resolvedBreakEnd := entry.BreakEndAt
	if edit.BreakEnd != nil {
		be := combine(breakAnchorDay(entry.BreakEndAt, entry, part), *edit.BreakEnd, loc)
		be = rollBreak(be, resolvedIn, part)
		resolvedBreakEnd = &be
		patch.BreakEndAt = &be
	}

	if resolvedBreakStart != nil && resolvedBreakEnd != nil {
		if resolvedBreakEnd.Equal(*resolvedBreakStart) {
			return timeclock.Patch{}, timeclock.ErrZeroLengthInterval
		}
		if resolvedBreakEnd.Before(*resolvedBreakStart) {
			be := resolvedBreakEnd.AddDate(0, 0, 1)
			resolvedBreakEnd = &be
			patch.BreakEndAt = &be
		}
	}

	// An edit that completes the in/out pair on a missed-checkout record
	// clears the override flag.
	if entry.MissedCheckout &&
		(edit.ClockIn != nil || edit.ClockOut != nil) &&
		resolvedIn != nil && resolvedOut != nil {
		patch.ClearMissedCheckout = true
	}

	return patch, nil
}

// anchorDay picks the calendar day an edited value should land on: the day of
// the existing instant when the field already has one, else the working day.
func anchorDay(existing *time.Time, workingDay time.Time) time.Time {
	if existing != nil {
		return *existing
	}
	return workingDay
}

// breakAnchorDay picks the calendar day an edited break value lands on. With
// an existing instant the day stays put. Without one, a TAIL edit lands on the
// end day of the overnight entry, since rollBreak deliberately skips TAIL
// values; everything else lands on the working day.
func breakAnchorDay(existing *time.Time, entry timeclock.ScheduleEntry, part timeclock.Part) time.Time {
	if existing != nil {
		return *existing
	}
	if part == timeclock.PartTail {
		return entry.Date.AddDate(0, 0, 1)
	}
	return entry.Date
}

// rollBreak moves a break instant forward one day when it precedes the
// resolved clock-in. TAIL edits skip the roll: the break already lives on the
// end day of the overnight entry.
func rollBreak(t time.Time, clockIn *time.Time, part timeclock.Part) time.Time {
	if part == timeclock.PartTail || clockIn == nil {
		return t
	}
	if t.Before(*clockIn) {
		return t.AddDate(0, 0, 1)
	}
	return t
}

// combine places a wall-clock value on a calendar day in the given location.
func combine(day time.Time, wall time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), 0, loc)
}
