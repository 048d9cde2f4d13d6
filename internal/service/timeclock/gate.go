package timeclock

import (
	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/geo"
)

// LocationState bundles everything the gate needs to know about the caller's
// location: whether the work type demands verification, the geofence
// evaluation, and how the location fix request ended.
type LocationState struct {
	Required bool
	Result   geo.Result
	Fix      timeclock.FixOutcome
}

// Disabled-action reasons surfaced to the UI.
const (
	reasonOnLeave           = "entry is a leave day"
	reasonNoSchedule        = "no schedule for this day"
	reasonAlreadyClockedIn  = "already clocked in"
	reasonAlreadyClockedOut = "already clocked out"
	reasonNotClockedIn      = "not clocked in yet"
	reasonBreakOpen         = "a break is in progress"
	reasonBreakTaken        = "break already taken"
	reasonBreakNotOpen      = "no break in progress"
	reasonOutsideRadius     = "outside the allowed radius"
	reasonLocationDenied    = "location permission denied"
	reasonLocationUnknown   = "location not verified"
	reasonShiftClosed       = "shift can no longer be started"
)

// Eligibility evaluates the four clock-action predicates for an entry. A nil
// entry means the day has no schedule and every action is disabled.
func Eligibility(entry *timeclock.ScheduleEntry, status timeclock.Status, loc LocationState) timeclock.Eligibility {
	e := timeclock.Eligibility{Reasons: make(map[timeclock.Action]string)}

	if entry == nil {
		denyAll(&e, reasonNoSchedule)
		return e
	}
	if entry.Category == timeclock.CategoryLeave || entry.LeaveTypeID != nil {
		denyAll(&e, reasonOnLeave)
		return e
	}

	e.CanClockIn = CanClockIn(*entry, status)
	e.CanClockOut = CanClockOut(*entry, status)
	e.CanBreakStart = CanBreakStart(*entry, status)
	e.CanBreakEnd = CanBreakEnd(*entry, status)

	if !e.CanClockIn {
		e.Reasons[timeclock.ActionClockIn] = clockInReason(*entry)
	}
	if !e.CanClockOut {
		e.Reasons[timeclock.ActionClockOut] = clockOutReason(*entry)
	}
	if !e.CanBreakStart {
		e.Reasons[timeclock.ActionBreakStart] = breakStartReason(*entry)
	}
	if !e.CanBreakEnd {
		e.Reasons[timeclock.ActionBreakEnd] = breakEndReason(*entry)
	}

	if entry.GeofenceRequired {
		applyLocationGate(&e, loc)
	}

	return e
}

// CanClockIn reports whether a clock-in is permitted in the current state,
// before the location gate.
func CanClockIn(entry timeclock.ScheduleEntry, status timeclock.Status) bool {
	if entry.ClockInAt != nil {
		return false
	}
	return status == timeclock.StatusPlanned || status == timeclock.StatusLate || status == ""
}

// CanClockOut reports whether a clock-out is permitted. An open break blocks
// it; a missed-checkout entry stays clock-out-able so the flag can be cleared.
func CanClockOut(entry timeclock.ScheduleEntry, status timeclock.Status) bool {
	if OnOpenBreak(entry) {
		return false
	}
	if status == timeclock.StatusClockedIn || status == timeclock.StatusMissedCheckout {
		return true
	}
	return entry.ClockInAt != nil && entry.ClockOutAt == nil
}

// CanBreakStart reports whether a break may start: clocked in, shift still
// open, and the break pair untouched. Break pairing is atomic; a break cannot
// start twice without an intervening end.
func CanBreakStart(entry timeclock.ScheduleEntry, status timeclock.Status) bool {
	_ = status
	return entry.ClockInAt != nil && entry.ClockOutAt == nil && entry.BreakStartAt == nil
}

// CanBreakEnd reports whether a break may end: only with a matching open
// start.
func CanBreakEnd(entry timeclock.ScheduleEntry, status timeclock.Status) bool {
	_ = status
	return entry.ClockInAt != nil && entry.ClockOutAt == nil && OnOpenBreak(entry)
}

// applyLocationGate ANDs every remaining predicate with the location check.
// Inside the fence passes. A confirmed fix timeout passes in degraded mode,
// because blocking indefinitely on a cold GPS is worse than allowing the
// action with the failure recorded. An unconfigured fence cannot be verified
// and also passes degraded. A denied permission never bypasses.
func applyLocationGate(e *timeclock.Eligibility, loc LocationState) {
	if loc.Result.Configured && loc.Result.Inside {
		return
	}

	switch {
	case loc.Fix == timeclock.FixDenied:
		denyAll(e, reasonLocationDenied)
	case loc.Fix == timeclock.FixTimeout:
		e.DegradedLocation = true
	case !loc.Result.Configured:
		e.DegradedLocation = true
	case loc.Fix == timeclock.FixOK:
		denyAll(e, reasonOutsideRadius)
	default:
		// A configured fence with no fix at all was never evaluated; the
		// point is unverified, not outside.
		denyAll(e, reasonLocationUnknown)
	}
}

func denyAll(e *timeclock.Eligibility, reason string) {
	flags := map[timeclock.Action]*bool{
		timeclock.ActionClockIn:    &e.CanClockIn,
		timeclock.ActionClockOut:   &e.CanClockOut,
		timeclock.ActionBreakStart: &e.CanBreakStart,
		timeclock.ActionBreakEnd:   &e.CanBreakEnd,
	}
	for action, flag := range flags {
		if *flag {
			*flag = false
			e.Reasons[action] = reason
		} else if _, ok := e.Reasons[action]; !ok {
			e.Reasons[action] = reason
		}
	}
}

func clockInReason(entry timeclock.ScheduleEntry) string {
	if entry.ClockInAt != nil {
		return reasonAlreadyClockedIn
	}
	return reasonShiftClosed
}

func clockOutReason(entry timeclock.ScheduleEntry) string {
	if OnOpenBreak(entry) {
		return reasonBreakOpen
	}
	if entry.ClockInAt == nil {
		return reasonNotClockedIn
	}
	return reasonAlreadyClockedOut
}

func breakStartReason(entry timeclock.ScheduleEntry) string {
	switch {
	case entry.ClockInAt == nil:
		return reasonNotClockedIn
	case entry.ClockOutAt != nil:
		return reasonAlreadyClockedOut
	case OnOpenBreak(entry):
		return reasonBreakOpen
	default:
		return reasonBreakTaken
	}
}

func breakEndReason(entry timeclock.ScheduleEntry) string {
	switch {
	case entry.ClockInAt == nil:
		return reasonNotClockedIn
	case entry.ClockOutAt != nil:
		return reasonAlreadyClockedOut
	default:
		return reasonBreakNotOpen
	}
}
