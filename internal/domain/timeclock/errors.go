package timeclock

import "errors"

// Timeclock domain errors
var (
	// Clock action errors
	ErrNoScheduleToday    = errors.New("no schedule found for today")
	ErrAlreadyClockedIn   = errors.New("you have already clocked in")
	ErrNotClockedIn       = errors.New("you have not clocked in yet")
	ErrAlreadyClockedOut  = errors.New("you have already clocked out")
	ErrBreakAlreadyOpen   = errors.New("a break is already in progress")
	ErrBreakNotOpen       = errors.New("no break is in progress")
	ErrOutsideGeofence    = errors.New("you are outside the allowed radius")
	ErrLocationDenied     = errors.New("location permission was denied")
	ErrActionNotPermitted = errors.New("action is not permitted in the current state")

	// Edit errors
	ErrZeroLengthInterval = errors.New("start and end times must not be equal")

	// General errors
	ErrUnauthenticated     = errors.New("missing or invalid identity claims")
	ErrEntryNotFound       = errors.New("schedule entry not found")
	ErrDuplicateSubmission = errors.New("submission with this idempotency key was already processed")
)
