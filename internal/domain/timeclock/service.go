package timeclock

import "context"

type TimeclockService interface {
	// TodayStatus returns the derived status plus action eligibility for the
	// caller's entry today. Coordinates are optional; without them the
	// geofence check reports not-attempted and geofence-required actions stay
	// disabled.
	TodayStatus(ctx context.Context, coord *Coordinate, accuracyMeters *float64) (TodayStatusResponse, error)

	// WeeklySummary aggregates worked minutes per day over the 7-day window
	// starting at weekStart.
	WeeklySummary(ctx context.Context, q WeekQuery) (WeeklySummaryResponse, error)

	// Calendar projects entries in [start, end] onto calendar days.
	Calendar(ctx context.Context, q CalendarQuery) (CalendarResponse, error)

	// SubmitAction performs a gated clock action for the caller.
	SubmitAction(ctx context.Context, action Action, req ClockActionRequest) (EntryResponse, error)

	// UpdateTimes applies an overnight-aware edited-times patch to an entry.
	UpdateTimes(ctx context.Context, req EditTimesRequest) (EntryResponse, error)

	// Import ingests raw upstream records through the synonym adapter.
	Import(ctx context.Context, req ImportRequest) (ImportResponse, error)
}

// Coordinate is a device location fix.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}
