package timeclock

import "time"

type Category string

const (
	CategoryWork  Category = "WORK"
	CategoryLeave Category = "LEAVE"
)

// Status is the derived attendance state shown to callers. It is never the
// source of truth; the actual timestamp fields are.
type Status string

const (
	StatusPlanned        Status = "PLANNED"
	StatusLate           Status = "LATE"
	StatusClockedIn      Status = "CLOCKED_IN"
	StatusOnBreak        Status = "ON_BREAK"
	StatusEarlyLeave     Status = "EARLY_LEAVE"
	StatusClockedOut     Status = "CLOCKED_OUT"
	StatusOvertime       Status = "OVERTIME"
	StatusMissedCheckout Status = "MISSED_CHECKOUT"
	StatusAbsent         Status = "ABSENT"
	StatusLeave          Status = "LEAVE"
)

var StatusValues = []string{
	string(StatusPlanned),
	string(StatusLate),
	string(StatusClockedIn),
	string(StatusOnBreak),
	string(StatusEarlyLeave),
	string(StatusClockedOut),
	string(StatusOvertime),
	string(StatusMissedCheckout),
	string(StatusAbsent),
	string(StatusLeave),
}

// Part identifies which calendar-day half of an overnight entry a piece (or
// an edit) refers to.
type Part string

const (
	PartNone Part = ""
	PartHead Part = "HEAD"
	PartTail Part = "TAIL"
)

type ScheduleEntry struct {
	ID         string
	EmployeeID string
	BranchID   string
	CompanyID  string

	// Date is the working day the entry belongs to (midnight in the branch
	// timezone), used when neither planned nor actual times exist.
	Date time.Time

	Category         Category
	WorkTypeID       *string
	WorkTypeName     *string
	GeofenceRequired bool
	LeaveTypeID      *string
	LeaveTypeName    *string

	PlannedStart      *time.Time
	PlannedBreakStart *time.Time
	PlannedBreakEnd   *time.Time
	PlannedEnd        *time.Time

	ClockInAt    *time.Time
	BreakStartAt *time.Time
	BreakEndAt   *time.Time
	ClockOutAt   *time.Time

	// MissedCheckout is an explicit store-side override set by the sweeper,
	// distinct from any derived status.
	MissedCheckout bool

	// SourceStatus, when non-empty, is authoritative over local derivation as
	// long as no actual timestamp arrived after StatusComputedAt.
	SourceStatus     string
	StatusComputedAt *time.Time

	// CategoryConflict is set during ingestion when the upstream record
	// carried both a work type and a leave type. The engine prefers LEAVE;
	// callers log this as a data-quality warning.
	CategoryConflict bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CalendarPiece is the projection of a ScheduleEntry onto one calendar day.
// Pieces are recomputed on every request and never persisted.
type CalendarPiece struct {
	ScheduleID  string
	Date        string // YYYY-MM-DD
	IsOvernight bool
	Part        Part
	Entry       ScheduleEntry
}

// GeofenceConfig is a branch location constraint. A nil config means the
// branch has no location requirement.
type GeofenceConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

type WeeklySummary struct {
	WeekStart    string
	PerDay       map[string]int // YYYY-MM-DD -> minutes
	TotalMinutes int
}

// Patch is the update payload sent to the schedule store after an edit or a
// clock action. Nil fields are left untouched.
type Patch struct {
	ScheduleID          string
	ClockInAt           *time.Time
	BreakStartAt        *time.Time
	BreakEndAt          *time.Time
	ClockOutAt          *time.Time
	ClearMissedCheckout bool
	IdempotencyKey      string
}

// FixOutcome is the result of a bounded-wait location fix request.
type FixOutcome string

const (
	FixNone    FixOutcome = ""
	FixOK      FixOutcome = "ok"
	FixTimeout FixOutcome = "timeout"
	FixDenied  FixOutcome = "denied"
)

var FixOutcomeValues = []string{
	string(FixNone),
	string(FixOK),
	string(FixTimeout),
	string(FixDenied),
}

type Action string

const (
	ActionClockIn    Action = "clock_in"
	ActionClockOut   Action = "clock_out"
	ActionBreakStart Action = "break_start"
	ActionBreakEnd   Action = "break_end"
)

// Eligibility carries the four action predicates plus a human-readable reason
// for every disabled action.
type Eligibility struct {
	CanClockIn    bool
	CanClockOut   bool
	CanBreakStart bool
	CanBreakEnd   bool

	// Reasons is keyed by Action and populated only for disabled actions.
	Reasons map[Action]string

	// DegradedLocation is set when an action is permitted through the
	// fix-timeout bypass so the failure can be recorded alongside it.
	DegradedLocation bool
}

func (e Eligibility) Allows(a Action) bool {
	switch a {
	case ActionClockIn:
		return e.CanClockIn
	case ActionClockOut:
		return e.CanClockOut
	case ActionBreakStart:
		return e.CanBreakStart
	case ActionBreakEnd:
		return e.CanBreakEnd
	}
	return false
}
