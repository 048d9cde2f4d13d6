package timeclock

import (
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/validator"
)

// ========================================
// CLOCK ACTION DTOs
// ========================================

type ClockActionRequest struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AccuracyMeters *float64 `json:"accuracy_meters,omitempty"`
	FixOutcome     string   `json:"fix_outcome"` // ok, timeout, denied
	IdempotencyKey string   `json:"idempotency_key"`
}

func (r *ClockActionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude < -90 || r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude < -180 || r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.AccuracyMeters != nil && *r.AccuracyMeters < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "accuracy_meters",
			Message: "accuracy_meters must not be negative",
		})
	}

	if !validator.IsInSlice(r.FixOutcome, FixOutcomeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "fix_outcome",
			Message: "fix_outcome must be one of: ok, timeout, denied",
		})
	}

	if validator.IsEmpty(r.IdempotencyKey) {
		errs = append(errs, validator.ValidationError{
			Field:   "idempotency_key",
			Message: "idempotency_key is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// EDITED TIMES DTOs
// ========================================

// EditTimesRequest carries freshly edited wall-clock values for an entry.
// Times are HH:MM, optionally with an AM/PM suffix. Fields left nil keep the
// stored value; the builder never invents a time for an absent field.
type EditTimesRequest struct {
	ID         string  `json:"-"`
	Part       string  `json:"part,omitempty"` // "", HEAD, TAIL
	ClockIn    *string `json:"clock_in,omitempty"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
	ClockOut   *string `json:"clock_out,omitempty"`
}

func (r *EditTimesRequest) Validate() error {
	var errs validator.ValidationErrors

	validParts := []string{"", string(PartHead), string(PartTail)}
	if !validator.IsInSlice(r.Part, validParts) {
		errs = append(errs, validator.ValidationError{
			Field:   "part",
			Message: "part must be one of: HEAD, TAIL",
		})
	}

	check := func(field string, v *string) {
		if v == nil || *v == "" {
			return
		}
		if _, ok := validator.IsValidClockTime(*v); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be HH:MM or HH:MM AM/PM",
			})
		}
	}
	check("clock_in", r.ClockIn)
	check("break_start", r.BreakStart)
	check("break_end", r.BreakEnd)
	check("clock_out", r.ClockOut)

	if r.ClockIn == nil && r.BreakStart == nil && r.BreakEnd == nil && r.ClockOut == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "times",
			Message: "at least one time field is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// QUERY DTOs
// ========================================

type WeekQuery struct {
	WeekStart string `json:"week_start"` // YYYY-MM-DD, defaults to current week's Monday
}

func (q *WeekQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.WeekStart != "" {
		if _, ok := validator.IsValidDate(q.WeekStart); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "week_start",
				Message: "week_start must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CalendarQuery struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

func (q *CalendarQuery) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(q.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, okEnd := validator.IsValidDate(q.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// IMPORT DTOs
// ========================================

// ImportRequest carries raw upstream records whose field names are resolved
// through the ingestion synonym chains before anything else sees them.
type ImportRequest struct {
	Records []map[string]any `json:"records"`
}

func (r *ImportRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Records) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "records",
			Message: "records must not be empty",
		})
	}
	if len(r.Records) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "records",
			Message: "records must not exceed 1000 per request",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ImportResponse struct {
	Imported int      `json:"imported"`
	Warnings []string `json:"warnings,omitempty"`
}

// ========================================
// RESPONSE DTOs
// ========================================

type EntryResponse struct {
	ID                string  `json:"id"`
	EmployeeID        string  `json:"employee_id"`
	BranchID          string  `json:"branch_id"`
	Date              string  `json:"date"`
	Category          string  `json:"category"`
	WorkTypeName      *string `json:"work_type_name,omitempty"`
	LeaveTypeName     *string `json:"leave_type_name,omitempty"`
	PlannedStart      *string `json:"planned_start,omitempty"`
	PlannedBreakStart *string `json:"planned_break_start,omitempty"`
	PlannedBreakEnd   *string `json:"planned_break_end,omitempty"`
	PlannedEnd        *string `json:"planned_end,omitempty"`
	ClockInAt         *string `json:"clock_in_at,omitempty"`
	BreakStartAt      *string `json:"break_start_at,omitempty"`
	BreakEndAt        *string `json:"break_end_at,omitempty"`
	ClockOutAt        *string `json:"clock_out_at,omitempty"`
	Status            string  `json:"status"`
	WasLate           bool    `json:"was_late"`
	MissedCheckout    bool    `json:"missed_checkout"`
}

type EligibilityResponse struct {
	CanClockIn       bool              `json:"can_clock_in"`
	CanClockOut      bool              `json:"can_clock_out"`
	CanBreakStart    bool              `json:"can_break_start"`
	CanBreakEnd      bool              `json:"can_break_end"`
	Reasons          map[string]string `json:"reasons,omitempty"`
	DegradedLocation bool              `json:"degraded_location,omitempty"`
}

type TodayStatusResponse struct {
	HasScheduleToday bool                 `json:"has_schedule_today"`
	Entry            *EntryResponse       `json:"entry,omitempty"`
	Eligibility      *EligibilityResponse `json:"eligibility,omitempty"`
	DistanceMeters   *float64             `json:"distance_meters,omitempty"`
	Message          string               `json:"message"`
}

type WeeklySummaryResponse struct {
	WeekStart    string         `json:"week_start"`
	PerDay       map[string]int `json:"per_day"`
	TotalMinutes int            `json:"total_minutes"`
}

type CalendarPieceResponse struct {
	ScheduleID  string        `json:"schedule_id"`
	Date        string        `json:"date"`
	IsOvernight bool          `json:"is_overnight"`
	Part        string        `json:"part,omitempty"`
	Entry       EntryResponse `json:"entry"`
}

type CalendarResponse struct {
	StartDate string                  `json:"start_date"`
	EndDate   string                  `json:"end_date"`
	Pieces    []CalendarPieceResponse `json:"pieces"`
}
