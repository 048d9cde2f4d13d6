package timeclock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/geo"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/ingest"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/validator"
)

// IdempotencyStore reserves submission keys. Satisfied by idempotency.Store.
type IdempotencyStore interface {
	Reserve(ctx context.Context, employeeID string, key string) (bool, error)
	Release(ctx context.Context, employeeID string, key string) error
}

type Service struct {
	scheduleRepo timeclock.ScheduleRepository
	geofenceRepo timeclock.GeofenceRepository
	idemStore    IdempotencyStore
	slackMeters  float64

	// now is swapped out in tests; every derivation receives an explicit
	// instant instead of reading the clock itself.
	now func() time.Time
}

func NewTimeclockService(
	scheduleRepo timeclock.ScheduleRepository,
	geofenceRepo timeclock.GeofenceRepository,
	idemStore IdempotencyStore,
	slackMeters float64,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		geofenceRepo: geofenceRepo,
		idemStore:    idemStore,
		slackMeters:  slackMeters,
		now:          time.Now,
	}
}

// identity holds the caller claims every operation is scoped by.
type identity struct {
	EmployeeID string
	CompanyID  string
}

func identityFromContext(ctx context.Context) (identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return identity{}, timeclock.ErrUnauthenticated
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return identity{}, timeclock.ErrUnauthenticated
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return identity{}, timeclock.ErrUnauthenticated
	}

	return identity{EmployeeID: employeeID, CompanyID: companyID}, nil
}

// TodayStatus implements timeclock.TimeclockService.
func (s *Service) TodayStatus(ctx context.Context, coord *timeclock.Coordinate, accuracyMeters *float64) (timeclock.TodayStatusResponse, error) {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return timeclock.TodayStatusResponse{}, err
	}

	now := s.now()
	entry, err := s.scheduleRepo.GetByEmployeeAndDate(ctx, ident.EmployeeID, now.Format(dateLayout), ident.CompanyID)
	if err != nil {
		return timeclock.TodayStatusResponse{}, fmt.Errorf("failed to load today's entry: %w", err)
	}

	if entry == nil {
		elig := Eligibility(nil, "", LocationState{})
		eligResp := toEligibilityResponse(elig)
		return timeclock.TodayStatusResponse{
			HasScheduleToday: false,
			Eligibility:      &eligResp,
			Message:          "No schedule for today",
		}, nil
	}

	status := DeriveStatus(*entry, now)

	fix := timeclock.FixNone
	if coord != nil {
		fix = timeclock.FixOK
	}
	loc, err := s.locationState(ctx, *entry, coord, accuracyMeters, fix, ident.CompanyID)
	if err != nil {
		return timeclock.TodayStatusResponse{}, err
	}

	elig := Eligibility(entry, status, loc)

	entryResp := toEntryResponse(*entry, status)
	eligResp := toEligibilityResponse(elig)

	resp := timeclock.TodayStatusResponse{
		HasScheduleToday: true,
		Entry:            &entryResp,
		Eligibility:      &eligResp,
		Message:          string(status),
	}
	if coord != nil && loc.Result.Configured {
		distance := loc.Result.DistanceMeters
		resp.DistanceMeters = &distance
	}

	return resp, nil
}

// WeeklySummary implements timeclock.TimeclockService.
func (s *Service) WeeklySummary(ctx context.Context, q timeclock.WeekQuery) (timeclock.WeeklySummaryResponse, error) {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return timeclock.WeeklySummaryResponse{}, err
	}

	now := s.now()
	weekStart := MondayOf(now)
	if q.WeekStart != "" {
		parsed, ok := validator.IsValidDate(q.WeekStart)
		if !ok {
			return timeclock.WeeklySummaryResponse{}, validator.ValidationErrors{{
				Field:   "week_start",
				Message: "week_start must be in YYYY-MM-DD format",
			}}
		}
		weekStart = parsed
	}

	// The day before the window can hold an overnight shift spilling into it.
	entries, err := s.scheduleRepo.ListRange(ctx,
		ident.EmployeeID, weekStart.AddDate(0, 0, -1), weekStart.AddDate(0, 0, 6), ident.CompanyID)
	if err != nil {
		return timeclock.WeeklySummaryResponse{}, fmt.Errorf("failed to list week entries: %w", err)
	}

	summary := WeeklyMinutes(entries, weekStart, now)

	return timeclock.WeeklySummaryResponse{
		WeekStart:    summary.WeekStart,
		PerDay:       summary.PerDay,
		TotalMinutes: summary.TotalMinutes,
	}, nil
}

// Calendar implements timeclock.TimeclockService.
func (s *Service) Calendar(ctx context.Context, q timeclock.CalendarQuery) (timeclock.CalendarResponse, error) {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return timeclock.CalendarResponse{}, err
	}

	start, okStart := validator.IsValidDate(q.StartDate)
	end, okEnd := validator.IsValidDate(q.EndDate)
	if !okStart || !okEnd {
		return timeclock.CalendarResponse{}, validator.ValidationErrors{{
			Field:   "start_date",
			Message: "start_date and end_date must be in YYYY-MM-DD format",
		}}
	}

	now := s.now()

	// Include the day before the window: its overnight TAIL may land inside.
	entries, err := s.scheduleRepo.ListRange(ctx,
		ident.EmployeeID, start.AddDate(0, 0, -1), end, ident.CompanyID)
	if err != nil {
		return timeclock.CalendarResponse{}, fmt.Errorf("failed to list calendar entries: %w", err)
	}

	var pieces []timeclock.CalendarPieceResponse
	for _, entry := range entries {
		status := DeriveStatus(entry, now)
		for _, piece := range Project(entry) {
			if piece.Date < q.StartDate || piece.Date > q.EndDate {
				continue
			}
			pieces = append(pieces, timeclock.CalendarPieceResponse{
				ScheduleID:  piece.ScheduleID,
				Date:        piece.Date,
				IsOvernight: piece.IsOvernight,
				Part:        string(piece.Part),
				Entry:       toEntryResponse(entry, status),
			})
		}
	}

	return timeclock.CalendarResponse{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Pieces:    pieces,
	}, nil
}

// SubmitAction implements timeclock.TimeclockService. The entry is re-read and
// the gate re-evaluated at submission time; client-side eligibility is only a
// hint.
func (s *Service) SubmitAction(ctx context.Context, action timeclock.Action, req timeclock.ClockActionRequest) (timeclock.EntryResponse, error) {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return timeclock.EntryResponse{}, err
	}

	reserved, err := s.idemStore.Reserve(ctx, ident.EmployeeID, req.IdempotencyKey)
	if err != nil {
		return timeclock.EntryResponse{}, err
	}
	if !reserved {
		return timeclock.EntryResponse{}, timeclock.ErrDuplicateSubmission
	}

	resp, err := s.submitAction(ctx, ident, action, req)
	if err != nil {
		// Free the key so a rejected action can be retried.
		if relErr := s.idemStore.Release(ctx, ident.EmployeeID, req.IdempotencyKey); relErr != nil {
			slog.Error("Failed to release idempotency key", "employee_id", ident.EmployeeID, "error", relErr)
		}
		return timeclock.EntryResponse{}, err
	}

	return resp, nil
}

func (s *Service) submitAction(ctx context.Context, ident identity, action timeclock.Action, req timeclock.ClockActionRequest) (timeclock.EntryResponse, error) {
	now := s.now()

	entry, err := s.scheduleRepo.GetByEmployeeAndDate(ctx, ident.EmployeeID, now.Format(dateLayout), ident.CompanyID)
	if err != nil {
		return timeclock.EntryResponse{}, fmt.Errorf("failed to load today's entry: %w", err)
	}
	if entry == nil {
		return timeclock.EntryResponse{}, timeclock.ErrNoScheduleToday
	}

	status := DeriveStatus(*entry, now)

	fix := timeclock.FixOutcome(req.FixOutcome)
	var coord *timeclock.Coordinate
	if fix == timeclock.FixOK {
		coord = &timeclock.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	}
	loc, err := s.locationState(ctx, *entry, coord, req.AccuracyMeters, fix, ident.CompanyID)
	if err != nil {
		return timeclock.EntryResponse{}, err
	}

	elig := Eligibility(entry, status, loc)
	if !elig.Allows(action) {
		return timeclock.EntryResponse{}, actionError(action, *entry, loc)
	}
	if elig.DegradedLocation {
		slog.Warn("Clock action accepted with degraded location",
			"employee_id", ident.EmployeeID,
			"schedule_id", entry.ID,
			"action", action,
			"fix_outcome", req.FixOutcome)
	}

	patch := timeclock.Patch{
		ScheduleID:     entry.ID,
		IdempotencyKey: req.IdempotencyKey,
	}
	switch action {
	case timeclock.ActionClockIn:
		patch.ClockInAt = &now
	case timeclock.ActionClockOut:
		patch.ClockOutAt = &now
		patch.ClearMissedCheckout = entry.MissedCheckout
	case timeclock.ActionBreakStart:
		patch.BreakStartAt = &now
	case timeclock.ActionBreakEnd:
		patch.BreakEndAt = &now
	default:
		return timeclock.EntryResponse{}, timeclock.ErrActionNotPermitted
	}

	if err := s.scheduleRepo.ApplyPatch(ctx, patch, ident.CompanyID); err != nil {
		return timeclock.EntryResponse{}, err
	}

	updated, err := s.scheduleRepo.GetByID(ctx, entry.ID, ident.CompanyID)
	if err != nil {
		return timeclock.EntryResponse{}, err
	}

	return toEntryResponse(updated, DeriveStatus(updated, now)), nil
}

// UpdateTimes implements timeclock.TimeclockService.
func (s *Service) UpdateTimes(ctx context.Context, req timeclock.EditTimesRequest) (timeclock.EntryResponse, error) {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return timeclock.EntryResponse{}, err
	}

	entry, err := s.scheduleRepo.GetByID(ctx, req.ID, ident.CompanyID)
	if err != nil {
		return timeclock.EntryResponse{}, err
	}
	if entry.EmployeeID != ident.EmployeeID {
		return timeclock.EntryResponse{}, timeclock.ErrEntryNotFound
	}

	edited, err := parseEditedClock(req)
	if err != nil {
		return timeclock.EntryResponse{}, err
	}

	patch, err := BuildPatch(entry, edited, timeclock.Part(req.Part))
	if err != nil {
		return timeclock.EntryResponse{}, err
	}

	if err := s.scheduleRepo.ApplyPatch(ctx, patch, ident.CompanyID); err != nil {
		return timeclock.EntryResponse{}, err
	}

	updated, err := s.scheduleRepo.GetByID(ctx, entry.ID, ident.CompanyID)
	if err != nil {
		return timeclock.EntryResponse{}, err
	}

	return toEntryResponse(updated, DeriveStatus(updated, s.now())), nil
}

// Import implements timeclock.TimeclockService.
func (s *Service) Import(ctx context.Context, req timeclock.ImportRequest) (timeclock.ImportResponse, error) {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return timeclock.ImportResponse{}, err
	}

	var entries []timeclock.ScheduleEntry
	var warnings []string

	for i, record := range req.Records {
		entry, recordWarnings := ingest.Resolve(record)
		warnings = append(warnings, recordWarnings...)

		if entry.Date.IsZero() {
			warnings = append(warnings, fmt.Sprintf("record %d skipped: no working day", i))
			continue
		}
		if entry.EmployeeID == "" {
			warnings = append(warnings, fmt.Sprintf("record %d skipped: no employee", i))
			continue
		}
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}

		// Imports are scoped to the caller's company regardless of what the
		// upstream record claims.
		entry.CompanyID = ident.CompanyID

		if entry.CategoryConflict {
			slog.Warn("Imported record has conflicting category fields",
				"schedule_id", entry.ID, "employee_id", entry.EmployeeID)
		}

		entries = append(entries, entry)
	}

	imported, err := s.scheduleRepo.CreateMany(ctx, entries)
	if err != nil {
		return timeclock.ImportResponse{}, fmt.Errorf("failed to import entries: %w", err)
	}

	return timeclock.ImportResponse{Imported: imported, Warnings: warnings}, nil
}

// locationState assembles the gate input for one entry. Entries without the
// geofence requirement skip the branch lookup entirely.
func (s *Service) locationState(ctx context.Context, entry timeclock.ScheduleEntry, coord *timeclock.Coordinate, accuracyMeters *float64, fix timeclock.FixOutcome, companyID string) (LocationState, error) {
	if !entry.GeofenceRequired {
		return LocationState{}, nil
	}

	config, err := s.geofenceRepo.GetByBranchID(ctx, entry.BranchID, companyID)
	if err != nil {
		return LocationState{}, fmt.Errorf("failed to load branch geofence: %w", err)
	}

	loc := LocationState{Required: true, Fix: fix}

	if coord != nil {
		opts := geo.Options{SlackMeters: s.slackMeters, InflateByAccuracy: true}
		if accuracyMeters != nil {
			opts.AccuracyMeters = *accuracyMeters
		}
		loc.Result = geo.Evaluate(*coord, config, opts)
		return loc, nil
	}

	// No coordinates: a configured fence cannot be verified, so the gate sees
	// configured-but-not-inside and decides by fix outcome.
	if config != nil {
		loc.Result = geo.Result{Configured: true}
	}
	return loc, nil
}

// actionError maps a refused action to its domain error.
func actionError(action timeclock.Action, entry timeclock.ScheduleEntry, loc LocationState) error {
	if loc.Required {
		if loc.Fix == timeclock.FixDenied {
			return timeclock.ErrLocationDenied
		}
		if loc.Result.Configured && !loc.Result.Inside && loc.Fix == timeclock.FixOK {
			return timeclock.ErrOutsideGeofence
		}
	}

	switch action {
	case timeclock.ActionClockIn:
		if entry.ClockInAt != nil {
			return timeclock.ErrAlreadyClockedIn
		}
	case timeclock.ActionClockOut:
		if OnOpenBreak(entry) {
			return timeclock.ErrBreakAlreadyOpen
		}
		if entry.ClockInAt == nil {
			return timeclock.ErrNotClockedIn
		}
		if entry.ClockOutAt != nil {
			return timeclock.ErrAlreadyClockedOut
		}
	case timeclock.ActionBreakStart:
		if entry.ClockInAt == nil {
			return timeclock.ErrNotClockedIn
		}
		if OnOpenBreak(entry) {
			return timeclock.ErrBreakAlreadyOpen
		}
	case timeclock.ActionBreakEnd:
		if !OnOpenBreak(entry) {
			return timeclock.ErrBreakNotOpen
		}
	}
	return timeclock.ErrActionNotPermitted
}

func parseEditedClock(req timeclock.EditTimesRequest) (EditedClock, error) {
	var edited EditedClock

	parse := func(field string, v *string) (*time.Time, error) {
		if v == nil || *v == "" {
			return nil, nil
		}
		t, ok := validator.IsValidClockTime(*v)
		if !ok {
			return nil, validator.ValidationErrors{{
				Field:   field,
				Message: field + " must be HH:MM or HH:MM AM/PM",
			}}
		}
		return &t, nil
	}

	var err error
	if edited.ClockIn, err = parse("clock_in", req.ClockIn); err != nil {
		return EditedClock{}, err
	}
	if edited.BreakStart, err = parse("break_start", req.BreakStart); err != nil {
		return EditedClock{}, err
	}
	if edited.BreakEnd, err = parse("break_end", req.BreakEnd); err != nil {
		return EditedClock{}, err
	}
	if edited.ClockOut, err = parse("clock_out", req.ClockOut); err != nil {
		return EditedClock{}, err
	}

	return edited, nil
}

// MondayOf returns local midnight of the Monday of t's week, the default
// window start for weekly views and exports.
func MondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func toEntryResponse(entry timeclock.ScheduleEntry, status timeclock.Status) timeclock.EntryResponse {
	return timeclock.EntryResponse{
		ID:                entry.ID,
		EmployeeID:        entry.EmployeeID,
		BranchID:          entry.BranchID,
		Date:              entry.Date.Format(dateLayout),
		Category:          string(entry.Category),
		WorkTypeName:      entry.WorkTypeName,
		LeaveTypeName:     entry.LeaveTypeName,
		PlannedStart:      formatTime(entry.PlannedStart),
		PlannedBreakStart: formatTime(entry.PlannedBreakStart),
		PlannedBreakEnd:   formatTime(entry.PlannedBreakEnd),
		PlannedEnd:        formatTime(entry.PlannedEnd),
		ClockInAt:         formatTime(entry.ClockInAt),
		BreakStartAt:      formatTime(entry.BreakStartAt),
		BreakEndAt:        formatTime(entry.BreakEndAt),
		ClockOutAt:        formatTime(entry.ClockOutAt),
		Status:            string(status),
		WasLate:           WasLate(entry),
		MissedCheckout:    entry.MissedCheckout,
	}
}

func toEligibilityResponse(e timeclock.Eligibility) timeclock.EligibilityResponse {
	reasons := make(map[string]string, len(e.Reasons))
	for action, reason := range e.Reasons {
		reasons[string(action)] = reason
	}
	return timeclock.EligibilityResponse{
		CanClockIn:       e.CanClockIn,
		CanClockOut:      e.CanClockOut,
		CanBreakStart:    e.CanBreakStart,
		CanBreakEnd:      e.CanBreakEnd,
		Reasons:          reasons,
		DegradedLocation: e.DegradedLocation,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
