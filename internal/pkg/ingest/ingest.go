package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
)

// Upstream schedule stores never stabilized their field names, so every field
// is resolved through an ordered synonym chain: the first present key wins and
// absence is simply no value. Resolution happens exactly once here; everything
// past this boundary works on the canonical ScheduleEntry shape.
var (
	idKeys         = []string{"id", "schedule_id", "scheduleId"}
	employeeKeys   = []string{"employee_id", "employeeId", "emp_id"}
	branchKeys     = []string{"branch_id", "branchId", "office_id"}
	companyKeys    = []string{"company_id", "companyId"}
	dateKeys       = []string{"date", "work_date", "schedule_date"}
	categoryKeys   = []string{"category", "entry_type", "assign_type"}
	statusKeys     = []string{"status", "attendance_status", "assign_status"}
	computedAtKeys = []string{"status_computed_at", "status_updated_at"}

	workTypeIDKeys    = []string{"work_type_id", "worktype_id", "workTypeId"}
	workTypeNameKeys  = []string{"work_type", "work_type_name", "worktype"}
	leaveTypeIDKeys   = []string{"leave_type_id", "leaveTypeId"}
	leaveTypeNameKeys = []string{"leave_type", "leave_type_name"}

	plannedStartKeys      = []string{"planned_start", "schedule_clock_in", "clock_in_time", "start_time"}
	plannedEndKeys        = []string{"planned_end", "schedule_clock_out", "clock_out_time", "end_time"}
	plannedBreakStartKeys = []string{"planned_break_start", "schedule_break_start", "break_start_time"}
	plannedBreakEndKeys   = []string{"planned_break_end", "schedule_break_end", "break_end_time"}

	clockInKeys    = []string{"clock_in", "clock_in_at", "check_in", "checkIn"}
	clockOutKeys   = []string{"clock_out", "clock_out_at", "check_out", "checkOut"}
	breakStartKeys = []string{"break_start", "break_start_at", "actual_break_start"}
	breakEndKeys   = []string{"break_end", "break_end_at", "actual_break_end"}

	missedCheckoutKeys   = []string{"missed_checkout", "is_missed_checkout", "no_checkout"}
	geofenceRequiredKeys = []string{"geofence_required", "require_geofence", "location_required"}
)

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Resolve maps one raw upstream record onto the canonical entry. It never
// fails: unusable values surface as warnings and the field stays empty.
func Resolve(record map[string]any) (timeclock.ScheduleEntry, []string) {
	var warnings []string

	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	entry := timeclock.ScheduleEntry{
		ID:         pickString(record, idKeys),
		EmployeeID: pickString(record, employeeKeys),
		BranchID:   pickString(record, branchKeys),
		CompanyID:  pickString(record, companyKeys),
	}

	if date, ok := pickTime(record, dateKeys, warn); ok {
		entry.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	} else {
		warn("record %q has no usable date", entry.ID)
	}

	entry.WorkTypeID = pickStringPtr(record, workTypeIDKeys)
	entry.WorkTypeName = pickStringPtr(record, workTypeNameKeys)
	entry.LeaveTypeID = pickStringPtr(record, leaveTypeIDKeys)
	entry.LeaveTypeName = pickStringPtr(record, leaveTypeNameKeys)

	entry.Category = resolveCategory(record, entry)
	if entry.LeaveTypeID != nil && entry.WorkTypeID != nil {
		// Both identifiers present: leave wins, but the caller should know.
		entry.CategoryConflict = true
		warn("record %q carries both work type and leave type, treating as leave", entry.ID)
	}

	entry.PlannedStart = pickTimePtr(record, plannedStartKeys, warn)
	entry.PlannedEnd = pickTimePtr(record, plannedEndKeys, warn)
	entry.PlannedBreakStart = pickTimePtr(record, plannedBreakStartKeys, warn)
	entry.PlannedBreakEnd = pickTimePtr(record, plannedBreakEndKeys, warn)

	entry.ClockInAt = pickTimePtr(record, clockInKeys, warn)
	entry.ClockOutAt = pickTimePtr(record, clockOutKeys, warn)
	entry.BreakStartAt = pickTimePtr(record, breakStartKeys, warn)
	entry.BreakEndAt = pickTimePtr(record, breakEndKeys, warn)

	entry.MissedCheckout = pickBool(record, missedCheckoutKeys)
	entry.GeofenceRequired = pickBool(record, geofenceRequiredKeys)

	entry.SourceStatus = strings.ToUpper(pickString(record, statusKeys))
	entry.StatusComputedAt = pickTimePtr(record, computedAtKeys, warn)

	return entry, warnings
}

func resolveCategory(record map[string]any, entry timeclock.ScheduleEntry) timeclock.Category {
	if entry.LeaveTypeID != nil || entry.LeaveTypeName != nil {
		return timeclock.CategoryLeave
	}
	if strings.EqualFold(pickString(record, categoryKeys), string(timeclock.CategoryLeave)) {
		return timeclock.CategoryLeave
	}
	return timeclock.CategoryWork
}

// pick returns the first non-nil value along the synonym chain.
func pick(record map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := record[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(record map[string]any, keys []string) string {
	v, ok := pick(record, keys)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return s.String()
	}
	return ""
}

func pickStringPtr(record map[string]any, keys []string) *string {
	if s := pickString(record, keys); s != "" {
		return &s
	}
	return nil
}

func pickBool(record map[string]any, keys []string) bool {
	v, ok := pick(record, keys)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true") || b == "1"
	case float64:
		return b != 0
	}
	return false
}

func pickTime(record map[string]any, keys []string, warn func(string, ...any)) (time.Time, bool) {
	v, ok := pick(record, keys)
	if !ok {
		return time.Time{}, false
	}

	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if t == "" {
			return time.Time{}, false
		}
		for _, format := range timestampFormats {
			if parsed, err := time.Parse(format, t); err == nil {
				return parsed, true
			}
		}
		warn("unparseable timestamp %q", t)
	case float64:
		// JSON numbers arrive as float64; treat as unix seconds.
		return time.Unix(int64(t), 0).UTC(), true
	}
	return time.Time{}, false
}

func pickTimePtr(record map[string]any, keys []string, warn func(string, ...any)) *time.Time {
	if t, ok := pickTime(record, keys, warn); ok {
		return &t
	}
	return nil
}
