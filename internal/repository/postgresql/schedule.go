package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/database"
)

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) timeclock.ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `
	id, employee_id, branch_id, company_id, date, category,
	work_type_id, work_type_name, geofence_required,
	leave_type_id, leave_type_name,
	planned_start, planned_break_start, planned_break_end, planned_end,
	clock_in_at, break_start_at, break_end_at, clock_out_at,
	missed_checkout, source_status, status_computed_at, category_conflict,
	created_at, updated_at
`

func scanEntry(row pgx.Row) (timeclock.ScheduleEntry, error) {
	var e timeclock.ScheduleEntry
	var sourceStatus *string

	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.BranchID, &e.CompanyID, &e.Date, &e.Category,
		&e.WorkTypeID, &e.WorkTypeName, &e.GeofenceRequired,
		&e.LeaveTypeID, &e.LeaveTypeName,
		&e.PlannedStart, &e.PlannedBreakStart, &e.PlannedBreakEnd, &e.PlannedEnd,
		&e.ClockInAt, &e.BreakStartAt, &e.BreakEndAt, &e.ClockOutAt,
		&e.MissedCheckout, &sourceStatus, &e.StatusComputedAt, &e.CategoryConflict,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return timeclock.ScheduleEntry{}, err
	}

	if sourceStatus != nil {
		e.SourceStatus = *sourceStatus
	}
	return e, nil
}

// GetByID implements timeclock.ScheduleRepository.
func (r *scheduleRepository) GetByID(ctx context.Context, id string, companyID string) (timeclock.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedule_entries
		WHERE id = $1 AND company_id = $2
	`

	entry, err := scanEntry(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timeclock.ScheduleEntry{}, timeclock.ErrEntryNotFound
		}
		return timeclock.ScheduleEntry{}, fmt.Errorf("failed to get schedule entry: %w", err)
	}

	return entry, nil
}

// GetByEmployeeAndDate implements timeclock.ScheduleRepository.
func (r *scheduleRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, dateLocal string, companyID string) (*timeclock.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedule_entries
		WHERE employee_id = $1
		  AND date = $2
		  AND company_id = $3
		LIMIT 1
	`

	entry, err := scanEntry(q.QueryRow(ctx, query, employeeID, dateLocal, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No schedule for this day
		}
		return nil, fmt.Errorf("failed to get schedule entry by date: %w", err)
	}

	return &entry, nil
}

// ListRange implements timeclock.ScheduleRepository.
func (r *scheduleRepository) ListRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]timeclock.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedule_entries
		WHERE employee_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND company_id = $4
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []timeclock.ScheduleEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schedule entries: %w", err)
	}

	return entries, nil
}

// ApplyPatch implements timeclock.ScheduleRepository. Only the non-nil fields
// of the patch make it into the SET clause; absent fields stay untouched.
func (r *scheduleRepository) ApplyPatch(ctx context.Context, patch timeclock.Patch, companyID string) error {
	q := GetQuerier(ctx, r.db)

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{patch.ScheduleID, companyID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.ClockInAt != nil {
		addSet("clock_in_at", *patch.ClockInAt)
	}
	if patch.BreakStartAt != nil {
		addSet("break_start_at", *patch.BreakStartAt)
	}
	if patch.BreakEndAt != nil {
		addSet("break_end_at", *patch.BreakEndAt)
	}
	if patch.ClockOutAt != nil {
		addSet("clock_out_at", *patch.ClockOutAt)
	}
	if patch.ClearMissedCheckout {
		sets = append(sets, "missed_checkout = FALSE")
	}

	query := fmt.Sprintf(`
		UPDATE schedule_entries
		SET %s
		WHERE id = $1 AND company_id = $2
	`, strings.Join(sets, ", "))

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to apply schedule patch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timeclock.ErrEntryNotFound
	}

	return nil
}

// CreateMany implements timeclock.ScheduleRepository.
func (r *scheduleRepository) CreateMany(ctx context.Context, entries []timeclock.ScheduleEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	inserted := 0
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO schedule_entries (
				id, employee_id, branch_id, company_id, date, category,
				work_type_id, work_type_name, geofence_required,
				leave_type_id, leave_type_name,
				planned_start, planned_break_start, planned_break_end, planned_end,
				clock_in_at, break_start_at, break_end_at, clock_out_at,
				missed_checkout, source_status, status_computed_at, category_conflict
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
			)
			ON CONFLICT (id) DO UPDATE SET
				planned_start = EXCLUDED.planned_start,
				planned_break_start = EXCLUDED.planned_break_start,
				planned_break_end = EXCLUDED.planned_break_end,
				planned_end = EXCLUDED.planned_end,
				clock_in_at = EXCLUDED.clock_in_at,
				break_start_at = EXCLUDED.break_start_at,
				break_end_at = EXCLUDED.break_end_at,
				clock_out_at = EXCLUDED.clock_out_at,
				missed_checkout = EXCLUDED.missed_checkout,
				source_status = EXCLUDED.source_status,
				status_computed_at = EXCLUDED.status_computed_at,
				category_conflict = EXCLUDED.category_conflict,
				updated_at = NOW()
		`

		for _, e := range entries {
			var sourceStatus *string
			if e.SourceStatus != "" {
				sourceStatus = &e.SourceStatus
			}

			_, err := tx.Exec(ctx, query,
				e.ID, e.EmployeeID, e.BranchID, e.CompanyID, e.Date, e.Category,
				e.WorkTypeID, e.WorkTypeName, e.GeofenceRequired,
				e.LeaveTypeID, e.LeaveTypeName,
				e.PlannedStart, e.PlannedBreakStart, e.PlannedBreakEnd, e.PlannedEnd,
				e.ClockInAt, e.BreakStartAt, e.BreakEndAt, e.ClockOutAt,
				e.MissedCheckout, sourceStatus, e.StatusComputedAt, e.CategoryConflict,
			)
			if err != nil {
				return fmt.Errorf("failed to insert schedule entry %s: %w", e.ID, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// ListOpenPastPlannedEnd implements timeclock.ScheduleRepository.
func (r *scheduleRepository) ListOpenPastPlannedEnd(ctx context.Context, cutoff time.Time) ([]timeclock.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedule_entries
		WHERE clock_in_at IS NOT NULL
		  AND clock_out_at IS NULL
		  AND missed_checkout = FALSE
		  AND planned_end IS NOT NULL
		  AND planned_end < $1
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list open shifts: %w", err)
	}
	defer rows.Close()

	var entries []timeclock.ScheduleEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open shift: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read open shifts: %w", err)
	}

	return entries, nil
}

// MarkMissedCheckout implements timeclock.ScheduleRepository.
func (r *scheduleRepository) MarkMissedCheckout(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE schedule_entries
		SET missed_checkout = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark missed checkout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timeclock.ErrEntryNotFound
	}

	return nil
}
