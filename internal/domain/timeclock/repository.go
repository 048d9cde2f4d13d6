package timeclock

import (
	"context"
	"time"
)

// ScheduleRepository defines data access methods for schedule entries.
// All methods include companyID to prevent cross-company data access.
type ScheduleRepository interface {
	// GetByID retrieves one entry with company isolation
	GetByID(ctx context.Context, id string, companyID string) (ScheduleEntry, error)

	// GetByEmployeeAndDate retrieves the entry for a specific working day,
	// dateLocal in YYYY-MM-DD
	GetByEmployeeAndDate(ctx context.Context, employeeID string, dateLocal string, companyID string) (*ScheduleEntry, error)

	// ListRange retrieves entries whose working day falls in [from, to]
	ListRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]ScheduleEntry, error)

	// ApplyPatch writes the non-nil fields of patch to the entry
	ApplyPatch(ctx context.Context, patch Patch, companyID string) error

	// CreateMany bulk-inserts ingested entries, returning the inserted count
	CreateMany(ctx context.Context, entries []ScheduleEntry) (int, error)

	// ListOpenPastPlannedEnd returns entries with a clock-in, no clock-out,
	// not yet flagged, whose planned end is older than cutoff
	ListOpenPastPlannedEnd(ctx context.Context, cutoff time.Time) ([]ScheduleEntry, error)

	// MarkMissedCheckout sets the missed-checkout override flag
	MarkMissedCheckout(ctx context.Context, id string) error
}

// GeofenceRepository resolves the geofence constraint of a branch. A nil
// config with a nil error means the branch has no location requirement.
type GeofenceRepository interface {
	GetByBranchID(ctx context.Context, branchID string, companyID string) (*GeofenceConfig, error)
}
