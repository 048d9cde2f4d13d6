package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/database"
)

type branchRepository struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) timeclock.GeofenceRepository {
	return &branchRepository{db: db}
}

// GetByBranchID implements timeclock.GeofenceRepository. A branch with null
// location columns has no geofence; that is nil config, nil error.
func (r *branchRepository) GetByBranchID(ctx context.Context, branchID string, companyID string) (*timeclock.GeofenceConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT latitude, longitude, radius_meters
		FROM branches
		WHERE id = $1 AND company_id = $2
	`

	var lat, lon, radius *float64
	err := q.QueryRow(ctx, query, branchID, companyID).Scan(&lat, &lon, &radius)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get branch geofence: %w", err)
	}

	if lat == nil || lon == nil || radius == nil {
		return nil, nil
	}

	return &timeclock.GeofenceConfig{
		Latitude:     *lat,
		Longitude:    *lon,
		RadiusMeters: *radius,
	}, nil
}
