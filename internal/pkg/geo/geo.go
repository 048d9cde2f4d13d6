package geo

import (
	"math"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
)

const earthRadiusMeters = 6371000

// Options tune a geofence evaluation.
type Options struct {
	// AccuracyMeters is the reported accuracy radius of the location fix.
	AccuracyMeters float64

	// InflateByAccuracy adds AccuracyMeters to the allowed radius so a noisy
	// fix near the boundary does not produce a false negative.
	InflateByAccuracy bool

	// SlackMeters is a flat tolerance added to the allowed radius.
	SlackMeters float64
}

// Result is the outcome of one evaluation. When Configured is false the
// distance and inside fields carry no meaning; the caller decides the policy.
type Result struct {
	Configured     bool
	DistanceMeters float64
	Inside         bool
}

// HaversineDistance computes the great-circle distance between two points in
// meters on a spherical Earth approximation.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Evaluate reports whether point is inside the branch geofence. A nil or
// malformed config yields Configured=false rather than an error or a silent
// pass/fail.
func Evaluate(point timeclock.Coordinate, config *timeclock.GeofenceConfig, opts Options) Result {
	if !isConfigured(config) {
		return Result{Configured: false}
	}

	distance := HaversineDistance(point.Latitude, point.Longitude, config.Latitude, config.Longitude)

	allowed := config.RadiusMeters + opts.SlackMeters
	if opts.InflateByAccuracy && opts.AccuracyMeters > 0 {
		allowed += opts.AccuracyMeters
	}

	return Result{
		Configured:     true,
		DistanceMeters: distance,
		// Boundary inclusive: a fix exactly on the radius counts as inside.
		Inside: distance <= allowed,
	}
}

func isConfigured(config *timeclock.GeofenceConfig) bool {
	if config == nil {
		return false
	}
	if math.IsNaN(config.Latitude) || math.IsInf(config.Latitude, 0) ||
		math.IsNaN(config.Longitude) || math.IsInf(config.Longitude, 0) ||
		math.IsNaN(config.RadiusMeters) || math.IsInf(config.RadiusMeters, 0) {
		return false
	}
	if config.Latitude < -90 || config.Latitude > 90 ||
		config.Longitude < -180 || config.Longitude > 180 {
		return false
	}
	return config.RadiusMeters > 0
}
