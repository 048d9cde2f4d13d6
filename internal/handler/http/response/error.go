package response

import (
	"errors"
	"net/http"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity errors
	case errors.Is(err, timeclock.ErrUnauthenticated):
		Unauthorized(w, "Missing or invalid identity claims")

	// Clock action errors
	case errors.Is(err, timeclock.ErrNoScheduleToday):
		NotFound(w, "No schedule found for today")
	case errors.Is(err, timeclock.ErrAlreadyClockedIn):
		Conflict(w, "You have already clocked in")
	case errors.Is(err, timeclock.ErrNotClockedIn):
		Conflict(w, "You have not clocked in yet")
	case errors.Is(err, timeclock.ErrAlreadyClockedOut):
		Conflict(w, "You have already clocked out")
	case errors.Is(err, timeclock.ErrBreakAlreadyOpen):
		Conflict(w, "A break is already in progress")
	case errors.Is(err, timeclock.ErrBreakNotOpen):
		Conflict(w, "No break is in progress")
	case errors.Is(err, timeclock.ErrOutsideGeofence):
		Forbidden(w, "You are outside the allowed radius")
	case errors.Is(err, timeclock.ErrLocationDenied):
		Forbidden(w, "Location permission was denied")
	case errors.Is(err, timeclock.ErrActionNotPermitted):
		Conflict(w, "Action is not permitted in the current state")
	case errors.Is(err, timeclock.ErrDuplicateSubmission):
		Conflict(w, "This submission was already processed")

	// Edit errors
	case errors.Is(err, timeclock.ErrZeroLengthInterval):
		BadRequest(w, "Start and end times must not be equal", nil)

	// Lookup errors
	case errors.Is(err, timeclock.ErrEntryNotFound):
		NotFound(w, "Schedule entry not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
