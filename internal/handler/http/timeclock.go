package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/kestrelhr/timeclock-backend-go/internal/handler/http/response"
)

type TimeclockHandler interface {
	TodayStatus(w http.ResponseWriter, r *http.Request)
	WeeklySummary(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	BreakStart(w http.ResponseWriter, r *http.Request)
	BreakEnd(w http.ResponseWriter, r *http.Request)
	UpdateTimes(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
}

type timeclockHandlerImpl struct {
	timeclockService timeclock.TimeclockService
}

func NewTimeclockHandler(timeclockService timeclock.TimeclockService) TimeclockHandler {
	return &timeclockHandlerImpl{
		timeclockService: timeclockService,
	}
}

// TodayStatus implements TimeclockHandler. Coordinates arrive as optional
// query parameters so the page can render before a location fix completes.
func (h *timeclockHandlerImpl) TodayStatus(w http.ResponseWriter, r *http.Request) {
	var coord *timeclock.Coordinate
	var accuracy *float64

	latStr := r.URL.Query().Get("latitude")
	lonStr := r.URL.Query().Get("longitude")
	if latStr != "" && lonStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			response.BadRequest(w, "latitude and longitude must be numbers", nil)
			return
		}
		coord = &timeclock.Coordinate{Latitude: lat, Longitude: lon}
	}
	if accStr := r.URL.Query().Get("accuracy_meters"); accStr != "" {
		acc, err := strconv.ParseFloat(accStr, 64)
		if err != nil {
			response.BadRequest(w, "accuracy_meters must be a number", nil)
			return
		}
		accuracy = &acc
	}

	result, err := h.timeclockService.TodayStatus(r.Context(), coord, accuracy)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// WeeklySummary implements TimeclockHandler.
func (h *timeclockHandlerImpl) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	req := timeclock.WeekQuery{
		WeekStart: r.URL.Query().Get("week_start"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeclockService.WeeklySummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Calendar implements TimeclockHandler.
func (h *timeclockHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	req := timeclock.CalendarQuery{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeclockService.Calendar(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ClockIn implements TimeclockHandler.
func (h *timeclockHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.submitAction(w, r, timeclock.ActionClockIn, "Clock in successful")
}

// ClockOut implements TimeclockHandler.
func (h *timeclockHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.submitAction(w, r, timeclock.ActionClockOut, "Clock out successful")
}

// BreakStart implements TimeclockHandler.
func (h *timeclockHandlerImpl) BreakStart(w http.ResponseWriter, r *http.Request) {
	h.submitAction(w, r, timeclock.ActionBreakStart, "Break started")
}

// BreakEnd implements TimeclockHandler.
func (h *timeclockHandlerImpl) BreakEnd(w http.ResponseWriter, r *http.Request) {
	h.submitAction(w, r, timeclock.ActionBreakEnd, "Break ended")
}

func (h *timeclockHandlerImpl) submitAction(w http.ResponseWriter, r *http.Request, action timeclock.Action, message string) {
	var req timeclock.ClockActionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeclockService.SubmitAction(r.Context(), action, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// UpdateTimes implements TimeclockHandler.
func (h *timeclockHandlerImpl) UpdateTimes(w http.ResponseWriter, r *http.Request) {
	var req timeclock.EditTimesRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeclockService.UpdateTimes(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Times updated", result)
}

// Import implements TimeclockHandler.
func (h *timeclockHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	var req timeclock.ImportRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeclockService.Import(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Import completed", result)
}
