package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/handler/http/response"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/validator"
	"github.com/kestrelhr/timeclock-backend-go/internal/service/report"
)

type ReportHandler interface {
	ExportWeek(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService *report.Service
}

func NewReportHandler(reportService *report.Service) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ExportWeek implements ReportHandler. A missing week_start exports the
// current week, like the weekly summary endpoint.
func (h *reportHandlerImpl) ExportWeek(w http.ResponseWriter, r *http.Request) {
	var weekStart time.Time
	if weekStartStr := r.URL.Query().Get("week_start"); weekStartStr != "" {
		parsed, ok := validator.IsValidDate(weekStartStr)
		if !ok {
			response.BadRequest(w, "week_start must be in YYYY-MM-DD format", nil)
			return
		}
		weekStart = parsed
	}

	buf, filename, err := h.reportService.WeeklyTimesheet(r.Context(), weekStart)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	_, _ = buf.WriteTo(w)
}
