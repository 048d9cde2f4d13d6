package report

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	timeclockService "github.com/kestrelhr/timeclock-backend-go/internal/service/timeclock"
	"github.com/xuri/excelize/v2"
)

// Service renders a weekly timesheet workbook from the same aggregation the
// summary endpoint uses, so the export can never disagree with the UI.
type Service struct {
	scheduleRepo timeclock.ScheduleRepository
	now          func() time.Time
}

func NewReportService(scheduleRepo timeclock.ScheduleRepository) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		now:          time.Now,
	}
}

const dateLayout = "2006-01-02"

// WeeklyTimesheet builds an XLSX workbook for the caller's week starting at
// weekStart. A zero weekStart defaults to the current week's Monday, matching
// the weekly summary endpoint. It returns the workbook bytes plus a suggested
// filename.
func (s *Service) WeeklyTimesheet(ctx context.Context, weekStart time.Time) (*bytes.Buffer, string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil, "", timeclock.ErrUnauthenticated
	}
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return nil, "", timeclock.ErrUnauthenticated
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return nil, "", timeclock.ErrUnauthenticated
	}

	now := s.now()
	if weekStart.IsZero() {
		weekStart = timeclockService.MondayOf(now)
	}

	// The day before the window can hold an overnight shift spilling into it.
	entries, err := s.scheduleRepo.ListRange(ctx,
		employeeID, weekStart.AddDate(0, 0, -1), weekStart.AddDate(0, 0, 6), companyID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list week entries: %w", err)
	}

	summary := timeclockService.WeeklyMinutes(entries, weekStart, now)

	f := excelize.NewFile()
	sheet := "Timesheet"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Status", "Clock In", "Clock Out", "Minutes Worked"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
	}

	byDate := make(map[string]timeclock.ScheduleEntry, len(entries))
	for _, entry := range entries {
		byDate[entry.Date.Format(dateLayout)] = entry
	}

	days := make([]string, 0, len(summary.PerDay))
	for day := range summary.PerDay {
		days = append(days, day)
	}
	sort.Strings(days)

	rowNum := 2
	for _, day := range days {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), day)

		if entry, ok := byDate[day]; ok {
			f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), string(timeclockService.DeriveStatus(entry, now)))
			f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), formatClock(entry.ClockInAt))
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), formatClock(entry.ClockOutAt))
		}
		f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), summary.PerDay[day])
		rowNum++
	}

	f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), summary.TotalMinutes)

	f.SetCellValue(sheet, "G1", "Employee")
	f.SetCellValue(sheet, "H1", employeeID)
	f.SetCellValue(sheet, "G2", "Week Start")
	f.SetCellValue(sheet, "H2", summary.WeekStart)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("error writing workbook: %w", err)
	}

	filename := fmt.Sprintf("timesheet_%s_%s.xlsx", employeeID, summary.WeekStart)
	return buf, filename, nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
