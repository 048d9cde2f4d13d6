package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
)

// TimeclockJobs flags shifts whose planned end passed without a clock-out.
// The flag is a store-side override surfaced alongside the derived status; a
// clock-out or an edit supplying the missing times clears it again.
type TimeclockJobs struct {
	scheduleRepo timeclock.ScheduleRepository
	grace        time.Duration
}

func NewTimeclockJobs(scheduleRepo timeclock.ScheduleRepository, grace time.Duration) *TimeclockJobs {
	return &TimeclockJobs{
		scheduleRepo: scheduleRepo,
		grace:        grace,
	}
}

func (j *TimeclockJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("flag_missed_checkouts", 1*time.Hour, j.FlagMissedCheckouts)
}

func (j *TimeclockJobs) FlagMissedCheckouts(ctx context.Context) error {
	cutoff := time.Now().Add(-j.grace)

	open, err := j.scheduleRepo.ListOpenPastPlannedEnd(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list open shifts: %w", err)
	}

	if len(open) == 0 {
		return nil
	}

	flagged := 0
	for _, entry := range open {
		if err := j.scheduleRepo.MarkMissedCheckout(ctx, entry.ID); err != nil {
			slog.Error("Cron: Failed to flag missed checkout",
				"schedule_id", entry.ID,
				"employee_id", entry.EmployeeID,
				"error", err)
			continue
		}
		flagged++
	}

	slog.Info("Cron: Flagged missed checkouts", "count", flagged)
	return nil
}
