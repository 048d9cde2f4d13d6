package timeclock

import (
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
)

const dateLayout = "2006-01-02"

// Project splits a schedule entry into one or two calendar-day pieces. The
// governing interval is the actual pair when both ends exist, otherwise the
// planned pair. An interval crossing midnight yields a HEAD piece on the
// start day and a TAIL piece on the end day, except when the interval ends
// exactly at local midnight: the shift then ends at the day boundary with no
// spillover and only the HEAD piece is emitted.
//
// Pieces are ephemeral view objects; they carry no further splittable
// interval, so projection is idempotent by construction.
func Project(entry timeclock.ScheduleEntry) []timeclock.CalendarPiece {
	start, end := governingInterval(entry)

	if start == nil {
		return []timeclock.CalendarPiece{singlePiece(entry, entry.Date)}
	}
	if end == nil {
		return []timeclock.CalendarPiece{singlePiece(entry, *start)}
	}

	if sameCalendarDay(*start, *end) {
		return []timeclock.CalendarPiece{singlePiece(entry, *start)}
	}

	head := timeclock.CalendarPiece{
		ScheduleID:  entry.ID,
		Date:        start.Format(dateLayout),
		IsOvernight: true,
		Part:        timeclock.PartHead,
		Entry:       entry,
	}

	// Ending exactly on the day boundary means no spillover into the end day.
	if isLocalMidnight(*end) {
		return []timeclock.CalendarPiece{head}
	}

	tail := timeclock.CalendarPiece{
		ScheduleID:  entry.ID,
		Date:        end.Format(dateLayout),
		IsOvernight: true,
		Part:        timeclock.PartTail,
		Entry:       entry,
	}
	return []timeclock.CalendarPiece{head, tail}
}

func singlePiece(entry timeclock.ScheduleEntry, day time.Time) timeclock.CalendarPiece {
	return timeclock.CalendarPiece{
		ScheduleID: entry.ID,
		Date:       day.Format(dateLayout),
		Part:       timeclock.PartNone,
		Entry:      entry,
	}
}

func governingInterval(entry timeclock.ScheduleEntry) (*time.Time, *time.Time) {
	if entry.ClockInAt != nil && entry.ClockOutAt != nil {
		return entry.ClockInAt, entry.ClockOutAt
	}
	return entry.PlannedStart, entry.PlannedEnd
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func isLocalMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
