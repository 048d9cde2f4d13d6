package timeclock

import (
	"testing"
	"time"

	"github.com/kestrelhr/timeclock-backend-go/internal/domain/timeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wall(hour, minute int) *time.Time {
	t := time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
	return &t
}

func TestBuildPatch_SameDayEdit(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(9 * time.Hour))
	entry.ClockOutAt = tp(day.Add(17 * time.Hour))

	patch, err := BuildPatch(entry, EditedClock{ClockOut: wall(18, 0)}, timeclock.PartNone)
	require.NoError(t, err)

	require.NotNil(t, patch.ClockOutAt)
	assert.Equal(t, day.Add(18*time.Hour), *patch.ClockOutAt)
	assert.Nil(t, patch.ClockInAt, "unedited fields stay out of the patch")
	assert.Equal(t, entry.ID, patch.ScheduleID)
}

func TestBuildPatch_OutBeforeInRollsForward(t *testing.T) {
	// Editing out to 00:30 on a 23:30 shift rolls the out one day forward
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(23*time.Hour + 30*time.Minute))

	patch, err := BuildPatch(entry, EditedClock{ClockOut: wall(0, 30)}, timeclock.PartNone)
	require.NoError(t, err)

	require.NotNil(t, patch.ClockOutAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(30*time.Minute), *patch.ClockOutAt)
}

func TestBuildPatch_EditingInRollsExistingOut(t *testing.T) {
	// Moving the clock-in past the existing out rolls the out, and the rolled
	// out is part of the patch even though it was never edited
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(9 * time.Hour))
	entry.ClockOutAt = tp(day.Add(17 * time.Hour))

	patch, err := BuildPatch(entry, EditedClock{ClockIn: wall(22, 0)}, timeclock.PartNone)
	require.NoError(t, err)

	require.NotNil(t, patch.ClockInAt)
	assert.Equal(t, day.Add(22*time.Hour), *patch.ClockInAt)
	require.NotNil(t, patch.ClockOutAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(17*time.Hour), *patch.ClockOutAt)
}

func TestBuildPatch_ZeroLengthRejected(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(9 * time.Hour))

	_, err := BuildPatch(entry, EditedClock{ClockOut: wall(9, 0)}, timeclock.PartNone)
	assert.ErrorIs(t, err, timeclock.ErrZeroLengthInterval)

	// Same rule for the break pair
	entry.BreakStartAt = tp(day.Add(12 * time.Hour))
	_, err = BuildPatch(entry, EditedClock{BreakEnd: wall(12, 0)}, timeclock.PartNone)
	assert.ErrorIs(t, err, timeclock.ErrZeroLengthInterval)
}

func TestBuildPatch_BreakBeforeClockInRolls(t *testing.T) {
	// On an overnight shift a break at 01:00 belongs to the morning after the
	// 22:00 clock-in
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(22 * time.Hour))

	patch, err := BuildPatch(entry, EditedClock{BreakStart: wall(1, 0)}, timeclock.PartNone)
	require.NoError(t, err)

	require.NotNil(t, patch.BreakStartAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(time.Hour), *patch.BreakStartAt)
}

func TestBuildPatch_TailEditSkipsBreakRoll(t *testing.T) {
	// Editing the TAIL half anchors breaks to the end day as given
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(22 * time.Hour))
	entry.BreakStartAt = tp(day.AddDate(0, 0, 1).Add(2 * time.Hour))

	patch, err := BuildPatch(entry, EditedClock{BreakStart: wall(1, 0)}, timeclock.PartTail)
	require.NoError(t, err)

	require.NotNil(t, patch.BreakStartAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(time.Hour), *patch.BreakStartAt)
}

func TestBuildPatch_TailEditNewBreakLandsOnEndDay(t *testing.T) {
	// A break added to the TAIL half of an overnight shift lands on the end
	// day even when the entry has no break instant to anchor on
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(22 * time.Hour))
	entry.ClockOutAt = tp(day.AddDate(0, 0, 1).Add(6 * time.Hour))

	patch, err := BuildPatch(entry, EditedClock{BreakStart: wall(1, 0)}, timeclock.PartTail)
	require.NoError(t, err)

	require.NotNil(t, patch.BreakStartAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(time.Hour), *patch.BreakStartAt)

	// Same anchoring for a new break end
	patch, err = BuildPatch(entry, EditedClock{BreakEnd: wall(1, 30)}, timeclock.PartTail)
	require.NoError(t, err)
	require.NotNil(t, patch.BreakEndAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(time.Hour+30*time.Minute), *patch.BreakEndAt)
}

func TestBuildPatch_BreakEndBeforeStartRolls(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.BreakStartAt = tp(day.Add(23*time.Hour + 30*time.Minute))

	// End on the same side of midnight stays put
	patch, err := BuildPatch(entry, EditedClock{BreakEnd: wall(23, 45)}, timeclock.PartNone)
	require.NoError(t, err)
	require.NotNil(t, patch.BreakEndAt)
	assert.Equal(t, day.Add(23*time.Hour+45*time.Minute), *patch.BreakEndAt)

	// End before the start means the break crossed midnight
	patch, err = BuildPatch(entry, EditedClock{BreakEnd: wall(0, 15)}, timeclock.PartNone)
	require.NoError(t, err)
	require.NotNil(t, patch.BreakEndAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(15*time.Minute), *patch.BreakEndAt)
}

func TestBuildPatch_AnchorsToExistingInstantDay(t *testing.T) {
	// An edited out on an overnight entry keeps the day the existing out is on
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(22 * time.Hour))
	entry.ClockOutAt = tp(day.AddDate(0, 0, 1).Add(6 * time.Hour))

	patch, err := BuildPatch(entry, EditedClock{ClockOut: wall(7, 30)}, timeclock.PartTail)
	require.NoError(t, err)

	require.NotNil(t, patch.ClockOutAt)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(7*time.Hour+30*time.Minute), *patch.ClockOutAt)
}

func TestBuildPatch_ClearsMissedCheckout(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(9 * time.Hour))
	entry.MissedCheckout = true

	// Supplying the missing out completes the pair and clears the flag
	patch, err := BuildPatch(entry, EditedClock{ClockOut: wall(17, 0)}, timeclock.PartNone)
	require.NoError(t, err)
	assert.True(t, patch.ClearMissedCheckout)

	// A break-only edit leaves the flag alone
	patch, err = BuildPatch(entry, EditedClock{BreakStart: wall(12, 0)}, timeclock.PartNone)
	require.NoError(t, err)
	assert.False(t, patch.ClearMissedCheckout)
}

func TestBuildPatch_NoEditNoPatch(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := workEntry(day)
	entry.ClockInAt = tp(day.Add(9 * time.Hour))

	patch, err := BuildPatch(entry, EditedClock{}, timeclock.PartNone)
	require.NoError(t, err)
	assert.Nil(t, patch.ClockInAt)
	assert.Nil(t, patch.ClockOutAt)
	assert.Nil(t, patch.BreakStartAt)
	assert.Nil(t, patch.BreakEndAt)
	assert.False(t, patch.ClearMissedCheckout)
}
