package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlotsMondayMorning(t *testing.T) {
	// Mon 09:00-12:00 UTC, 60 min sessions on a 30 min grid.
	iv := Interval{
		StartUTC: time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2025, time.July, 28, 12, 0, 0, 0, time.UTC),
	}
	now := time.Date(2025, time.July, 27, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots([]Interval{iv}, "t1", "st1", 60, 30, now)

	var starts []string
	for _, s := range slots {
		starts = append(starts, s.StartUTC.Format("15:04"))
	}
	// 11:00-12:00 fits exactly; 11:30 would spill past the interval end.
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00"}, starts)

	for _, s := range slots {
		assert.Equal(t, s.StartUTC.Add(60*time.Minute), s.EndUTC)
		assert.Equal(t, "t1", s.TherapistID)
		assert.Equal(t, "st1", s.SessionTypeID)
	}
}

func TestGenerateSlotsIntervalShorterThanDuration(t *testing.T) {
	iv := Interval{
		StartUTC: time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2025, time.July, 28, 9, 45, 0, 0, time.UTC),
	}
	now := time.Date(2025, time.July, 27, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots([]Interval{iv}, "t1", "st1", 60, 30, now)
	assert.Empty(t, slots)
}

func TestGenerateSlotsPrunesPastStarts(t *testing.T) {
	iv := Interval{
		StartUTC: time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2025, time.July, 28, 12, 0, 0, 0, time.UTC),
	}
	// Midway through the window: 09:00..10:00 are not bookable anymore.
	now := time.Date(2025, time.July, 28, 10, 0, 0, 0, time.UTC)

	slots := GenerateSlots([]Interval{iv}, "t1", "st1", 60, 30, now)
	require.Len(t, slots, 2)
	assert.Equal(t, "10:30", slots[0].StartUTC.Format("15:04"))
	assert.Equal(t, "11:00", slots[1].StartUTC.Format("15:04"))
}

func TestGenerateSlotsChronologicalAcrossIntervals(t *testing.T) {
	intervals := []Interval{
		{
			StartUTC: time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC),
			EndUTC:   time.Date(2025, time.July, 28, 10, 0, 0, 0, time.UTC),
		},
		{
			StartUTC: time.Date(2025, time.July, 28, 14, 0, 0, 0, time.UTC),
			EndUTC:   time.Date(2025, time.July, 28, 16, 0, 0, 0, time.UTC),
		},
	}
	now := time.Date(2025, time.July, 27, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(intervals, "t1", "st1", 60, 30, now)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i].StartUTC.After(slots[i-1].StartUTC), "slots must stay chronological")
	}
}

func TestGenerateSlotsRejectsBadGranularity(t *testing.T) {
	iv := Interval{
		StartUTC: time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2025, time.July, 28, 12, 0, 0, 0, time.UTC),
	}
	now := time.Date(2025, time.July, 27, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, GenerateSlots([]Interval{iv}, "t1", "st1", 0, 30, now))
	assert.Nil(t, GenerateSlots([]Interval{iv}, "t1", "st1", 60, 0, now))
}
