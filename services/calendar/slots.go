package calendar

import (
	"time"

	"calmora/models"
)

// GenerateSlots walks each open interval in stepMin increments and emits a
// candidate slot for every start whose full [start, start+duration) window
// fits inside the interval and lies strictly in the future. Intervals shorter
// than the duration yield nothing. Output is chronological and deterministic
// for identical inputs.
func GenerateSlots(
	intervals []Interval,
	therapistID, sessionTypeID string,
	durationMin, stepMin int,
	now time.Time,
) []models.TimeSlot {
	if durationMin <= 0 || stepMin <= 0 {
		return nil
	}

	duration := time.Duration(durationMin) * time.Minute
	step := time.Duration(stepMin) * time.Minute

	var slots []models.TimeSlot
	for _, iv := range intervals {
		for cursor := iv.StartUTC; !cursor.Add(duration).After(iv.EndUTC); cursor = cursor.Add(step) {
			if !cursor.After(now) {
				continue
			}
			slots = append(slots, models.TimeSlot{
				TherapistID:   therapistID,
				SessionTypeID: sessionTypeID,
				StartUTC:      cursor,
				EndUTC:        cursor.Add(duration),
			})
		}
	}
	return slots
}
