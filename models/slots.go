package models

import "time"

// TimeSlot is a candidate bookable interval derived on demand by the slot
// generator. It is never persisted; only reserved Sessions are.
// Invariant: EndUTC = StartUTC + session type duration.
type TimeSlot struct {
	TherapistID   string    `json:"therapistId"`
	SessionTypeID string    `json:"sessionTypeId"`
	StartUTC      time.Time `json:"startUtc"`
	EndUTC        time.Time `json:"endUtc"`
}

// AvailabilitySlot is one bookable start rendered for the patient's timezone.
type AvailabilitySlot struct {
	ID               string    `json:"id"`
	StartInPatientTz string    `json:"startInPatientTz"` // "15:04"
	EndInPatientTz   string    `json:"endInPatientTz"`
	StartUTC         time.Time `json:"startUtc"`
	EndUTC           time.Time `json:"endUtc"`
}

// DayAvailability groups a day's bookable starts for the availability grid.
type DayAvailability struct {
	Date           string             `json:"date"` // "2006-01-02" in the patient's timezone
	DayLabel       string             `json:"dayLabel"`
	DayNumber      string             `json:"dayNumber"`
	BookableStarts []AvailabilitySlot `json:"bookableStarts"`
}
