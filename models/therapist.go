package models

import "time"

// Modality values supported for a session type.
const (
	ModalityOnline   = "online"
	ModalityInPerson = "in_person"
)

// WeeklyRule is one recurring availability block in the therapist's local time.
// Start and End are minutes from midnight (e.g., 540 for 9:00 AM).
type WeeklyRule struct {
	Weekday time.Weekday `bson:"weekday" json:"weekday"`
	Start   int          `bson:"start" json:"start"`
	End     int          `bson:"end" json:"end"`
}

// SessionType is a bookable offering owned by exactly one therapist.
// It is immutable once sessions reference it.
type SessionType struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	DurationMin int     `bson:"durationMin" json:"durationMin"`
	Modality    string  `bson:"modality" json:"modality"`
	Price       float64 `bson:"price,omitempty" json:"price,omitempty"`
	// RequiresConfirmation makes new reservations start as "pending" until the
	// therapist confirms; otherwise they are confirmed immediately.
	RequiresConfirmation bool `bson:"requiresConfirmation" json:"requiresConfirmation"`
}

// Therapist is the practice-owned profile including the recurring weekly
// schedule the engine derives bookable slots from.
type Therapist struct {
	ID           string        `bson:"id" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Specialty    string        `bson:"specialty" json:"specialty"`
	Description  string        `bson:"description,omitempty" json:"description,omitempty"`
	Experience   string        `bson:"experience,omitempty" json:"experience,omitempty"`
	Topics       []Topic       `bson:"topics" json:"topics"`
	Modalities   []string      `bson:"modalities" json:"modalities"`
	SessionTypes []SessionType `bson:"sessionTypes" json:"sessionTypes"`
	WeeklyRules  []WeeklyRule  `bson:"weeklyRules" json:"weeklyRules"`
	Timezone     string        `bson:"timezone" json:"timezone"` // IANA name, e.g. "America/Argentina/Buenos_Aires"
}

// SessionTypeByID looks up one of the therapist's session types.
func (t *Therapist) SessionTypeByID(id string) *SessionType {
	for i := range t.SessionTypes {
		if t.SessionTypes[i].ID == id {
			return &t.SessionTypes[i]
		}
	}
	return nil
}

// AvailabilitySummary is the lightweight availability teaser on listing cards.
type AvailabilitySummary struct {
	FreeSlotsCount int `json:"freeSlotsCount"`
}

// TherapistSummary is the listing projection returned by GET /therapists.
type TherapistSummary struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Specialty           string              `json:"specialty"`
	Experience          string              `json:"experience,omitempty"`
	Topics              []Topic             `json:"topics"`
	Modalities          []string            `json:"modalities"`
	SessionTypes        []SessionType       `json:"sessionTypes"`
	AvailabilitySummary AvailabilitySummary `json:"availabilitySummary"`
}

// Pagination describes the slice of a paginated listing.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// TherapistPage is the paginated envelope for therapist listings.
type TherapistPage struct {
	Data       []TherapistSummary `json:"data"`
	Pagination Pagination         `json:"pagination"`
}
