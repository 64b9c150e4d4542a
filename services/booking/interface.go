package booking

import (
	"context"
	"time"

	"calmora/models"
)

// ReservationCoordinator adjudicates booking attempts against the ledger,
// enforcing idempotency and single-writer-per-slot semantics.
type ReservationCoordinator interface {
	// ConfirmBooking validates the requested slot against the current
	// schedule, reserves it atomically and records the idempotency outcome.
	ConfirmBooking(ctx context.Context, req models.CreateSessionRequest, idempotencyKey string) (*models.Session, error)
}

// SessionLifecycle manages state transitions of reserved sessions.
type SessionLifecycle interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Session, error)
	// Cancel marks the session canceled. Canceling an already-canceled
	// session is an idempotent success.
	Cancel(ctx context.Context, sessionID string) (*models.Session, error)
	// Confirm transitions a pending session to confirmed.
	Confirm(ctx context.Context, sessionID string) (*models.Session, error)
	// ExpirePending releases a pending session whose confirmation hold ran
	// out. No-op when the session was confirmed or canceled meanwhile.
	ExpirePending(ctx context.Context, sessionID string) error
}

// AvailabilityService computes bookable slots and availability summaries.
type AvailabilityService interface {
	// WeekAvailability returns the 7-day slot grid starting at weekStart,
	// rendered in the patient's timezone and filtered against held sessions.
	WeekAvailability(ctx context.Context, therapistID, sessionTypeID string, weekStart time.Time, patientTz string, stepMin int) ([]models.DayAvailability, error)
	// ListTherapists returns the filtered listing page with free-slot counts.
	ListTherapists(ctx context.Context, filter ListFilter) (*models.TherapistPage, error)
}

// ListFilter narrows therapist listings at the service level.
type ListFilter struct {
	TopicIDs   []string
	Modality   string
	RequireAll bool
	OrderBy    string
	Limit      int
	Offset     int
}

// ExpiryScheduler enqueues the delayed release of unconfirmed pending
// sessions. Implemented by the asynq task client.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, sessionID string, at time.Time) error
}
