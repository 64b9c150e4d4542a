package ledgerRepo

import (
	"context"
	"errors"
	"time"

	"calmora/models"
)

// Storage-level sentinels. The booking coordinator translates these into the
// user-facing error taxonomy; handlers never see raw driver errors.
var (
	// ErrSlotTaken means a non-canceled session already overlaps the
	// requested interval.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrSessionNotFound means no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotPending means a confirm was attempted on a session that is not
	// in the pending state.
	ErrNotPending = errors.New("session is not pending")
)

// LedgerRepository is the authoritative store of reservations per therapist.
// Reserve must be linearizable per therapist: of two concurrent reservations
// for overlapping intervals, exactly one succeeds.
type LedgerRepository interface {
	// IsHeld reports whether any non-canceled session overlaps [start, end).
	IsHeld(ctx context.Context, therapistID string, start, end time.Time) (bool, error)
	// Reserve atomically checks for overlap and inserts the session.
	// Returns ErrSlotTaken when the interval is already held.
	Reserve(ctx context.Context, session *models.Session) error
	// HeldSessions returns the non-canceled sessions intersecting [from, to),
	// chronologically ordered.
	HeldSessions(ctx context.Context, therapistID string, from, to time.Time) ([]models.Session, error)
	// GetByID fetches a session regardless of status.
	GetByID(ctx context.Context, sessionID string) (*models.Session, error)
	// ListByPatient returns all sessions for a patient, newest first.
	ListByPatient(ctx context.Context, patientID string) ([]models.Session, error)
	// Cancel marks the session canceled and frees its interval. The boolean
	// is false when the session was already canceled (idempotent no-op;
	// UpdatedAt is left untouched in that case).
	Cancel(ctx context.Context, sessionID string) (*models.Session, bool, error)
	// CancelIfPending cancels the session only while it is still pending, in
	// one atomic conditional update. A session that was confirmed or canceled
	// in the meantime is returned unchanged with false. Used by the hold
	// expiry worker so a confirmation racing the expiry always wins.
	CancelIfPending(ctx context.Context, sessionID string) (*models.Session, bool, error)
	// Confirm transitions pending → confirmed. Returns ErrNotPending for any
	// other starting state.
	Confirm(ctx context.Context, sessionID string) (*models.Session, error)
}
