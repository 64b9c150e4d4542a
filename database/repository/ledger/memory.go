package ledgerRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"calmora/models"
)

// MemoryLedgerRepo is an in-process LedgerRepository with the same
// linearizable reserve semantics as the Mongo implementation. Used by tests
// and local development without a MongoDB replica set.
type MemoryLedgerRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

// NewMemoryLedgerRepo constructs an empty in-memory ledger.
func NewMemoryLedgerRepo() *MemoryLedgerRepo {
	return &MemoryLedgerRepo{sessions: make(map[string]*models.Session)}
}

func overlaps(s *models.Session, start, end time.Time) bool {
	return s.Status != models.SessionCanceled && s.StartUTC.Before(end) && s.EndUTC.After(start)
}

func (repo *MemoryLedgerRepo) IsHeld(_ context.Context, therapistID string, start, end time.Time) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, s := range repo.sessions {
		if s.TherapistID == therapistID && overlaps(s, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *MemoryLedgerRepo) Reserve(_ context.Context, session *models.Session) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, s := range repo.sessions {
		if s.TherapistID == session.TherapistID && overlaps(s, session.StartUTC, session.EndUTC) {
			return ErrSlotTaken
		}
	}
	copied := *session
	repo.sessions[session.ID] = &copied
	return nil
}

func (repo *MemoryLedgerRepo) HeldSessions(_ context.Context, therapistID string, from, to time.Time) ([]models.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var held []models.Session
	for _, s := range repo.sessions {
		if s.TherapistID == therapistID && overlaps(s, from, to) {
			held = append(held, *s)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].StartUTC.Before(held[j].StartUTC) })
	return held, nil
}

func (repo *MemoryLedgerRepo) GetByID(_ context.Context, sessionID string) (*models.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	s, ok := repo.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (repo *MemoryLedgerRepo) ListByPatient(_ context.Context, patientID string) ([]models.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var out []models.Session
	for _, s := range repo.sessions {
		if s.PatientID == patientID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartUTC.After(out[j].StartUTC) })
	return out, nil
}

func (repo *MemoryLedgerRepo) Cancel(_ context.Context, sessionID string) (*models.Session, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	s, ok := repo.sessions[sessionID]
	if !ok {
		return nil, false, ErrSessionNotFound
	}
	if s.Status == models.SessionCanceled {
		copied := *s
		return &copied, false, nil
	}
	s.Status = models.SessionCanceled
	s.UpdatedAt = time.Now().UTC()
	copied := *s
	return &copied, true, nil
}

func (repo *MemoryLedgerRepo) CancelIfPending(_ context.Context, sessionID string) (*models.Session, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	s, ok := repo.sessions[sessionID]
	if !ok {
		return nil, false, ErrSessionNotFound
	}
	if s.Status != models.SessionPending {
		copied := *s
		return &copied, false, nil
	}
	s.Status = models.SessionCanceled
	s.UpdatedAt = time.Now().UTC()
	copied := *s
	return &copied, true, nil
}

func (repo *MemoryLedgerRepo) Confirm(_ context.Context, sessionID string) (*models.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	s, ok := repo.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Status != models.SessionPending {
		return nil, ErrNotPending
	}
	s.Status = models.SessionConfirmed
	s.UpdatedAt = time.Now().UTC()
	copied := *s
	return &copied, nil
}
