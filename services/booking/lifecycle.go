package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	ledgerRepo "calmora/database/repository/ledger"
	"calmora/models"
	"calmora/utils"
)

// DefaultSessionLifecycle is the production SessionLifecycle.
type DefaultSessionLifecycle struct {
	Ledger ledgerRepo.LedgerRepository
	Cache  *AvailabilityCache // optional

	// CancelCutoff rejects patient cancellations closer than this to the
	// session start. Zero disables the policy.
	CancelCutoff time.Duration
	Now          func() time.Time // defaults to time.Now
}

func (l *DefaultSessionLifecycle) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *DefaultSessionLifecycle) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return l.Ledger.GetByID(ctx, sessionID)
}

func (l *DefaultSessionLifecycle) ListByPatient(ctx context.Context, patientID string) ([]models.Session, error) {
	return l.Ledger.ListByPatient(ctx, patientID)
}

func (l *DefaultSessionLifecycle) Cancel(ctx context.Context, sessionID string) (*models.Session, error) {
	logger := utils.GetLogger()

	session, err := l.Ledger.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Canceled() {
		// Terminal state; repeating the cancel is a success, not an error.
		return session, nil
	}

	if l.CancelCutoff > 0 && l.now().After(session.StartUTC.Add(-l.CancelCutoff)) {
		return nil, NewTooLateToCancelError(fmt.Sprintf(
			"sessions can no longer be canceled within %s of their start", l.CancelCutoff))
	}

	canceled, changed, err := l.Ledger.Cancel(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if changed {
		logger.Info("session canceled", zap.String("sessionId", sessionID))
		if l.Cache != nil {
			l.Cache.Bump(ctx, canceled.TherapistID)
		}
	}
	return canceled, nil
}

func (l *DefaultSessionLifecycle) Confirm(ctx context.Context, sessionID string) (*models.Session, error) {
	confirmed, err := l.Ledger.Confirm(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("session confirmed", zap.String("sessionId", sessionID))
	return confirmed, nil
}

func (l *DefaultSessionLifecycle) ExpirePending(ctx context.Context, sessionID string) error {
	logger := utils.GetLogger()

	session, err := l.Ledger.GetByID(ctx, sessionID)
	if err != nil {
		if err == ledgerRepo.ErrSessionNotFound {
			return nil
		}
		return err
	}
	if session.Status != models.SessionPending {
		return nil
	}

	// Conditional on the pending state so a confirmation landing after the
	// read above wins the race instead of being canceled underneath.
	expired, changed, err := l.Ledger.CancelIfPending(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to expire pending session %s: %w", sessionID, err)
	}
	if changed {
		logger.Info("pending session expired, slot released",
			zap.String("sessionId", sessionID),
			zap.Time("startUtc", expired.StartUTC))
		if l.Cache != nil {
			l.Cache.Bump(ctx, expired.TherapistID)
		}
	}
	return nil
}
