package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ledgerRepo "calmora/database/repository/ledger"
	therapistRepo "calmora/database/repository/therapist"
	"calmora/models"
	"calmora/services/calendar"
	"calmora/utils"
)

// ErrInvalidRequest flags a structurally valid but semantically unusable
// payload (unknown session type, unparseable start time).
var ErrInvalidRequest = errors.New("invalid booking request")

// DefaultReservationCoordinator is the production ReservationCoordinator.
type DefaultReservationCoordinator struct {
	Ledger      ledgerRepo.LedgerRepository
	Therapists  therapistRepo.TherapistRepository
	Idempotency *IdempotencyStore
	Expiry      ExpiryScheduler    // optional
	Cache       *AvailabilityCache // optional

	StepMin     int
	WindowWeeks int
	PendingHold time.Duration
	Now         func() time.Time // defaults to time.Now
}

func (rc *DefaultReservationCoordinator) now() time.Time {
	if rc.Now != nil {
		return rc.Now()
	}
	return time.Now()
}

func (rc *DefaultReservationCoordinator) ConfirmBooking(ctx context.Context, req models.CreateSessionRequest, idempotencyKey string) (*models.Session, error) {
	logger := utils.GetLogger()

	// The whole request executes under the per-key exclusive section so two
	// retries of the same request cannot both pass the replay check. The
	// replay check runs before any validation: a recorded outcome is the
	// answer even if the catalog changed since.
	if idempotencyKey != "" {
		lockValue, acquired, err := rc.Idempotency.TryLock(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, NewKeyInUseError()
		}
		defer func() {
			if err := rc.Idempotency.Unlock(ctx, idempotencyKey, lockValue); err != nil {
				logger.Warn("failed to release idempotency lock",
					zap.String("key", idempotencyKey), zap.Error(err))
			}
		}()

		record, err := rc.Idempotency.Get(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if record != nil {
			if record.RequestHash != HashRequest(req) {
				return nil, NewKeyReusedError()
			}
			logger.Info("idempotent replay, returning recorded session",
				zap.String("key", idempotencyKey), zap.String("sessionId", record.Session.ID))
			session := record.Session
			return &session, nil
		}
	}

	start, err := time.Parse(time.RFC3339, req.StartUTC)
	if err != nil {
		return nil, fmt.Errorf("%w: startUtc %q is not RFC 3339", ErrInvalidRequest, req.StartUTC)
	}
	start = start.UTC()

	therapist, err := rc.Therapists.GetByID(ctx, req.TherapistID)
	if err != nil {
		return nil, err
	}
	sessionType := therapist.SessionTypeByID(req.SessionTypeID)
	if sessionType == nil {
		return nil, fmt.Errorf("%w: therapist %s has no session type %s", ErrInvalidRequest, req.TherapistID, req.SessionTypeID)
	}

	session, err := rc.reserve(ctx, therapist, sessionType, req, start)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		record := IdempotencyRecord{RequestHash: HashRequest(req), Session: *session}
		if err := rc.Idempotency.Put(ctx, idempotencyKey, record); err != nil {
			// The reservation itself committed; a lost record only costs a
			// replayed retry a slot_taken answer.
			logger.Warn("failed to store idempotency record",
				zap.String("key", idempotencyKey), zap.Error(err))
		}
	}

	return session, nil
}

// reserve validates the slot against the live schedule and commits it.
func (rc *DefaultReservationCoordinator) reserve(
	ctx context.Context,
	therapist *models.Therapist,
	sessionType *models.SessionType,
	req models.CreateSessionRequest,
	start time.Time,
) (*models.Session, error) {
	logger := utils.GetLogger()
	now := rc.now()
	end := start.Add(time.Duration(sessionType.DurationMin) * time.Minute)

	if !start.After(now) {
		return nil, NewOutOfWindowError("requested start is in the past")
	}
	if rc.WindowWeeks > 0 && start.After(now.AddDate(0, 0, 7*rc.WindowWeeks)) {
		return nil, NewOutOfWindowError("requested start is beyond the booking window")
	}

	if err := rc.validateAgainstSchedule(therapist, start, end); err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:            uuid.New().String(),
		TherapistID:   therapist.ID,
		TherapistName: therapist.Name,
		SessionTypeID: sessionType.ID,
		SessionType:   sessionType.Name,
		StartUTC:      start,
		EndUTC:        end,
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		PatientEmail:  req.PatientEmail,
		PatientTz:     req.PatientTz,
		Status:        models.SessionConfirmed,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if sessionType.RequiresConfirmation {
		session.Status = models.SessionPending
	}

	if err := rc.Ledger.Reserve(ctx, session); err != nil {
		if errors.Is(err, ledgerRepo.ErrSlotTaken) {
			return nil, NewSlotTakenError()
		}
		return nil, fmt.Errorf("reservation failed: %w", err)
	}

	logger.Info("slot reserved",
		zap.String("sessionId", session.ID),
		zap.String("therapistId", therapist.ID),
		zap.Time("startUtc", start),
		zap.String("status", session.Status))

	if session.Status == models.SessionPending && rc.Expiry != nil {
		hold := rc.PendingHold
		if hold <= 0 {
			hold = 30 * time.Minute
		}
		if err := rc.Expiry.ScheduleExpiry(ctx, session.ID, now.Add(hold)); err != nil {
			logger.Warn("failed to schedule pending expiry", zap.String("sessionId", session.ID), zap.Error(err))
		}
	}

	if rc.Cache != nil {
		rc.Cache.Bump(ctx, therapist.ID)
	}

	return session, nil
}

// validateAgainstSchedule rejects starts that no longer lie on the current
// availability grid (stale client caches, changed rules).
func (rc *DefaultReservationCoordinator) validateAgainstSchedule(therapist *models.Therapist, start, end time.Time) error {
	loc, err := time.LoadLocation(therapist.Timezone)
	if err != nil {
		return NewInvalidScheduleError(fmt.Sprintf("therapist %s has invalid timezone %q", therapist.ID, therapist.Timezone))
	}

	localDay := start.In(loc)
	intervals, err := calendar.IntervalsForWeek(therapist.WeeklyRules, therapist.Timezone, localDay)
	if err != nil {
		return NewInvalidScheduleError(err.Error())
	}

	step := time.Duration(rc.StepMin) * time.Minute
	for _, iv := range intervals {
		if !iv.Contains(start, end) {
			continue
		}
		if step > 0 && start.Sub(iv.StartUTC)%step != 0 {
			return NewOutOfWindowError("requested start is off the slot grid")
		}
		return nil
	}
	return NewOutOfWindowError("requested slot no longer fits the therapist's schedule")
}
