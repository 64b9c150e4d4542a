package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerRepo "calmora/database/repository/ledger"
	therapistRepo "calmora/database/repository/therapist"
	"calmora/models"
)

func newTestCoordinator(t *testing.T) (*DefaultReservationCoordinator, *ledgerRepo.MemoryLedgerRepo) {
	t.Helper()
	ledger := ledgerRepo.NewMemoryLedgerRepo()
	coordinator := &DefaultReservationCoordinator{
		Ledger:      ledger,
		Therapists:  therapistRepo.NewMemoryTherapistRepo(testTherapist()),
		Idempotency: NewIdempotencyStore(testRedis(t), time.Hour),
		StepMin:     30,
		WindowWeeks: 6,
		PendingHold: 30 * time.Minute,
		Now:         fixedNow,
	}
	return coordinator, ledger
}

func TestConfirmBookingReservesSlot(t *testing.T) {
	coordinator, ledger := newTestCoordinator(t)
	ctx := context.Background()
	start := testMonday.Add(10 * time.Hour)

	session, err := coordinator.ConfirmBooking(ctx, testRequest(start), "key-1")
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.SessionConfirmed, session.Status)
	assert.Equal(t, "Dr. Elena Vargas", session.TherapistName)
	assert.Equal(t, "Individual", session.SessionType)
	assert.True(t, session.StartUTC.Equal(start))
	assert.True(t, session.EndUTC.Equal(start.Add(time.Hour)))

	stored, err := ledger.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionConfirmed, stored.Status)
}

func TestConfirmBookingIdempotentReplay(t *testing.T) {
	coordinator, ledger := newTestCoordinator(t)
	ctx := context.Background()
	req := testRequest(testMonday.Add(10 * time.Hour))

	first, err := coordinator.ConfirmBooking(ctx, req, "key-1")
	require.NoError(t, err)

	// Retrying the exact same request returns the recorded session instead
	// of a slot_taken failure.
	second, err := coordinator.ConfirmBooking(ctx, req, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	held, err := ledger.HeldSessions(ctx, "t1", testMonday, testMonday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, held, 1)
}

func TestConfirmBookingReplaySurvivesCatalogRemoval(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	ctx := context.Background()
	req := testRequest(testMonday.Add(10 * time.Hour))

	first, err := coordinator.ConfirmBooking(ctx, req, "key-1")
	require.NoError(t, err)

	// The therapist is gone from the catalog, but the recorded outcome still
	// answers a retry of the original request.
	coordinator.Therapists = therapistRepo.NewMemoryTherapistRepo()

	replayed, err := coordinator.ConfirmBooking(ctx, req, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, replayed.ID)

	// A fresh key against the empty catalog fails as before.
	_, err = coordinator.ConfirmBooking(ctx, req, "key-2")
	assert.ErrorIs(t, err, therapistRepo.ErrTherapistNotFound)
}

func TestConfirmBookingKeyReusedWithDifferentPayload(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, err := coordinator.ConfirmBooking(ctx, testRequest(testMonday.Add(10*time.Hour)), "key-1")
	require.NoError(t, err)

	_, err = coordinator.ConfirmBooking(ctx, testRequest(testMonday.Add(11*time.Hour)), "key-1")
	require.Error(t, err)
	be, ok := AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, CodeKeyReused, be.Code)
}

func TestConfirmBookingSlotTaken(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	ctx := context.Background()
	start := testMonday.Add(10 * time.Hour)

	_, err := coordinator.ConfirmBooking(ctx, testRequest(start), "key-1")
	require.NoError(t, err)

	_, err = coordinator.ConfirmBooking(ctx, testRequest(start), "key-2")
	require.Error(t, err)
	be, ok := AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, CodeSlotTaken, be.Code)

	// Partial overlap loses too.
	req := testRequest(start.Add(30 * time.Minute))
	_, err = coordinator.ConfirmBooking(ctx, req, "key-3")
	require.Error(t, err)
	be, ok = AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, CodeSlotTaken, be.Code)
}

func TestConfirmBookingOutOfWindow(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		start time.Time
	}{
		{"in the past", testNow.Add(-time.Hour)},
		{"beyond the booking window", testMonday.AddDate(0, 0, 7*7).Add(10 * time.Hour)},
		{"off the slot grid", testMonday.Add(10*time.Hour + 5*time.Minute)},
		{"outside working hours", testMonday.Add(20 * time.Hour)},
		{"on a day off", testMonday.AddDate(0, 0, 2).Add(10 * time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := coordinator.ConfirmBooking(ctx, testRequest(tc.start), "key-"+tc.name)
			require.Error(t, err)
			be, ok := AsBookingError(err)
			require.True(t, ok)
			assert.Equal(t, CodeOutOfWindow, be.Code)
		})
	}
}

func TestConfirmBookingInvalidRequest(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	ctx := context.Background()

	req := testRequest(testMonday.Add(10 * time.Hour))
	req.SessionTypeID = "nope"
	_, err := coordinator.ConfirmBooking(ctx, req, "key-1")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	req = testRequest(testMonday.Add(10 * time.Hour))
	req.StartUTC = "next tuesday"
	_, err = coordinator.ConfirmBooking(ctx, req, "key-2")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	req = testRequest(testMonday.Add(10 * time.Hour))
	req.TherapistID = "ghost"
	_, err = coordinator.ConfirmBooking(ctx, req, "key-3")
	assert.ErrorIs(t, err, therapistRepo.ErrTherapistNotFound)
}

func TestConfirmBookingConcurrentDistinctKeys(t *testing.T) {
	coordinator, ledger := newTestCoordinator(t)
	start := testMonday.Add(10 * time.Hour)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coordinator.ConfirmBooking(context.Background(), testRequest(start), fmt.Sprintf("key-%d", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		be, ok := AsBookingError(err)
		require.True(t, ok)
		assert.Equal(t, CodeSlotTaken, be.Code)
	}
	assert.Equal(t, 1, winners)

	held, err := ledger.HeldSessions(context.Background(), "t1", testMonday, testMonday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, held, 1)
}

func TestConfirmBookingPendingSchedulesExpiry(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	scheduler := &captureScheduler{}
	coordinator.Expiry = scheduler
	ctx := context.Background()

	req := testRequest(testMonday.Add(10 * time.Hour))
	req.SessionTypeID = "st2" // requires therapist confirmation

	session, err := coordinator.ConfirmBooking(ctx, req, "key-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionPending, session.Status)
	assert.True(t, session.EndUTC.Equal(session.StartUTC.Add(30*time.Minute)))

	require.Len(t, scheduler.calls, 1)
	assert.Equal(t, session.ID, scheduler.calls[0].SessionID)
	assert.True(t, scheduler.calls[0].At.Equal(testNow.Add(30*time.Minute)))
}
