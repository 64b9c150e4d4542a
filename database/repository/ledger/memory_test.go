package ledgerRepo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calmora/models"
)

func testSession(id, therapistID string, start time.Time) *models.Session {
	return &models.Session{
		ID:          id,
		TherapistID: therapistID,
		StartUTC:    start,
		EndUTC:      start.Add(time.Hour),
		PatientID:   "p1",
		Status:      models.SessionConfirmed,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestReserveRejectsOverlap(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()
	start := time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Reserve(ctx, testSession("s1", "t1", start)))

	// Same interval.
	err := repo.Reserve(ctx, testSession("s2", "t1", start))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Partial overlap.
	err = repo.Reserve(ctx, testSession("s3", "t1", start.Add(30*time.Minute)))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Adjacent interval is free.
	require.NoError(t, repo.Reserve(ctx, testSession("s4", "t1", start.Add(time.Hour))))

	// Different therapist, same interval.
	require.NoError(t, repo.Reserve(ctx, testSession("s5", "t2", start)))
}

func TestReserveConcurrentExactlyOneWins(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	start := time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC)

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := testSession(fmt.Sprintf("race-%d", i), "t1", start)
			errs[i] = repo.Reserve(context.Background(), s)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent reservation must succeed")
}

func TestCancelFreesIntervalAndIsIdempotent(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()
	start := time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Reserve(ctx, testSession("s1", "t1", start)))

	canceled, changed, err := repo.Cancel(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.SessionCanceled, canceled.Status)
	firstUpdatedAt := canceled.UpdatedAt

	// Second cancel is a no-op that does not touch updatedAt.
	again, changed, err := repo.Cancel(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, firstUpdatedAt, again.UpdatedAt)

	// Interval is reservable again.
	require.NoError(t, repo.Reserve(ctx, testSession("s2", "t1", start)))

	held, err := repo.IsHeld(ctx, "t1", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, held)
}

func TestCancelIfPendingLeavesConfirmedAlone(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()
	start := time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC)

	pending := testSession("s1", "t1", start)
	pending.Status = models.SessionPending
	require.NoError(t, repo.Reserve(ctx, pending))

	canceled, changed, err := repo.CancelIfPending(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.SessionCanceled, canceled.Status)

	// A confirmed session must survive the conditional cancel untouched.
	confirmed := testSession("s2", "t1", start.Add(2*time.Hour))
	require.NoError(t, repo.Reserve(ctx, confirmed))

	kept, changed, err := repo.CancelIfPending(ctx, "s2")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.SessionConfirmed, kept.Status)

	// So does an already-canceled one.
	kept, changed, err = repo.CancelIfPending(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.SessionCanceled, kept.Status)

	_, _, err = repo.CancelIfPending(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConfirmTransitions(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()
	start := time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC)

	s := testSession("s1", "t1", start)
	s.Status = models.SessionPending
	require.NoError(t, repo.Reserve(ctx, s))

	confirmed, err := repo.Confirm(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionConfirmed, confirmed.Status)

	// Confirm is not idempotent: a second call reports the state mismatch.
	_, err = repo.Confirm(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = repo.Confirm(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHeldSessionsWindowAndOrder(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()
	base := time.Date(2025, time.July, 28, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Reserve(ctx, testSession("s2", "t1", base.Add(2*time.Hour))))
	require.NoError(t, repo.Reserve(ctx, testSession("s1", "t1", base)))
	require.NoError(t, repo.Reserve(ctx, testSession("s3", "t1", base.Add(48*time.Hour))))

	held, err := repo.HeldSessions(ctx, "t1", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.Equal(t, "s1", held[0].ID)
	assert.Equal(t, "s2", held[1].ID)
}
